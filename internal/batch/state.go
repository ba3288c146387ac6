package batch

// State is the batch lifecycle stage.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateDownloading
	StateCancelling
	StateCompleted
)

// String returns a display name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateDownloading:
		return "downloading"
	case StateCancelling:
		return "cancelling"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// isValidTransition enforces the allowed batch state machine edges.
// Completed is terminal; a new batch needs a new Orchestrator.
func isValidTransition(from, to State) bool {
	switch from {
	case StateIdle:
		return to == StateResolving
	case StateResolving:
		return to == StateDownloading || to == StateCancelling
	case StateDownloading:
		return to == StateCancelling || to == StateCompleted
	case StateCancelling:
		return to == StateCompleted
	default:
		return false
	}
}
