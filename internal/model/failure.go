package model

import "fmt"

// Well-known failure reasons. Engine errors that match none of these
// carry their raw error text as the reason instead.
const (
	// ReasonNoMetadata marks URLs the engine could not resolve at all.
	ReasonNoMetadata = "no-metadata"

	// ReasonPrivate marks videos that exist but cannot be accessed.
	ReasonPrivate = "private-or-inaccessible"

	// ReasonCancelled marks the in-flight item interrupted by a stop
	// request. Items never attempted are not recorded at all.
	ReasonCancelled = "cancelled"
)

// UnhandledTypeReason builds the reason string for extraction results
// of a kind the resolver does not know how to expand.
func UnhandledTypeReason(infoType string) string {
	return fmt.Sprintf("unhandled-type: %s", infoType)
}

// FailureRecord ties one failed URL to the reason it failed. Records
// are immutable once created and collected in discovery order.
type FailureRecord struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

func (f FailureRecord) String() string {
	return f.URL + " - " + f.Reason
}
