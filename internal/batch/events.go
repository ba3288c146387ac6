package batch

import (
	"github.com/QuesoDad/DownloadAllOfIt/internal/download"
	"github.com/QuesoDad/DownloadAllOfIt/internal/model"
)

// EventType discriminates batch events.
type EventType int

const (
	// EventStatus carries a leveled log line.
	EventStatus EventType = iota

	// EventItemProgress carries the transfer percentage (0-100) of
	// the current item.
	EventItemProgress

	// EventOverallProgress carries whole-batch progress: Percent is
	// floor(processed/total*100), Completed and Total the counters.
	EventOverallProgress

	// EventCurrentItem announces the item about to be processed.
	EventCurrentItem

	// EventThumbnail carries PNG preview bytes of the current item.
	EventThumbnail

	// EventDescription carries the description text of the current
	// item.
	EventDescription

	// EventFailures carries the aggregated failure list. Emitted
	// exactly once per batch, even when empty.
	EventFailures

	// EventCompleted marks the end of the batch. Emitted exactly
	// once; no events follow it.
	EventCompleted
)

// Event is a single notification from a running batch. Only the
// fields relevant to the Type are set.
type Event struct {
	Type    EventType
	BatchID string

	Message string
	Level   download.ProgressLevel

	Percent   float64
	Completed int
	Total     int

	Title     string
	Thumbnail []byte

	Failures []model.FailureRecord
}
