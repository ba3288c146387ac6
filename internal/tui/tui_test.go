package tui

import (
	"testing"

	"github.com/QuesoDad/DownloadAllOfIt/internal/batch"
)

func TestPublishEvent_DropsProgressWhenFull(t *testing.T) {
	events := make(chan batch.Event, 1)
	events <- batch.Event{Type: batch.EventStatus, Message: "occupied"}

	// Must return immediately even though the channel is full.
	publishEvent(events, batch.Event{Type: batch.EventItemProgress, Percent: 42})
	publishEvent(events, batch.Event{Type: batch.EventOverallProgress, Percent: 10})

	got := <-events
	if got.Type != batch.EventStatus || got.Message != "occupied" {
		t.Errorf("buffered event = %+v, want the original status", got)
	}
	select {
	case e := <-events:
		t.Errorf("unexpected queued event %+v, progress should be dropped", e)
	default:
	}
}

func TestPublishEvent_DeliversLosslessTypes(t *testing.T) {
	events := make(chan batch.Event, 4)

	publishEvent(events, batch.Event{Type: batch.EventStatus, Message: "s"})
	publishEvent(events, batch.Event{Type: batch.EventFailures})
	publishEvent(events, batch.Event{Type: batch.EventCompleted})
	publishEvent(events, batch.Event{Type: batch.EventItemProgress, Percent: 99})

	want := []batch.EventType{
		batch.EventStatus,
		batch.EventFailures,
		batch.EventCompleted,
		batch.EventItemProgress,
	}
	for i, wantType := range want {
		got := <-events
		if got.Type != wantType {
			t.Errorf("event[%d].Type = %v, want %v", i, got.Type, wantType)
		}
	}
}
