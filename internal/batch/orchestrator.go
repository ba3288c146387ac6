// Package batch runs a whole download batch through its lifecycle:
// resolution, sequential item execution, failure aggregation and a
// single terminal completion event.
package batch

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/QuesoDad/DownloadAllOfIt/internal/download"
	"github.com/QuesoDad/DownloadAllOfIt/internal/model"
	"github.com/QuesoDad/DownloadAllOfIt/internal/resolve"
)

// coolOffInterval is the item count between cool-off pauses.
const coolOffInterval = 10

// itemResolver expands raw input URLs.
type itemResolver interface {
	Resolve(ctx context.Context, rawURLs []string, cancelled func() bool) resolve.Result
}

// itemExecutor downloads one resolved item.
type itemExecutor interface {
	Execute(ctx context.Context, item download.Item, cancelled func() bool) download.ItemResult
}

// Orchestrator owns one batch from start to completion. It is
// single-use: Run may be called once; afterwards the state is
// Completed and a fresh Orchestrator is needed.
//
// Stop may be called from any goroutine at any time. The stop flag is
// monotonic; it takes effect before the next item starts and, through
// the executor's cancel polling, mid-transfer as well.
type Orchestrator struct {
	id       string
	resolver itemResolver
	executor itemExecutor
	onEvent  func(Event)

	mu    sync.Mutex
	state State

	stopped atomic.Bool

	// coolOff pauses between item groups; replaced in tests.
	coolOff func(ctx context.Context)
}

// NewOrchestrator creates an idle batch. onEvent may be nil.
func NewOrchestrator(resolver itemResolver, executor itemExecutor, onEvent func(Event)) *Orchestrator {
	o := &Orchestrator{
		id:       uuid.NewString(),
		resolver: resolver,
		executor: executor,
		onEvent:  onEvent,
		state:    StateIdle,
	}
	o.coolOff = o.randomCoolOff
	return o
}

// Bind attaches the executor after construction. Needed when the
// executor's callbacks are wired through ExecutorCallbacks, which
// requires the orchestrator to exist first. Must happen before Run.
func (o *Orchestrator) Bind(executor itemExecutor) {
	o.executor = executor
}

// ID returns the batch identifier carried on every event.
func (o *Orchestrator) ID() string {
	return o.id
}

// State returns the current lifecycle stage.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Stop requests cancellation. Safe to call repeatedly and before Run.
func (o *Orchestrator) Stop() {
	o.stopped.Store(true)
}

// Stopped reports whether cancellation was requested.
func (o *Orchestrator) Stopped() bool {
	return o.stopped.Load()
}

// ExecutorCallbacks maps executor signals onto batch events. Wire the
// result into download.NewExecutor before calling Run.
func (o *Orchestrator) ExecutorCallbacks() download.Callbacks {
	return download.Callbacks{
		OnEvent: func(event download.ProgressEvent) {
			o.emit(Event{Type: EventStatus, Message: event.Message, Level: event.Level})
		},
		OnProgress: func(percent float64) {
			o.emit(Event{Type: EventItemProgress, Percent: percent})
		},
		OnThumbnail: func(data []byte) {
			o.emit(Event{Type: EventThumbnail, Thumbnail: data})
		},
		OnDescription: func(text string) {
			o.emit(Event{Type: EventDescription, Message: text})
		},
	}
}

// Run executes the batch to completion. It blocks until every item is
// processed or a stop request takes effect, then emits the aggregated
// failures and exactly one Completed event.
//
// Run returns an error only for lifecycle misuse (calling it twice);
// per-item problems surface as failure records, never as an error.
func (o *Orchestrator) Run(ctx context.Context, rawURLs []string) error {
	if o.executor == nil {
		return fmt.Errorf("no executor bound")
	}
	if err := o.transition(StateResolving); err != nil {
		return err
	}
	o.status(download.LevelInfo, "Resolving %d input URL(s)", len(rawURLs))

	result := o.resolver.Resolve(ctx, rawURLs, o.stopped.Load)
	failures := result.Failures
	total := len(result.Items)

	if o.stopped.Load() {
		o.transition(StateCancelling)
		return o.finish(failures, 0, total)
	}
	if err := o.transition(StateDownloading); err != nil {
		return err
	}
	o.status(download.LevelInfo, "Resolved %d video(s), %d unavailable", total, len(failures))
	o.emitOverall(0, total)

	processed := 0
	for i, item := range result.Items {
		if o.stopped.Load() {
			break
		}

		o.emit(Event{Type: EventCurrentItem, Title: item.URL, Completed: processed, Total: total})

		res := o.executor.Execute(ctx, download.Item{
			URL:      item.URL,
			Playlist: item.Playlist,
		}, o.stopped.Load)

		if res.Outcome == download.OutcomeCancelled {
			break
		}
		if res.Outcome == download.OutcomeFailed {
			failures = append(failures, model.FailureRecord{URL: item.URL, Reason: res.Reason})
		}

		processed++
		o.emitOverall(processed, total)

		// Pause after every block of items to stay polite with the
		// source. Skipped after the final item.
		if (i+1)%coolOffInterval == 0 && i+1 < total && !o.stopped.Load() {
			o.status(download.LevelVerbose, "Cooling off after %d items", i+1)
			o.coolOff(ctx)
		}
	}

	if o.State() == StateDownloading && o.stopped.Load() {
		o.transition(StateCancelling)
	}
	return o.finish(failures, processed, total)
}

// finish emits the failure list, the final status line and the single
// Completed event, then parks the state machine in Completed.
func (o *Orchestrator) finish(failures []model.FailureRecord, processed, total int) error {
	if failures == nil {
		failures = []model.FailureRecord{}
	}
	o.emit(Event{Type: EventFailures, Failures: failures})

	if o.stopped.Load() {
		o.status(download.LevelWarning, "Download stopped by user")
	} else {
		o.status(download.LevelSuccess, "Download complete")
	}

	if err := o.transition(StateCompleted); err != nil {
		return err
	}
	o.emit(Event{Type: EventCompleted, Completed: processed, Total: total})
	return nil
}

func (o *Orchestrator) transition(to State) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !isValidTransition(o.state, to) {
		return fmt.Errorf("invalid transition: %s -> %s", o.state, to)
	}
	o.state = to
	return nil
}

// randomCoolOff sleeps up to two seconds, checking the stop flag so a
// cancellation never waits out the pause.
func (o *Orchestrator) randomCoolOff(ctx context.Context) {
	delay := time.Duration(rand.Int63n(int64(2 * time.Second)))
	deadline := time.Now().Add(delay)
	for time.Now().Before(deadline) {
		if o.stopped.Load() {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// emitOverall publishes whole-batch progress. Percent is floored so
// the bar only reaches 100 when every item is done; an empty batch
// reports 0.
func (o *Orchestrator) emitOverall(processed, total int) {
	percent := 0.0
	if total > 0 {
		percent = math.Floor(float64(processed) / float64(total) * 100)
	}
	o.emit(Event{
		Type:      EventOverallProgress,
		Percent:   percent,
		Completed: processed,
		Total:     total,
	})
}

func (o *Orchestrator) status(level download.ProgressLevel, format string, args ...any) {
	o.emit(Event{Type: EventStatus, Message: fmt.Sprintf(format, args...), Level: level})
}

func (o *Orchestrator) emit(event Event) {
	if o.onEvent == nil {
		return
	}
	event.BatchID = o.id
	o.onEvent(event)
}
