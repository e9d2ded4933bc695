package workspace

import (
	"context"
	"time"
)

// slowEvent is the duration above which an event is logged.
const slowEvent = 50 * time.Millisecond

// event is a unit of work run on the workspace timeline.
type event struct {
	name string
	fn   func()
}

// Post queues fn to run on the workspace timeline and returns at once.
// Events run one at a time in the order they were posted.
func (w *Workspace) Post(name string, fn func()) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrClosed
	}
	select {
	case w.events <- event{name: name, fn: fn}:
		return nil
	default:
		w.metrics.dropped.Add(1)
		w.logger.Warn("event queue full, dropped %s", name)
		return ErrBusy
	}
}

// Do runs fn on the workspace timeline and waits for it to finish. It must
// not be called from an event already running on the timeline.
func (w *Workspace) Do(ctx context.Context, name string, fn func() error) error {
	done := make(chan error, 1)
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return ErrClosed
	}
	select {
	case w.events <- event{name: name, fn: func() { done <- fn() }}:
	case <-ctx.Done():
		w.mu.RUnlock()
		return ctx.Err()
	}
	w.mu.RUnlock()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// loop runs posted events until the queue is closed. Pending
// notifications are reconciled before and after every event, so an event
// always sees every notification delivered before it was posted.
func (w *Workspace) loop() {
	defer close(w.loopDone)
	w.runPending()
	for {
		select {
		case ev, ok := <-w.events:
			w.runPending()
			if !ok {
				return
			}
			w.run(ev)
		case <-w.wake:
		}
		w.runPending()
	}
}

func (w *Workspace) run(ev event) {
	start := time.Now()
	ev.fn()
	d := time.Since(start)
	w.metrics.RecordEvent(d)
	if d > slowEvent {
		w.logger.Debug("event %s took %v", ev.name, d)
	}
}
