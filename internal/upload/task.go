package upload

import (
	"context"
	"sync"
)

// Event is one element of a task's ordered event stream: zero or more
// progress events followed by exactly one terminal event, after which the
// stream is closed.
type Event struct {
	// Progress in percent, valid when Terminal is false. Values are
	// non-decreasing and lie in [0,100]. Advisory only: completion is
	// signaled solely by the terminal event.
	Progress float64

	// Terminal marks the last event. Exactly one of URL or Err is set.
	Terminal bool
	URL      string
	Err      error
}

// Task tracks a single blob transfer. Progress reads as (percent, true)
// while the transfer is pending and (0, false) once it reaches a terminal
// state, mirroring the "reset to null on terminal" contract.
type Task struct {
	events chan Event

	mu       sync.Mutex
	pending  bool
	progress float64
	url      string
	err      error
}

func newTask(buffer int) *Task {
	return &Task{
		events:  make(chan Event, buffer),
		pending: true,
	}
}

// Events returns the task's event stream. The channel is buffered for the
// worst-case number of events, so the producer never blocks on a slow
// consumer, and is closed after the terminal event.
func (t *Task) Events() <-chan Event {
	return t.events
}

// Progress returns the latest progress percentage and whether the task is
// still pending. Once terminal, ok is false.
func (t *Task) Progress() (percent float64, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.pending {
		return 0, false
	}
	return t.progress, true
}

// Wait blocks until the task reaches its terminal state or ctx is done, and
// returns the download URL or the terminal error.
func (t *Task) Wait(ctx context.Context) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case ev, open := <-t.events:
			if !open {
				t.mu.Lock()
				defer t.mu.Unlock()
				return t.url, t.err
			}
			if ev.Terminal {
				// Drain until close so the channel is fully consumed.
				for range t.events {
				}
				return ev.URL, ev.Err
			}
		}
	}
}

func (t *Task) emitProgress(percent float64) {
	t.mu.Lock()
	t.progress = percent
	t.mu.Unlock()
	t.events <- Event{Progress: percent}
}

func (t *Task) succeed(url string) {
	t.mu.Lock()
	t.pending = false
	t.progress = 0
	t.url = url
	t.mu.Unlock()
	t.events <- Event{Terminal: true, URL: url}
	close(t.events)
}

func (t *Task) fail(err error) {
	t.mu.Lock()
	t.pending = false
	t.progress = 0
	t.err = err
	t.mu.Unlock()
	t.events <- Event{Terminal: true, Err: err}
	close(t.events)
}
