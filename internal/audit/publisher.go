package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"instadoc/pkg/requestcontext"
)

// DefaultInboxSize bounds the publisher's buffer. When the worker falls
// behind, newer events are dropped rather than stalling registrations.
const DefaultInboxSize = 256

// Trail accepts events from domain logic and hands them to the worker over a
// buffered channel. Emitting is non-blocking.
type Trail struct {
	inbox  chan Event
	logger *slog.Logger
}

type TrailOption func(*Trail)

func WithLogger(logger *slog.Logger) TrailOption {
	return func(t *Trail) { t.logger = logger }
}

func WithInboxSize(n int) TrailOption {
	return func(t *Trail) { t.inbox = make(chan Event, n) }
}

func NewTrail(opts ...TrailOption) *Trail {
	t := &Trail{
		inbox:  make(chan Event, DefaultInboxSize),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Inbox exposes the receive side for the worker.
func (t *Trail) Inbox() <-chan Event {
	return t.inbox
}

// Record enriches the event with request metadata from the context and queues
// it for persistence. A full inbox drops the event with a warning; the trail
// never blocks or fails a registration step.
func (t *Trail) Record(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.SessionID == "" {
		event.SessionID = requestcontext.SessionID(ctx)
	}
	if event.IP == "" {
		event.IP = requestcontext.ClientIP(ctx)
	}
	if event.Device == "" {
		event.Device = DeviceName(requestcontext.UserAgent(ctx))
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	select {
	case t.inbox <- event:
	default:
		t.logger.WarnContext(ctx, "audit inbox full, event dropped",
			"action", event.Action, "session_id", event.SessionID)
	}
}
