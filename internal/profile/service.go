package profile

import (
	"context"
	"errors"
	"log/slog"

	derrors "instadoc/pkg/domain-errors"
	"instadoc/pkg/platform/sentinel"
)

// DocumentStore persists JSON documents under collection/key. Put returns
// ErrConflict (wrapped) when the key already holds a document.
type DocumentStore interface {
	Put(ctx context.Context, collection, key string, doc any) error
}

// Writer writes completed profile records.
type Writer struct {
	docs   DocumentStore
	logger *slog.Logger
}

type Option func(*Writer)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) { w.logger = logger }
}

func NewWriter(docs DocumentStore, opts ...Option) *Writer {
	w := &Writer{docs: docs, logger: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write stores the profile under the Users collection keyed by identity ID.
// A second write for the same identity is a conflict, not an upsert: the
// profile is written exactly once per registration.
func (w *Writer) Write(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return derrors.New(derrors.CodeInternal, "profile record has no identity id")
	}

	if err := w.docs.Put(ctx, Collection, rec.ID, rec); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return derrors.Wrap(err, derrors.CodeConflict, "profile already exists")
		}
		return derrors.Wrap(err, derrors.CodeInternal, "profile write failed")
	}

	w.logger.InfoContext(ctx, "profile written", "identity_id", rec.ID, "email", rec.Email)
	return nil
}
