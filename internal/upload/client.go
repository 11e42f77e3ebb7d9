// Package upload implements the resumable transfer client for registration
// assets. A transfer is a cancellable asynchronous task yielding an ordered
// sequence of progress values terminated by a single result-or-error.
package upload

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	derrors "instadoc/pkg/domain-errors"
	"instadoc/pkg/platform/sentinel"
)

// MaxBlobSize is the hard input limit. Oversized blobs are rejected before
// any network activity.
const MaxBlobSize = 5 << 20 // 5 MiB

// DefaultChunkSize is the transfer granularity; progress is emitted on every
// chunk boundary.
const DefaultChunkSize = 256 << 10

var (
	uploadDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "instadoc_upload_duration_seconds",
		Help:    "Wall time of completed asset uploads",
		Buckets: prometheus.DefBuckets,
	})
	uploadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "instadoc_upload_failures_total",
		Help: "Total number of asset uploads that ended in error",
	})
)

// ObjectStore is the object-storage collaborator: it opens resumable
// sessions keyed by destination path.
type ObjectStore interface {
	NewSession(ctx context.Context, path string, size int64, contentType string) (Session, error)
}

// Session is one resumable transfer. Put writes a chunk at the given offset;
// Commit finalizes the object and resolves its durable, fetchable URL.
type Session interface {
	Put(ctx context.Context, offset int64, chunk []byte) error
	Commit(ctx context.Context) (string, error)
}

// Client uploads blobs chunk by chunk. It never retries internally; retry
// policy belongs to the caller.
type Client struct {
	store     ObjectStore
	logger    *slog.Logger
	chunkSize int
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithChunkSize overrides the transfer granularity. For tests.
func WithChunkSize(n int) Option {
	return func(c *Client) { c.chunkSize = n }
}

func NewClient(store ObjectStore, opts ...Option) *Client {
	c := &Client{
		store:     store,
		logger:    slog.Default(),
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload starts transferring blob to destinationPath and returns the task
// tracking it. Oversized blobs fail immediately with a terminal event and no
// session is opened. Cancelling ctx stops the task and releases the blob's
// local resources; an in-flight remote transfer past the point of no return
// is not chased down.
func (c *Client) Upload(ctx context.Context, blob Blob, destinationPath string) *Task {
	chunks := int((blob.Size() + int64(c.chunkSize) - 1) / int64(c.chunkSize))
	task := newTask(chunks + 1)

	if blob.Size() > MaxBlobSize {
		task.fail(derrors.Wrap(
			fmt.Errorf("blob %q is %d bytes: %w", blob.Name, blob.Size(), sentinel.ErrTooLarge),
			derrors.CodeTooLarge, "file size exceeds the 5MB limit"))
		return task
	}

	go c.run(ctx, blob, destinationPath, task)
	return task
}

func (c *Client) run(ctx context.Context, blob Blob, destinationPath string, task *Task) {
	start := time.Now()

	fail := func(err error) {
		uploadFailures.Inc()
		c.logger.ErrorContext(ctx, "upload failed",
			"path", destinationPath,
			"size", blob.Size(),
			"error", err,
		)
		task.fail(err)
	}

	cancel := func() {
		if blob.Release != nil {
			blob.Release()
		}
		fail(derrors.Wrap(
			fmt.Errorf("upload of %q: %w: %w", destinationPath, sentinel.ErrCancelled, ctx.Err()),
			derrors.CodeUnavailable, "upload cancelled"))
	}

	if ctx.Err() != nil {
		cancel()
		return
	}

	sess, err := c.store.NewSession(ctx, destinationPath, blob.Size(), blob.ContentType)
	if err != nil {
		fail(derrors.Wrap(err, derrors.CodeUnavailable, "could not reach object storage"))
		return
	}

	total := blob.Size()
	for offset := int64(0); offset < total; offset += int64(c.chunkSize) {
		if ctx.Err() != nil {
			cancel()
			return
		}

		end := offset + int64(c.chunkSize)
		if end > total {
			end = total
		}
		if err := sess.Put(ctx, offset, blob.Data[offset:end]); err != nil {
			fail(derrors.Wrap(err, derrors.CodeUnavailable, "upload transfer failed"))
			return
		}

		task.emitProgress(float64(end) / float64(total) * 100)
	}

	url, err := sess.Commit(ctx)
	if err != nil {
		fail(derrors.Wrap(err, derrors.CodeUnavailable, "upload could not be finalized"))
		return
	}

	uploadDurationSeconds.Observe(time.Since(start).Seconds())
	c.logger.InfoContext(ctx, "upload complete",
		"path", destinationPath,
		"size", total,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	task.succeed(url)
}
