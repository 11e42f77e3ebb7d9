package upload

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	derrors "instadoc/pkg/domain-errors"
	"instadoc/pkg/platform/sentinel"
)

// failingStore counts sessions and fails the chunk at failAtOffset.
type failingStore struct {
	sessions     int
	failAtOffset int64
	commitErr    error
	inner        *MemoryStore
}

func (f *failingStore) NewSession(ctx context.Context, path string, size int64, contentType string) (Session, error) {
	f.sessions++
	s, err := f.inner.NewSession(ctx, path, size, contentType)
	if err != nil {
		return nil, err
	}
	return &failingSession{Session: s, store: f}, nil
}

type failingSession struct {
	Session
	store *failingStore
}

func (f *failingSession) Put(ctx context.Context, offset int64, chunk []byte) error {
	if f.store.failAtOffset > 0 && offset >= f.store.failAtOffset {
		return errors.New("connection reset by peer")
	}
	return f.Session.Put(ctx, offset, chunk)
}

func (f *failingSession) Commit(ctx context.Context) (string, error) {
	if f.store.commitErr != nil {
		return "", f.store.commitErr
	}
	return f.Session.Commit(ctx)
}

type ClientSuite struct {
	suite.Suite
	store *MemoryStore
}

func (s *ClientSuite) SetupTest() {
	s.store = NewMemoryStore()
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

// collect drains the event stream, returning progress values and the terminal event.
func collect(s *ClientSuite, task *Task) ([]float64, Event) {
	s.T().Helper()
	var progress []float64
	var terminal Event
	terminals := 0
	for ev := range task.Events() {
		if ev.Terminal {
			terminal = ev
			terminals++
			continue
		}
		progress = append(progress, ev.Progress)
	}
	s.Require().Equal(1, terminals, "expected exactly one terminal event")
	return progress, terminal
}

func (s *ClientSuite) TestSuccessfulUpload() {
	client := NewClient(s.store, WithChunkSize(1024))
	blob := Blob{Name: "photo.jpg", ContentType: "image/jpeg", Data: bytes.Repeat([]byte{0xAB}, 5000)}

	task := client.Upload(context.Background(), blob, "profiles/u1/photo.jpg")
	progress, terminal := collect(s, task)

	s.Run("terminal event carries the download URL", func() {
		s.NoError(terminal.Err)
		s.Equal("mem://profiles/u1/photo.jpg", terminal.URL)
	})

	s.Run("progress is emitted on every chunk boundary", func() {
		s.Len(progress, 5) // 5000 bytes in 1024-byte chunks
	})

	s.Run("progress is non-decreasing within [0,100] and ends at 100", func() {
		prev := 0.0
		for _, p := range progress {
			s.GreaterOrEqual(p, prev)
			s.LessOrEqual(p, 100.0)
			prev = p
		}
		s.InDelta(100.0, progress[len(progress)-1], 1e-9)
	})

	s.Run("object bytes arrive intact", func() {
		got, ok := s.store.Object("profiles/u1/photo.jpg")
		s.Require().True(ok)
		s.Equal(blob.Data, got)
	})

	s.Run("task progress reads as not pending after terminal", func() {
		_, ok := task.Progress()
		s.False(ok)
	})
}

func (s *ClientSuite) TestFileTooLarge() {
	recorder := &failingStore{inner: s.store}
	client := NewClient(recorder)
	blob := Blob{Name: "huge.pdf", Data: make([]byte, MaxBlobSize+1)}

	task := client.Upload(context.Background(), blob, "certificates/u1/huge.pdf")
	progress, terminal := collect(s, task)

	s.Empty(progress, "no progress may be emitted for an oversized blob")
	s.Require().Error(terminal.Err)
	s.ErrorIs(terminal.Err, sentinel.ErrTooLarge)
	s.True(derrors.HasCode(terminal.Err, derrors.CodeTooLarge))
	s.Zero(recorder.sessions, "no network activity may happen for an oversized blob")
}

func (s *ClientSuite) TestExactLimitIsAccepted() {
	client := NewClient(s.store)
	blob := Blob{Name: "max.bin", Data: make([]byte, MaxBlobSize)}

	task := client.Upload(context.Background(), blob, "certificates/u1/max.bin")
	url, err := task.Wait(context.Background())
	s.Require().NoError(err)
	s.Equal("mem://certificates/u1/max.bin", url)
}

func (s *ClientSuite) TestTransportFailure() {
	store := &failingStore{inner: s.store, failAtOffset: 2048}
	client := NewClient(store, WithChunkSize(1024))
	blob := Blob{Name: "photo.jpg", Data: make([]byte, 5000)}

	task := client.Upload(context.Background(), blob, "profiles/u1/photo.jpg")
	progress, terminal := collect(s, task)

	s.Require().Error(terminal.Err)
	s.True(derrors.HasCode(terminal.Err, derrors.CodeUnavailable))
	s.Len(progress, 2, "progress stops at the failing chunk")
	_, committed := s.store.Object("profiles/u1/photo.jpg")
	s.False(committed, "failed upload must not commit")
}

func (s *ClientSuite) TestCommitFailure() {
	store := &failingStore{inner: s.store, commitErr: errors.New("storage quota exceeded")}
	client := NewClient(store, WithChunkSize(1024))

	task := client.Upload(context.Background(), Blob{Name: "p", Data: make([]byte, 100)}, "profiles/u1/p")
	_, terminal := collect(s, task)

	s.Require().Error(terminal.Err)
	s.True(derrors.HasCode(terminal.Err, derrors.CodeUnavailable))
}

func (s *ClientSuite) TestCancellation() {
	released := false
	blob := Blob{
		Name:    "photo.jpg",
		Data:    make([]byte, 5000),
		Release: func() { released = true },
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // abandoned before the transfer starts

	client := NewClient(s.store, WithChunkSize(1024))
	task := client.Upload(ctx, blob, "profiles/u1/photo.jpg")
	progress, terminal := collect(s, task)

	s.Require().Error(terminal.Err)
	s.ErrorIs(terminal.Err, sentinel.ErrCancelled)
	s.Empty(progress)
	s.True(released, "cancellation must release the blob's preview handle")
}

func (s *ClientSuite) TestZeroByteBlob() {
	client := NewClient(s.store)
	task := client.Upload(context.Background(), Blob{Name: "empty"}, "profiles/u1/empty")
	url, err := task.Wait(context.Background())
	s.Require().NoError(err)
	s.Equal("mem://profiles/u1/empty", url)
}
