package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"instadoc/pkg/platform/sentinel"
)

// HTTPStore speaks the object-storage service's resumable protocol:
//
//	POST {base}/v1/sessions {path,size,content_type} -> 201 {session_url}
//	PUT  {session_url} + Content-Range               -> 2xx per chunk
//	POST {session_url}/commit                        -> 200 {url}
type HTTPStore struct {
	base string
	http *http.Client
}

type HTTPStoreOption func(*HTTPStore)

// WithHTTPClient overrides the underlying HTTP client. For tests.
func WithHTTPClient(h *http.Client) HTTPStoreOption {
	return func(s *HTTPStore) { s.http = h }
}

func NewHTTPStore(base string, opts ...HTTPStoreOption) *HTTPStore {
	s := &HTTPStore{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type sessionRequest struct {
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

type sessionResponse struct {
	SessionURL string `json:"session_url"`
}

type commitResponse struct {
	URL string `json:"url"`
}

func (s *HTTPStore) NewSession(ctx context.Context, path string, size int64, contentType string) (Session, error) {
	body, err := json.Marshal(sessionRequest{Path: path, Size: size, ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.base+"/v1/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open upload session: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("open upload session answered %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}

	var sr sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode session response: %w", err)
	}
	if sr.SessionURL == "" {
		return nil, fmt.Errorf("object storage returned no session URL: %w", sentinel.ErrUnavailable)
	}

	return &httpSession{store: s, url: sr.SessionURL, total: size}, nil
}

type httpSession struct {
	store *HTTPStore
	url   string
	total int64
}

func (h *httpSession) Put(ctx context.Context, offset int64, chunk []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, h.url, bytes.NewReader(chunk))
	if err != nil {
		return fmt.Errorf("build chunk request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Content-Range",
		fmt.Sprintf("bytes %d-%d/%d", offset, offset+int64(len(chunk))-1, h.total))

	resp, err := h.store.http.Do(req)
	if err != nil {
		return fmt.Errorf("put chunk at %d: %w: %w", offset, sentinel.ErrUnavailable, err)
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("put chunk at %d answered %d: %w", offset, resp.StatusCode, sentinel.ErrUnavailable)
	}
	return nil
}

func (h *httpSession) Commit(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url+"/commit", nil)
	if err != nil {
		return "", fmt.Errorf("build commit request: %w", err)
	}

	resp, err := h.store.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("commit upload: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("commit upload answered %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}

	var cr commitResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode commit response: %w", err)
	}
	if cr.URL == "" {
		return "", fmt.Errorf("object storage returned no download URL: %w", sentinel.ErrUnavailable)
	}
	return cr.URL, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
