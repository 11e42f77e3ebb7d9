// Package dispatch reaches the external mail/OTP delivery service over HTTP.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"instadoc/pkg/platform/sentinel"
)

// Client posts verification codes to the mail dispatch endpoint. Any non-2xx
// answer counts as a dispatch failure.
type Client struct {
	endpoint string
	http     *http.Client
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client. For tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type payload struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// Dispatch sends {email, otp} to the mail service.
func (c *Client) Dispatch(ctx context.Context, email, code string) error {
	body, err := json.Marshal(payload{Email: email, OTP: code})
	if err != nil {
		return fmt.Errorf("marshal dispatch payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build dispatch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mail dispatch: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("mail dispatch answered %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}
	return nil
}
