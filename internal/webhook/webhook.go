// Package webhook delivers reports to a chat webhook endpoint.
package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/verte-zerg/staffapp/internal/report"
)

// DefaultTimeout bounds a single delivery.
const DefaultTimeout = 10 * time.Second

// ErrNoEndpoint is returned when no webhook URL is configured.
var ErrNoEndpoint = errors.New("webhook url not configured")

// Client posts report payloads.
type Client struct {
	url       string
	userAgent string
	client    *http.Client
	log       *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.client = c
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) { cl.userAgent = ua }
}

// WithLogger sets the logger for failed deliveries.
func WithLogger(log *slog.Logger) Option {
	return func(cl *Client) {
		if log != nil {
			cl.log = log
		}
	}
}

// New returns a client posting to url.
func New(url string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		url:    strings.TrimSpace(url),
		client: &http.Client{Timeout: timeout},
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an endpoint is set.
func (c *Client) Configured() bool {
	return c.url != ""
}

// Send delivers r and reports success. Failures are logged, never returned.
func (c *Client) Send(ctx context.Context, r report.Report) bool {
	if err := c.Deliver(ctx, r); err != nil {
		c.log.Error("report delivery failed", "report_id", r.ID, "err", err)
		return false
	}
	c.log.Info("report delivered", "report_id", r.ID)
	return true
}

// Deliver posts r and returns the failure reason, if any.
func (c *Client) Deliver(ctx context.Context, r report.Report) error {
	if c.url == "" {
		return ErrNoEndpoint
	}
	body, err := r.JSON()
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}
	return nil
}
