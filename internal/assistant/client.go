// Package assistant relays dashboard messages to the chatbot webhook and
// normalizes whatever shape the bot answers with into a plain reply.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNoEndpoint indicates the webhook URL is not configured.
var ErrNoEndpoint = errors.New("assistant endpoint is not configured")

// replyFields is the priority order of JSON keys a webhook answer may
// carry its text under. Different bot runtimes use different keys; the
// first non-empty one wins.
var replyFields = []string{"output", "reply", "response", "message", "text", "answer"}

type request struct {
	Message   string `json:"message"`
	Date      string `json:"date"`
	SessionID string `json:"sessionId"`
}

// Client talks to the external chatbot webhook. A session identifier is
// generated once per client so the bot can keep conversational context.
type Client struct {
	url       string
	sessionID string
	http      *http.Client
	logger    *slog.Logger
	now       func() time.Time
}

// Option tunes a Client.
type Option func(*Client)

// WithHTTPClient substitutes the HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithClock substitutes the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a webhook client for the given endpoint.
func New(url string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		url:       url,
		sessionID: uuid.NewString(),
		http:      &http.Client{Timeout: 30 * time.Second},
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SessionID returns the conversational session identifier.
func (c *Client) SessionID() string { return c.sessionID }

// Send posts a message to the webhook and returns the normalized reply.
func (c *Client) Send(ctx context.Context, message string) (string, error) {
	if c.url == "" {
		return "", ErrNoEndpoint
	}

	body, err := json.Marshal(request{
		Message:   message,
		Date:      c.now().Format(time.RFC3339),
		SessionID: c.sessionID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode assistant request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build assistant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant webhook unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read assistant reply: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("assistant webhook returned status %d", resp.StatusCode)
	}

	reply := normalizeReply(raw)
	c.logger.Debug("assistant reply received", "bytes", len(raw))
	return reply, nil
}

// normalizeReply extracts the reply text from a webhook answer. JSON
// objects are probed for the known reply fields in priority order;
// JSON arrays take the first element; anything else is treated as plain
// text.
func normalizeReply(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err == nil {
		for _, field := range replyFields {
			if v, ok := obj[field]; ok {
				var s string
				if err := json.Unmarshal(v, &s); err == nil && s != "" {
					return s
				}
			}
		}
		return string(trimmed)
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(trimmed, &arr); err == nil && len(arr) > 0 {
		return normalizeReply(arr[0])
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(trimmed))
}
