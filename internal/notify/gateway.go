// Package notify delivers billing cutoff reminders through an external
// messaging gateway.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNoGateway indicates the gateway URL is not configured.
var ErrNoGateway = errors.New("notification gateway is not configured")

// Gateway posts plain-text alerts to the messaging endpoint.
type Gateway struct {
	url  string
	http *http.Client
}

// NewGateway creates a gateway client. A nil httpClient gets a default
// with a sane timeout.
func NewGateway(url string, httpClient *http.Client) *Gateway {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Gateway{url: url, http: httpClient}
}

// Send delivers one plain-text alert.
func (g *Gateway) Send(ctx context.Context, text string) error {
	if g.url == "" {
		return ErrNoGateway
	}

	body, err := json.Marshal(map[string]string{"message": text})
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("notification gateway unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification gateway returned status %d", resp.StatusCode)
	}
	return nil
}
