// Package notionstore talks to the Notion database that holds the task
// records. Every call is a fresh round trip; there is no client-side cache.
package notionstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"agentq/internal/config"
	"agentq/internal/ports"
	"agentq/pkg/backoff"
)

const notionVersion = "2022-06-28"

var _ ports.Store = (*Client)(nil)

type Client struct {
	cfg  config.Notion
	http *http.Client
}

func New(cfg config.Notion) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

// do runs one API request. Notion rate-limits aggressively, so 429 and
// transient 5xx are retried a few times with jittered backoff; any other
// failure surfaces immediately.
func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return err
		}
	}

	const maxAttempts = 3
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := backoff.ExponentialJitter(500*time.Millisecond, 5*time.Second, attempt-1)
			log.Ctx(ctx).Warn().Dur("delay", delay).Int("attempt", attempt).Msg("retrying notion request")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Notion-Version", notionVersion)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if out == nil || len(raw) == 0 {
				return nil
			}
			return json.Unmarshal(raw, out)
		case resp.StatusCode == http.StatusTooManyRequests,
			resp.StatusCode == http.StatusBadGateway,
			resp.StatusCode == http.StatusServiceUnavailable:
			lastErr = fmt.Errorf("notion HTTP %d: %s", resp.StatusCode, raw)
			continue
		default:
			return fmt.Errorf("notion HTTP %d: %s", resp.StatusCode, raw)
		}
	}
	return lastErr
}
