// Package discord delivers human-facing notifications through a webhook.
// One POST per call, no retry; failures are the caller's to log.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agentq/internal/domain"
	"agentq/internal/ports"
)

// maxChunk is Discord's safe message length; longer messages are split on
// line boundaries.
const maxChunk = 1800

var _ ports.Notifier = (*Notifier)(nil)

type Notifier struct {
	webhookURL string
	http       *http.Client
}

func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a webhook is configured; callers skip notification
// entirely when it is not.
func (n *Notifier) Enabled() bool { return n.webhookURL != "" }

func (n *Notifier) Notify(ctx context.Context, msg string) error {
	for _, chunk := range splitChunks(msg, maxChunk) {
		if err := n.post(ctx, chunk); err != nil {
			return &domain.NotifyError{Err: err}
		}
	}
	return nil
}

func (n *Notifier) post(ctx context.Context, content string) error {
	body, _ := json.Marshal(map[string]string{"content": content})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("discord HTTP %d", resp.StatusCode)
	}
	return nil
}

func splitChunks(text string, maxLen int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= maxLen {
		return []string{text}
	}
	var chunks []string
	var current []string
	size := 0
	for _, line := range strings.Split(text, "\n") {
		add := len(line)
		if size > 0 {
			add++
		}
		if size+add > maxLen && size > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = current[:0]
			size = 0
		}
		// a single oversized line gets hard-cut
		for len(line) > maxLen {
			chunks = append(chunks, line[:maxLen])
			line = line[maxLen:]
		}
		current = append(current, line)
		if size > 0 {
			size++
		}
		size += len(line)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}
	return chunks
}
