// Package webhook posts attribution events to an HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/linkforty/go-linkforty/pkg/interfaces/broadcaster"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
)

// Config configures the webhook target.
type Config struct {
	URL           string
	Method        string
	Headers       map[string]string
	Timeout       time.Duration
	BasicAuthUser string
	BasicAuthPass string
	DryRun        bool
}

// Broadcaster sends one request per event.
type Broadcaster struct {
	cfg    Config
	client *http.Client
	logger logger.Logger
}

var _ broadcaster.Broadcaster = (*Broadcaster)(nil)

type Option func(*Broadcaster)

// WithConfig sets the target configuration.
func WithConfig(cfg Config) Option {
	return func(b *Broadcaster) {
		b.cfg = cfg
	}
}

// WithClient allows injecting a custom HTTP client.
func WithClient(c *http.Client) Option {
	return func(b *Broadcaster) {
		if c != nil {
			b.client = c
		}
	}
}

// New constructs the webhook broadcaster.
func New(l logger.Logger, opts ...Option) *Broadcaster {
	b := &Broadcaster{
		logger: logger.Component(l, "webhook"),
		cfg: Config{
			Method:  http.MethodPost,
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	if b.cfg.Method == "" {
		b.cfg.Method = http.MethodPost
	}
	if b.client == nil {
		b.client = &http.Client{Timeout: b.cfg.Timeout}
	}
	return b
}

// Broadcast implements broadcaster.Broadcaster.
func (b *Broadcaster) Broadcast(ctx context.Context, event broadcaster.Event) error {
	if b.cfg.DryRun {
		b.logger.Info("webhook dry run, send skipped",
			logger.Field{Key: "url", Value: b.cfg.URL},
			logger.Field{Key: "topic", Value: event.Topic},
		)
		return nil
	}
	if strings.TrimSpace(b.cfg.URL) == "" {
		return fmt.Errorf("webhook: url is required")
	}

	body, err := json.Marshal(map[string]any{
		"topic":   event.Topic,
		"key":     event.Key,
		"payload": event.Payload,
	})
	if err != nil {
		return fmt.Errorf("webhook: encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(b.cfg.Method), b.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: build request: %w", err)
	}
	for k, v := range b.cfg.Headers {
		req.Header.Set(k, v)
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.cfg.BasicAuthUser != "" {
		req.SetBasicAuth(b.cfg.BasicAuthUser, b.cfg.BasicAuthPass)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}
	b.logger.Debug("webhook delivered",
		logger.Field{Key: "topic", Value: event.Topic},
		logger.Field{Key: "status", Value: resp.StatusCode},
	)
	return nil
}
