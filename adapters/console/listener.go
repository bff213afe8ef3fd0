// Package console prints attribution deliveries for local debugging.
package console

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/linkforty/go-linkforty/pkg/attribution"
	"github.com/linkforty/go-linkforty/pkg/domain"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
)

// Listener writes one JSON line per delivery to out, or logs it when
// structured mode is on.
type Listener struct {
	mu         sync.Mutex
	out        io.Writer
	logger     logger.Logger
	structured bool
}

var (
	_ attribution.DeepLinkListener = (*Listener)(nil)
	_ attribution.DeferredListener = (*Listener)(nil)
)

type Option func(*Listener)

// WithWriter overrides stdout.
func WithWriter(w io.Writer) Option {
	return func(l *Listener) {
		if w != nil {
			l.out = w
		}
	}
}

// WithStructured routes deliveries through the logger instead of the writer.
func WithStructured(enabled bool) Option {
	return func(l *Listener) { l.structured = enabled }
}

// Line is the JSON shape written per delivery.
type Line struct {
	Kind string           `json:"kind"`
	URL  string           `json:"url,omitempty"`
	Data *domain.LinkData `json:"data"`
}

// New constructs a console listener.
func New(lgr logger.Logger, opts ...Option) *Listener {
	l := &Listener{
		out:    os.Stdout,
		logger: logger.Component(lgr, "console"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

func (l *Listener) OnDeepLink(ctx context.Context, url string, data *domain.LinkData) {
	l.emit(Line{Kind: "deeplink", URL: url, Data: data})
}

func (l *Listener) OnDeferredDeepLink(ctx context.Context, data *domain.LinkData) {
	l.emit(Line{Kind: "deferred", Data: data})
}

func (l *Listener) emit(line Line) {
	if l.structured {
		fields := []logger.Field{
			{Key: "kind", Value: line.Kind},
			{Key: "url", Value: line.URL},
			{Key: "matched", Value: line.Data != nil},
		}
		if line.Data != nil {
			fields = append(fields, logger.Field{Key: "short_code", Value: line.Data.ShortCode})
		}
		l.logger.Info("attribution delivered", fields...)
		return
	}
	payload, err := json.Marshal(line)
	if err != nil {
		l.logger.Error("console encode failed", logger.Field{Key: "error", Value: err})
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.out.Write(append(payload, '\n')); err != nil {
		l.logger.Warn("console write failed", logger.Field{Key: "error", Value: err})
	}
}
