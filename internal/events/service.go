package events

import (
	"context"
	"errors"
	"sync"

	"github.com/linkforty/go-linkforty/pkg/domain"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
)

// IntakeRequest describes one URL the host app was opened with.
type IntakeRequest struct {
	URL string
}

// URLHandler turns a raw URL into a delivered LinkEvent.
type URLHandler interface {
	HandleURL(ctx context.Context, rawURL string) domain.LinkEvent
}

// Source supplies link-launch notifications. LaunchURL reports the URL that
// started the app, if any. URLs streams later opens and is closed when the
// source shuts down.
type Source interface {
	LaunchURL(ctx context.Context) (string, bool)
	URLs() <-chan string
}

// Dependencies wires the intake service.
type Dependencies struct {
	Handler URLHandler
	Logger  logger.Logger
}

// Service feeds incoming URLs to the handler one at a time.
type Service struct {
	handler URLHandler
	logger  logger.Logger
}

var (
	errHandlerRequired = errors.New("events: url handler is required")
	errSourceRequired  = errors.New("events: source is required")
)

// NewService constructs the intake service.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Handler == nil {
		return nil, errHandlerRequired
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	return &Service{
		handler: deps.Handler,
		logger:  logger.Component(deps.Logger, "events"),
	}, nil
}

// Enqueue hands the URL to the handler unchanged, so listeners see exactly
// the string the source produced. Blank URLs are delivered too, with nil
// data. It fails only when ctx is already done.
func (s *Service) Enqueue(ctx context.Context, req IntakeRequest) (domain.LinkEvent, error) {
	if err := ctx.Err(); err != nil {
		return domain.LinkEvent{}, err
	}
	return s.handler.HandleURL(ctx, req.URL), nil
}

// Listen handles the launch URL first and then every URL from src in arrival
// order. It returns nil when the source closes and ctx.Err() on cancellation.
func (s *Service) Listen(ctx context.Context, src Source) error {
	if src == nil {
		return errSourceRequired
	}
	if url, ok := src.LaunchURL(ctx); ok {
		s.handle(ctx, url)
	}
	urls := src.URLs()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case url, ok := <-urls:
			if !ok {
				s.logger.Debug("link source closed")
				return nil
			}
			s.handle(ctx, url)
		}
	}
}

func (s *Service) handle(ctx context.Context, url string) {
	if _, err := s.Enqueue(ctx, IntakeRequest{URL: url}); err != nil {
		s.logger.Debug("ignoring link event", logger.Field{Key: "error", Value: err})
	}
}

// ChannelSource is an in-process Source fed through Push.
type ChannelSource struct {
	launch string
	ch     chan string

	mu     sync.Mutex
	closed bool
}

var _ Source = (*ChannelSource)(nil)

// NewChannelSource returns a source with an optional launch URL and a buffer
// for pushed URLs.
func NewChannelSource(launchURL string, buffer int) *ChannelSource {
	if buffer < 0 {
		buffer = 0
	}
	return &ChannelSource{launch: launchURL, ch: make(chan string, buffer)}
}

func (c *ChannelSource) LaunchURL(ctx context.Context) (string, bool) {
	return c.launch, c.launch != ""
}

func (c *ChannelSource) URLs() <-chan string {
	return c.ch
}

// Push delivers url to the listener, blocking while the buffer is full.
func (c *ChannelSource) Push(ctx context.Context, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrSourceClosed
	}
	select {
	case c.ch <- url:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close ends the stream. Further pushes fail with ErrSourceClosed.
func (c *ChannelSource) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}

// ErrSourceClosed is returned by Push after Close.
var ErrSourceClosed = errors.New("events: source closed")
