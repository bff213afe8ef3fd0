package events

import (
	"context"
	"errors"

	interevents "github.com/linkforty/go-linkforty/internal/events"
	"github.com/linkforty/go-linkforty/pkg/domain"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
)

// Re-export intake types for callers.
type (
	IntakeRequest = interevents.IntakeRequest
	Source        = interevents.Source
	URLHandler    = interevents.URLHandler
	ChannelSource = interevents.ChannelSource
)

// ErrSourceClosed is returned when pushing to a closed ChannelSource.
var ErrSourceClosed = interevents.ErrSourceClosed

// NewChannelSource returns an in-process Source.
func NewChannelSource(launchURL string, buffer int) *ChannelSource {
	return interevents.NewChannelSource(launchURL, buffer)
}

// Service exposes the link intake pipeline.
type Service struct {
	internal *interevents.Service
}

// Dependencies wires the URL handler, normally an attribution.Reconciler.
type Dependencies struct {
	Handler URLHandler
	Logger  logger.Logger
}

// New constructs the public façade.
func New(deps Dependencies) (*Service, error) {
	internalSvc, err := interevents.NewService(interevents.Dependencies{
		Handler: deps.Handler,
		Logger:  deps.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Service{internal: internalSvc}, nil
}

// Enqueue handles a single URL.
func (s *Service) Enqueue(ctx context.Context, req IntakeRequest) (domain.LinkEvent, error) {
	if s == nil || s.internal == nil {
		return domain.LinkEvent{}, errServiceNotInitialised
	}
	return s.internal.Enqueue(ctx, req)
}

// Listen consumes src until it closes or ctx ends.
func (s *Service) Listen(ctx context.Context, src Source) error {
	if s == nil || s.internal == nil {
		return errServiceNotInitialised
	}
	return s.internal.Listen(ctx, src)
}

var errServiceNotInitialised = errors.New("events: service not initialised")
