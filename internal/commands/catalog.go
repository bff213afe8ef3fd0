package commands

import (
	"context"
	"errors"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/linkforty/go-linkforty/pkg/domain"
	"github.com/linkforty/go-linkforty/pkg/events"
	"github.com/linkforty/go-linkforty/pkg/install"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
)

// Catalog exposes go-command compatible handlers for host transports.
type Catalog struct {
	HandleURL     command.Commander[HandleURL]
	ReportInstall command.Commander[ReportInstall]
	ClearData     command.Commander[ClearData]
}

type eventService interface {
	Enqueue(ctx context.Context, req events.IntakeRequest) (domain.LinkEvent, error)
}

type installService interface {
	Launch(ctx context.Context, deliverer install.DeferredDeliverer, force bool) (install.LaunchResult, error)
	Clear(ctx context.Context) error
}

// Dependencies wires services into the command catalog.
type Dependencies struct {
	Events    eventService
	Installer installService
	Deferred  install.DeferredDeliverer
	Logger    logger.Logger
}

// NewCatalog builds the command catalog using the supplied dependencies.
func NewCatalog(deps Dependencies) (*Catalog, error) {
	if deps.Events == nil {
		return nil, errors.New("commands: events service is required")
	}
	if deps.Installer == nil {
		return nil, errors.New("commands: install service is required")
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	lgr := logger.Component(deps.Logger, "commands")

	return &Catalog{
		HandleURL:     handleURLCommand{svc: deps.Events},
		ReportInstall: reportInstallCommand{svc: deps.Installer, deferred: deps.Deferred, logger: lgr},
		ClearData:     clearDataCommand{svc: deps.Installer, logger: lgr},
	}, nil
}

// HandleURL asks the SDK to process a link the app was opened with. When
// Result is set it receives the delivered event.
type HandleURL struct {
	URL    string            `json:"url"`
	Result *domain.LinkEvent `json:"-"`
}

type handleURLCommand struct {
	svc eventService
}

func (c handleURLCommand) Execute(ctx context.Context, msg HandleURL) error {
	if strings.TrimSpace(msg.URL) == "" {
		return errors.New("commands: url is required")
	}
	evt, err := c.svc.Enqueue(ctx, events.IntakeRequest{URL: msg.URL})
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = evt
	}
	return nil
}

// ReportInstall runs first-launch attribution. Force reports even when a
// launch was already recorded.
type ReportInstall struct {
	Force  bool                  `json:"force"`
	Result *install.LaunchResult `json:"-"`
}

type reportInstallCommand struct {
	svc      installService
	deferred install.DeferredDeliverer
	logger   logger.Logger
}

func (c reportInstallCommand) Execute(ctx context.Context, msg ReportInstall) error {
	res, err := c.svc.Launch(ctx, c.deferred, msg.Force)
	if err != nil {
		return err
	}
	c.logger.Debug("install command completed",
		logger.Field{Key: "first_launch", Value: res.FirstLaunch},
		logger.Field{Key: "reported", Value: res.Reported},
	)
	if msg.Result != nil {
		*msg.Result = res
	}
	return nil
}

// ClearData removes the stored install state.
type ClearData struct{}

type clearDataCommand struct {
	svc    installService
	logger logger.Logger
}

func (c clearDataCommand) Execute(ctx context.Context, msg ClearData) error {
	if err := c.svc.Clear(ctx); err != nil {
		return err
	}
	c.logger.Info("install data cleared")
	return nil
}
