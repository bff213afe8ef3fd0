// Package sdk is the entry point host applications construct once at startup
// and pass to every call site that handles links.
package sdk

import (
	"context"
	"errors"

	"github.com/linkforty/go-linkforty/internal/di"
	"github.com/linkforty/go-linkforty/pkg/attribution"
	"github.com/linkforty/go-linkforty/pkg/commands"
	"github.com/linkforty/go-linkforty/pkg/config"
	"github.com/linkforty/go-linkforty/pkg/domain"
	"github.com/linkforty/go-linkforty/pkg/events"
	"github.com/linkforty/go-linkforty/pkg/fingerprint"
	"github.com/linkforty/go-linkforty/pkg/install"
	"github.com/linkforty/go-linkforty/pkg/interfaces/broadcaster"
	"github.com/linkforty/go-linkforty/pkg/interfaces/cache"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
	"github.com/linkforty/go-linkforty/pkg/interfaces/metrics"
	"github.com/linkforty/go-linkforty/pkg/resolver"
	"github.com/linkforty/go-linkforty/pkg/storage"
	"github.com/linkforty/go-linkforty/pkg/transport"
)

// ErrNotInitialised is returned when a method is called on a nil Module.
var ErrNotInitialised = errors.New("sdk: module not initialised")

// ModuleOptions configure the SDK module facade.
type ModuleOptions struct {
	Config      config.Config
	Storage     storage.Providers
	Logger      logger.Logger
	Cache       cache.Cache
	Fingerprint fingerprint.Provider
	Request     transport.RequestFunc
	Middleware  []transport.Middleware
	Metrics     metrics.Collector
	Broadcaster broadcaster.Broadcaster
}

// Module bundles the container and exposes the host-facing API.
type Module struct {
	container *di.Container
}

// NewModule assembles transport, resolver, reconciler, installer and commands.
func NewModule(opts ModuleOptions) (*Module, error) {
	container, err := di.New(di.Options{
		Config:      opts.Config,
		Storage:     opts.Storage,
		Logger:      opts.Logger,
		Cache:       opts.Cache,
		Fingerprint: opts.Fingerprint,
		Request:     opts.Request,
		Middleware:  opts.Middleware,
		Metrics:     opts.Metrics,
		Broadcaster: opts.Broadcaster,
	})
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Initialize runs first-launch attribution. On the first launch the install
// is reported and deferred listeners are called exactly once; later launches
// return the stored result. Register deferred listeners before calling it.
func (m *Module) Initialize(ctx context.Context) (install.LaunchResult, error) {
	if !m.ready() {
		return install.LaunchResult{}, ErrNotInitialised
	}
	return m.container.Installer.Launch(ctx, m.container.Reconciler, false)
}

// HandleURL processes one incoming link URL and delivers the result to deep
// link listeners exactly once.
func (m *Module) HandleURL(ctx context.Context, rawURL string) (domain.LinkEvent, error) {
	if !m.ready() {
		return domain.LinkEvent{}, ErrNotInitialised
	}
	return m.container.Reconciler.HandleURL(ctx, rawURL), nil
}

// Listen feeds every URL from src through HandleURL until src closes or ctx
// ends.
func (m *Module) Listen(ctx context.Context, src events.Source) error {
	if !m.ready() {
		return ErrNotInitialised
	}
	return m.container.Events.Listen(ctx, src)
}

// OnDeepLink registers a direct-link listener.
func (m *Module) OnDeepLink(l attribution.DeepLinkListener) attribution.CancelFunc {
	if !m.ready() {
		return func() {}
	}
	return m.container.Reconciler.Listeners().OnDeepLink(l)
}

// OnDeferredDeepLink registers a first-install listener.
func (m *Module) OnDeferredDeepLink(l attribution.DeferredListener) attribution.CancelFunc {
	if !m.ready() {
		return func() {}
	}
	return m.container.Reconciler.Listeners().OnDeferredDeepLink(l)
}

// InstallData returns the stored deferred link data, or nil.
func (m *Module) InstallData(ctx context.Context) (*domain.LinkData, error) {
	if !m.ready() {
		return nil, ErrNotInitialised
	}
	return m.container.Installer.InstallData(ctx)
}

// InstallID returns the server-issued install ID, or "" before the first
// successful report.
func (m *Module) InstallID(ctx context.Context) (string, error) {
	if !m.ready() {
		return "", ErrNotInitialised
	}
	id, _, err := m.container.Installer.InstallID(ctx)
	return id, err
}

// ClearData removes stored install state.
func (m *Module) ClearData(ctx context.Context) error {
	if !m.ready() {
		return ErrNotInitialised
	}
	return m.container.Installer.Clear(ctx)
}

// Close releases storage handles.
func (m *Module) Close() error {
	if !m.ready() {
		return nil
	}
	return m.container.Storage.Close()
}

// Resolver returns the remote resolver.
func (m *Module) Resolver() *resolver.Resolver {
	if !m.ready() {
		return nil
	}
	return m.container.Resolver
}

// Reconciler returns the attribution reconciler.
func (m *Module) Reconciler() *attribution.Reconciler {
	if !m.ready() {
		return nil
	}
	return m.container.Reconciler
}

// Events returns the link intake service.
func (m *Module) Events() *events.Service {
	if !m.ready() {
		return nil
	}
	return m.container.Events
}

// Commands returns the go-command registry.
func (m *Module) Commands() *commands.Registry {
	if !m.ready() {
		return nil
	}
	return m.container.Commands
}

// Config returns the effective module configuration.
func (m *Module) Config() config.Config {
	if !m.ready() {
		return config.Config{}
	}
	return m.container.Config
}

// Container returns the internal DI container.
// This is exposed for advanced use cases like direct storage access.
func (m *Module) Container() *di.Container {
	if m == nil {
		return nil
	}
	return m.container
}

func (m *Module) ready() bool {
	return m != nil && m.container != nil
}
