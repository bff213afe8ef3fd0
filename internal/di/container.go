package di

import (
	"github.com/linkforty/go-linkforty/pkg/attribution"
	"github.com/linkforty/go-linkforty/pkg/commands"
	"github.com/linkforty/go-linkforty/pkg/config"
	"github.com/linkforty/go-linkforty/pkg/events"
	"github.com/linkforty/go-linkforty/pkg/fingerprint"
	"github.com/linkforty/go-linkforty/pkg/install"
	"github.com/linkforty/go-linkforty/pkg/interfaces/broadcaster"
	"github.com/linkforty/go-linkforty/pkg/interfaces/cache"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
	"github.com/linkforty/go-linkforty/pkg/interfaces/metrics"
	"github.com/linkforty/go-linkforty/pkg/resolver"
	"github.com/linkforty/go-linkforty/pkg/retry"
	"github.com/linkforty/go-linkforty/pkg/storage"
	"github.com/linkforty/go-linkforty/pkg/transport"
)

// Options configure the DI container.
type Options struct {
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

// Container wires transport, resolution, attribution, install and commands.
type Container struct {
	Config      config.Config
	Storage     storage.Providers
	Logger      logger.Logger
	Request     transport.RequestFunc
	Fingerprint fingerprint.Provider
	Resolver    *resolver.Resolver
	Reconciler  *attribution.Reconciler
	Installer   *install.Reporter
	Events      *events.Service
	Commands    *commands.Registry
}

// New constructs the container using the supplied options.
func New(opts Options) (*Container, error) {
	cfg, err := config.Prepare(opts.Config)
	if err != nil {
		return nil, err
	}

	providers := opts.Storage
	if providers.KV == nil {
		providers = storage.Providers{KV: storage.NewMemoryStore()}
	}

	lgr := opts.Logger
	if lgr == nil {
		lgr = &logger.Nop{}
	}

	c := opts.Cache
	if c == nil {
		c = cache.NewMemory()
	}

	m := opts.Metrics
	if m == nil {
		m = &metrics.Nop{}
	}

	fp := opts.Fingerprint
	if fp == nil {
		fp = &fingerprint.Nop{}
	}
	fp = fingerprint.NewCached(fp, c, cfg.Fingerprint.CacheTTL)

	request := opts.Request
	if request == nil {
		request = transport.NewHTTPClientFromConfig(cfg, lgr).Func()
	}
	backoff := retry.ExponentialBackoff{
		Base:   cfg.Request.RetryBaseDelay,
		Max:    cfg.Request.RetryMaxDelay,
		Jitter: true,
	}
	middleware := append([]transport.Middleware{
		transport.WithTracing(nil),
		transport.WithRetry(backoff, cfg.Request.MaxRetries, lgr),
	}, opts.Middleware...)
	request = transport.Chain(request, middleware...)

	res, err := resolver.New(resolver.Dependencies{
		Request:     request,
		Fingerprint: fp,
		Logger:      lgr,
		Metrics:     m,
	})
	if err != nil {
		return nil, err
	}

	listeners := attribution.NewRegistry(lgr)
	if opts.Broadcaster != nil {
		sink := attribution.NewBroadcastListener(opts.Broadcaster, lgr)
		listeners.OnDeepLink(sink)
		listeners.OnDeferredDeepLink(sink)
	}

	reconciler := attribution.New(attribution.Dependencies{
		BaseURL:   cfg.BaseURL,
		Resolver:  res,
		Listeners: listeners,
		Logger:    lgr,
		Metrics:   m,
	})

	installer, err := install.New(install.Dependencies{
		Request:                request,
		Fingerprint:            fp,
		Store:                  providers.KV,
		AttributionWindowHours: cfg.AttributionWindowHours,
		Logger:                 lgr,
		Metrics:                m,
	})
	if err != nil {
		return nil, err
	}

	eventSvc, err := events.New(events.Dependencies{
		Handler: reconciler,
		Logger:  lgr,
	})
	if err != nil {
		return nil, err
	}

	cmdRegistry, err := commands.New(commands.Dependencies{
		Events:     eventSvc,
		Installer:  installer,
		Reconciler: reconciler,
		Logger:     lgr,
	})
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:      cfg,
		Storage:     providers,
		Logger:      lgr,
		Request:     request,
		Fingerprint: fp,
		Resolver:    res,
		Reconciler:  reconciler,
		Installer:   installer,
		Events:      eventSvc,
		Commands:    cmdRegistry,
	}, nil
}
