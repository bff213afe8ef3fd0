package main

import (
	"context"
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/linkforty/go-linkforty/adapters/hostdevice"
	"github.com/linkforty/go-linkforty/adapters/kafkasink"
	"github.com/linkforty/go-linkforty/adapters/prommetrics"
	"github.com/linkforty/go-linkforty/adapters/webhook"
	"github.com/linkforty/go-linkforty/pkg/config"
	"github.com/linkforty/go-linkforty/pkg/interfaces/broadcaster"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
	"github.com/linkforty/go-linkforty/pkg/logging"
	"github.com/linkforty/go-linkforty/pkg/sdk"
	"github.com/linkforty/go-linkforty/pkg/storage"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	envFile    string
	baseURL    string
	debug      bool
	screen     string
}

// app holds the bootstrapped SDK for one CLI invocation.
type app struct {
	cfg      config.Config
	logger   logger.Logger
	module   *sdk.Module
	registry *prometheus.Registry
	sink     *kafkasink.Sink
}

func loadConfig(flags globalFlags) (config.Config, error) {
	if flags.envFile != "" {
		if err := godotenv.Load(flags.envFile); err != nil {
			return config.Config{}, fmt.Errorf("load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := config.Defaults()
	if path := config.ResolvePath(flags.configPath); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	cfg = config.ApplyEnv(cfg)
	if flags.baseURL != "" {
		cfg.BaseURL = flags.baseURL
	}
	if flags.debug {
		cfg.Debug = true
	}
	return config.Prepare(cfg)
}

func bootstrap(ctx context.Context, flags globalFlags, stderr io.Writer) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	lgr, err := logging.NewWithWriter(cfg.Logging, stderr)
	if err != nil {
		return nil, err
	}
	lgr.Debug("configuration loaded", logger.Field{Key: "config", Value: cfg.Masked()})

	providers, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	collector, err := prommetrics.New(registry, cfg.Metrics.Namespace)
	if err != nil {
		providers.Close()
		return nil, err
	}

	a := &app{cfg: cfg, logger: lgr, registry: registry}

	fanout := broadcaster.NewFanout()
	if len(cfg.Sink.KafkaBrokers) > 0 {
		a.sink, err = kafkasink.Dial(cfg.Sink.KafkaBrokers, cfg.Sink.KafkaTopic, lgr)
		if err != nil {
			providers.Close()
			return nil, err
		}
		fanout.Add(a.sink)
	}
	if cfg.Sink.WebhookURL != "" {
		fanout.Add(webhook.New(lgr, webhook.WithConfig(webhook.Config{
			URL:     cfg.Sink.WebhookURL,
			Timeout: cfg.Request.Timeout,
		})), cfg.Sink.WebhookTopics...)
	}
	var sink broadcaster.Broadcaster
	if fanout.Len() > 0 {
		sink = fanout
	}

	deviceOpts := []hostdevice.Option{hostdevice.WithUserAgent(cfg.Request.UserAgent)}
	if flags.screen != "" {
		var w, h int
		if _, err := fmt.Sscanf(flags.screen, "%dx%d", &w, &h); err == nil {
			deviceOpts = append(deviceOpts, hostdevice.WithScreen(w, h))
		}
	}

	a.module, err = sdk.NewModule(sdk.ModuleOptions{
		Config:      cfg,
		Storage:     providers,
		Logger:      lgr,
		Fingerprint: hostdevice.New(deviceOpts...),
		Metrics:     collector,
		Broadcaster: sink,
	})
	if err != nil {
		a.Close()
		providers.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the module storage and the Kafka writer.
func (a *app) Close() error {
	var err error
	if a.module != nil {
		err = a.module.Close()
	}
	if a.sink != nil {
		if cerr := a.sink.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
