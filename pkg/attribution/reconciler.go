// Package attribution decides which link data reaches the host application.
//
// The Reconciler handles direct links: it extracts data locally, prefers the
// server's resolution when one is available and delivers exactly one result
// per URL event. NormalizeDeferred and DeliverDeferred handle the
// first-install path.
package attribution

import (
	"context"

	"github.com/linkforty/go-linkforty/pkg/domain"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
	"github.com/linkforty/go-linkforty/pkg/interfaces/metrics"
	"github.com/linkforty/go-linkforty/pkg/links"
	"github.com/linkforty/go-linkforty/pkg/resolver"
)

// Dependencies wires the reconciler. Resolver is optional; without it only
// local extraction is used.
type Dependencies struct {
	BaseURL   string
	Extractor links.Extractor
	Resolver  resolver.Remote
	Listeners *Registry
	Logger    logger.Logger
	Metrics   metrics.Collector
}

// Reconciler is configured once and then safe for concurrent HandleURL calls.
type Reconciler struct {
	baseURL   string
	extractor links.Extractor
	resolver  resolver.Remote
	listeners *Registry
	logger    logger.Logger
	metrics   metrics.Collector
}

// New builds a Reconciler, defaulting the extractor to links.NewLocal.
func New(deps Dependencies) *Reconciler {
	lgr := deps.Logger
	if lgr == nil {
		lgr = &logger.Nop{}
	}
	if deps.Extractor == nil {
		deps.Extractor = links.NewLocal(deps.BaseURL, logger.Component(lgr, "links"))
	}
	if deps.Listeners == nil {
		deps.Listeners = NewRegistry(lgr)
	}
	if deps.Metrics == nil {
		deps.Metrics = &metrics.Nop{}
	}
	return &Reconciler{
		baseURL:   deps.BaseURL,
		extractor: deps.Extractor,
		resolver:  deps.Resolver,
		listeners: deps.Listeners,
		logger:    logger.Component(lgr, "attribution"),
		metrics:   deps.Metrics,
	}
}

// Listeners exposes the registry used for deliveries.
func (r *Reconciler) Listeners() *Registry {
	return r.listeners
}

// Reconcile computes the data for rawURL without delivering it.
func (r *Reconciler) Reconcile(ctx context.Context, rawURL string) domain.LinkEvent {
	evt := domain.NewLinkEvent(rawURL)

	local := r.extractor.Extract(rawURL)
	if local == nil {
		return evt
	}

	if r.resolver != nil && r.baseURL != "" && links.MatchesBase(rawURL, r.baseURL) {
		if remote := r.resolver.Resolve(ctx, rawURL); remote != nil {
			evt.Data = remote
			evt.Source = domain.SourceRemote
			return evt
		}
	}

	evt.Data = local
	evt.Source = domain.SourceLocal
	return evt
}

// HandleURL reconciles rawURL and delivers the result to every deep link
// listener exactly once. The delivered event is returned.
func (r *Reconciler) HandleURL(ctx context.Context, rawURL string) domain.LinkEvent {
	evt := r.Reconcile(ctx, rawURL)
	r.metrics.Record(metrics.OpDeepLink, map[string]string{metrics.LabelOutcome: string(evt.Source)})
	r.logger.Debug("delivering deep link",
		logger.Field{Key: "event_id", Value: evt.ID.String()},
		logger.Field{Key: "url", Value: rawURL},
		logger.Field{Key: "source", Value: string(evt.Source)},
	)
	r.listeners.DispatchDeepLink(ctx, evt.URL, evt.Data)
	return evt
}

// DeliverDeferred normalizes an install report and delivers it to every
// deferred listener exactly once. A non-nil reportErr delivers nil.
func (r *Reconciler) DeliverDeferred(ctx context.Context, report *domain.InstallReport, reportErr error) *domain.LinkData {
	var data *domain.LinkData
	if reportErr != nil {
		r.logger.Warn("install report failed, delivering organic result", logger.Field{Key: "error", Value: reportErr})
	} else {
		data = NormalizeDeferred(report)
	}
	r.listeners.DispatchDeferred(ctx, data)
	return data
}
