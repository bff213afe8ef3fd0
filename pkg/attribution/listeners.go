package attribution

import (
	"context"
	"sync"

	"github.com/linkforty/go-linkforty/pkg/domain"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
)

// DeepLinkListener receives one call per incoming URL event. data is nil
// when the URL is not a recognised link.
type DeepLinkListener interface {
	OnDeepLink(ctx context.Context, url string, data *domain.LinkData)
}

// DeepLinkFunc adapts a function to DeepLinkListener.
type DeepLinkFunc func(ctx context.Context, url string, data *domain.LinkData)

// OnDeepLink satisfies DeepLinkListener.
func (f DeepLinkFunc) OnDeepLink(ctx context.Context, url string, data *domain.LinkData) {
	if f != nil {
		f(ctx, url, data)
	}
}

// DeferredListener receives the result of first-install attribution. data is
// nil for organic installs and for failed reports.
type DeferredListener interface {
	OnDeferredDeepLink(ctx context.Context, data *domain.LinkData)
}

// DeferredFunc adapts a function to DeferredListener.
type DeferredFunc func(ctx context.Context, data *domain.LinkData)

// OnDeferredDeepLink satisfies DeferredListener.
func (f DeferredFunc) OnDeferredDeepLink(ctx context.Context, data *domain.LinkData) {
	if f != nil {
		f(ctx, data)
	}
}

// CancelFunc removes a registered listener. Calling it more than once is safe.
type CancelFunc func()

type deepLinkEntry struct {
	id       uint64
	listener DeepLinkListener
}

type deferredEntry struct {
	id       uint64
	listener DeferredListener
}

// Registry holds host listeners. Dispatch runs synchronously on the caller's
// goroutine in registration order, and each listener gets its own copy of
// the data.
type Registry struct {
	mu        sync.RWMutex
	nextID    uint64
	deepLinks []deepLinkEntry
	deferred  []deferredEntry
	logger    logger.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(lgr logger.Logger) *Registry {
	return &Registry{logger: logger.Component(lgr, "attribution.listeners")}
}

// OnDeepLink registers l for direct-link deliveries.
func (r *Registry) OnDeepLink(l DeepLinkListener) CancelFunc {
	if l == nil {
		return func() {}
	}
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.deepLinks = append(r.deepLinks, deepLinkEntry{id: id, listener: l})
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, entry := range r.deepLinks {
			if entry.id == id {
				r.deepLinks = append(r.deepLinks[:i:i], r.deepLinks[i+1:]...)
				return
			}
		}
	}
}

// OnDeferredDeepLink registers l for deferred deliveries.
func (r *Registry) OnDeferredDeepLink(l DeferredListener) CancelFunc {
	if l == nil {
		return func() {}
	}
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.deferred = append(r.deferred, deferredEntry{id: id, listener: l})
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, entry := range r.deferred {
			if entry.id == id {
				r.deferred = append(r.deferred[:i:i], r.deferred[i+1:]...)
				return
			}
		}
	}
}

// Len returns the number of registered direct and deferred listeners.
func (r *Registry) Len() (deepLinks, deferred int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.deepLinks), len(r.deferred)
}

// DispatchDeepLink delivers one direct-link event to every listener.
func (r *Registry) DispatchDeepLink(ctx context.Context, url string, data *domain.LinkData) {
	r.mu.RLock()
	targets := append([]deepLinkEntry(nil), r.deepLinks...)
	r.mu.RUnlock()

	for _, entry := range targets {
		r.safely("deeplink", func() {
			entry.listener.OnDeepLink(ctx, url, data.Clone())
		})
	}
}

// DispatchDeferred delivers the deferred result to every listener.
func (r *Registry) DispatchDeferred(ctx context.Context, data *domain.LinkData) {
	r.mu.RLock()
	targets := append([]deferredEntry(nil), r.deferred...)
	r.mu.RUnlock()

	for _, entry := range targets {
		r.safely("deferred", func() {
			entry.listener.OnDeferredDeepLink(ctx, data.Clone())
		})
	}
}

func (r *Registry) safely(kind string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("listener panicked",
				logger.Field{Key: "kind", Value: kind},
				logger.Field{Key: "panic", Value: rec},
			)
		}
	}()
	fn()
}
