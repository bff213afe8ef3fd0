package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/linkforty/go-linkforty/pkg/attribution"
	"github.com/linkforty/go-linkforty/pkg/commands"
	"github.com/linkforty/go-linkforty/pkg/config"
	"github.com/linkforty/go-linkforty/pkg/domain"
	"github.com/linkforty/go-linkforty/pkg/events"
	"github.com/linkforty/go-linkforty/pkg/fingerprint"
	"github.com/linkforty/go-linkforty/pkg/interfaces/broadcaster"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
	"github.com/linkforty/go-linkforty/pkg/storage"
	"github.com/linkforty/go-linkforty/pkg/transport"
)

type fakeBackend struct {
	mu       sync.Mutex
	resolves []string
	installs int
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if got := r.Header.Get("Authorization"); got != "Bearer lf_test" {
			t.Errorf("unexpected authorization %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/api/sdk/v1/install" && r.Method == http.MethodPost:
			b.installs++
			_, _ = w.Write([]byte(`{"installId":"inst-1","attributed":true,"confidenceScore":0.9,"deepLinkData":{"shortCode":"summer","deepLinkParameters":{"route":"sale"}}}`))
		case strings.HasPrefix(r.URL.Path, "/api/sdk/v1/resolve/promo/abc123"):
			b.resolves = append(b.resolves, r.URL.RequestURI())
			_, _ = w.Write([]byte(`{"shortCode":"abc123","customParameters":{"route":"product","id":"9"}}`))
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	})
}

func newTestModule(t *testing.T, baseURL string, opts ...func(*ModuleOptions)) *Module {
	t.Helper()
	cfg := config.Defaults()
	cfg.BaseURL = baseURL
	cfg.APIKey = "lf_test"
	options := ModuleOptions{
		Config:  cfg,
		Logger:  &logger.Nop{},
		Storage: storage.Providers{KV: storage.NewMemoryStore()},
		Fingerprint: fingerprint.Static{
			Timezone:         "UTC",
			Language:         "en",
			ScreenResolution: "390x844",
			Platform:         "ios",
		},
	}
	for _, opt := range opts {
		opt(&options)
	}
	module, err := NewModule(options)
	if err != nil {
		t.Fatalf("module: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	return module
}

func TestModuleConstruction(t *testing.T) {
	module := newTestModule(t, "https://go.test")
	if module.Resolver() == nil || module.Reconciler() == nil {
		t.Fatalf("expected resolver and reconciler")
	}
	if module.Commands() == nil || module.Events() == nil {
		t.Fatalf("expected commands registry and events service")
	}
	if module.Config().AttributionWindowHours != 168 {
		t.Fatalf("expected defaults to be applied, got %+v", module.Config())
	}
}

func TestNewModuleRequiresBaseURL(t *testing.T) {
	if _, err := NewModule(ModuleOptions{}); err == nil {
		t.Fatalf("expected validation error without base_url")
	}
}

func TestNilModule(t *testing.T) {
	var module *Module
	if _, err := module.HandleURL(context.Background(), "https://go.test/x"); !errors.Is(err, ErrNotInitialised) {
		t.Fatalf("expected ErrNotInitialised, got %v", err)
	}
	if _, err := module.Initialize(context.Background()); !errors.Is(err, ErrNotInitialised) {
		t.Fatalf("expected ErrNotInitialised, got %v", err)
	}
	module.OnDeepLink(nil)()
	if module.Commands() != nil || module.Container() != nil {
		t.Fatalf("nil module accessors must return nil")
	}
}

func TestHandleURLEndToEnd(t *testing.T) {
	backend := &fakeBackend{}
	server := httptest.NewServer(backend.handler(t))
	defer server.Close()

	module := newTestModule(t, server.URL)
	var delivered []*domain.LinkData
	module.OnDeepLink(attribution.DeepLinkFunc(func(ctx context.Context, url string, data *domain.LinkData) {
		delivered = append(delivered, data)
	}))

	evt, err := module.HandleURL(context.Background(), server.URL+"/promo/abc123")
	if err != nil {
		t.Fatalf("handle url: %v", err)
	}
	if evt.Source != domain.SourceRemote {
		t.Fatalf("expected remote source, got %s", evt.Source)
	}
	if len(delivered) != 1 || delivered[0].CustomParameters["route"] != "product" {
		t.Fatalf("unexpected deliveries %+v", delivered)
	}
	if len(backend.resolves) != 1 || !strings.Contains(backend.resolves[0], "fp_sw=390&fp_sh=844") {
		t.Fatalf("unexpected resolve calls %v", backend.resolves)
	}

	evt, err = module.HandleURL(context.Background(), server.URL+"/missing?ref=7")
	if err != nil {
		t.Fatalf("handle url: %v", err)
	}
	if evt.Source != domain.SourceLocal || evt.Data.ShortCode != "missing" || evt.Data.CustomParameters["ref"] != "7" {
		t.Fatalf("expected local fallback, got %+v", evt)
	}
	if len(delivered) != 2 {
		t.Fatalf("expected one delivery per event, got %d", len(delivered))
	}
}

func TestInitializeFirstLaunch(t *testing.T) {
	backend := &fakeBackend{}
	server := httptest.NewServer(backend.handler(t))
	defer server.Close()

	ctx := context.Background()
	module := newTestModule(t, server.URL)
	var deferred []*domain.LinkData
	module.OnDeferredDeepLink(attribution.DeferredFunc(func(ctx context.Context, data *domain.LinkData) {
		deferred = append(deferred, data)
	}))

	res, err := module.Initialize(ctx)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if !res.FirstLaunch || res.Data == nil || res.Data.CustomParameters["route"] != "sale" {
		t.Fatalf("unexpected launch result %+v", res)
	}
	if _, err := module.Initialize(ctx); err != nil {
		t.Fatalf("second initialize: %v", err)
	}
	if backend.installs != 1 || len(deferred) != 1 {
		t.Fatalf("expected single report and delivery, got %d/%d", backend.installs, len(deferred))
	}

	id, err := module.InstallID(ctx)
	if err != nil || id != "inst-1" {
		t.Fatalf("install id = %q, %v", id, err)
	}
	data, err := module.InstallData(ctx)
	if err != nil || data == nil || data.ShortCode != "summer" {
		t.Fatalf("install data = %+v, %v", data, err)
	}

	if err := module.ClearData(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if id, _ := module.InstallID(ctx); id != "" {
		t.Fatalf("expected install id to be cleared, got %q", id)
	}
}

func TestListenAndBroadcast(t *testing.T) {
	var topics []string
	sink := broadcaster.Func(func(ctx context.Context, evt broadcaster.Event) error {
		topics = append(topics, evt.Topic)
		return nil
	})
	module := newTestModule(t, "https://go.test", func(o *ModuleOptions) {
		o.Broadcaster = sink
		o.Request = func(ctx context.Context, path string, opts transport.RequestOptions) (json.RawMessage, error) {
			return nil, errors.New("offline")
		}
	})

	src := events.NewChannelSource("https://go.test/launch", 1)
	if err := src.Push(context.Background(), "https://other.test/x"); err != nil {
		t.Fatalf("push: %v", err)
	}
	src.Close()
	if err := module.Listen(context.Background(), src); err != nil {
		t.Fatalf("listen: %v", err)
	}
	if len(topics) != 2 || topics[0] != broadcaster.TopicDeepLink {
		t.Fatalf("unexpected broadcast topics %v", topics)
	}

	var cmdEvt domain.LinkEvent
	if err := module.Commands().HandleURL.Execute(context.Background(), commands.HandleURL{URL: "https://go.test/cmd", Result: &cmdEvt}); err != nil {
		t.Fatalf("command: %v", err)
	}
	if cmdEvt.Data == nil || cmdEvt.Data.ShortCode != "cmd" {
		t.Fatalf("unexpected command result %+v", cmdEvt)
	}
}
