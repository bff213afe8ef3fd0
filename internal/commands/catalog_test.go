package commands

import (
	"context"
	"testing"

	"github.com/linkforty/go-linkforty/pkg/domain"
	"github.com/linkforty/go-linkforty/pkg/events"
	"github.com/linkforty/go-linkforty/pkg/install"
)

func TestCatalogCommands(t *testing.T) {
	ctx := context.Background()
	eventStub := &stubEvents{}
	installStub := &stubInstaller{}

	cat, err := NewCatalog(Dependencies{Events: eventStub, Installer: installStub})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	var evt domain.LinkEvent
	if err := cat.HandleURL.Execute(ctx, HandleURL{URL: " https://go.test/abc ", Result: &evt}); err != nil {
		t.Fatalf("handle url: %v", err)
	}
	if len(eventStub.requests) != 1 || eventStub.requests[0].URL != " https://go.test/abc " {
		t.Fatalf("unexpected enqueue calls %+v", eventStub.requests)
	}
	if evt.URL != " https://go.test/abc " {
		t.Fatalf("expected result to be filled, got %+v", evt)
	}
	if err := cat.HandleURL.Execute(ctx, HandleURL{URL: "  "}); err == nil {
		t.Fatalf("expected error for blank url")
	}

	var res install.LaunchResult
	if err := cat.ReportInstall.Execute(ctx, ReportInstall{Force: true, Result: &res}); err != nil {
		t.Fatalf("report install: %v", err)
	}
	if !installStub.forced || !res.Reported {
		t.Fatalf("expected forced launch, got %+v", res)
	}

	if err := cat.ClearData.Execute(ctx, ClearData{}); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if installStub.cleared != 1 {
		t.Fatalf("expected clear call")
	}
}

func TestNewCatalogRequiresServices(t *testing.T) {
	if _, err := NewCatalog(Dependencies{Installer: &stubInstaller{}}); err == nil {
		t.Fatalf("expected error without events service")
	}
	if _, err := NewCatalog(Dependencies{Events: &stubEvents{}}); err == nil {
		t.Fatalf("expected error without install service")
	}
}

type stubEvents struct {
	requests []events.IntakeRequest
}

func (s *stubEvents) Enqueue(ctx context.Context, req events.IntakeRequest) (domain.LinkEvent, error) {
	s.requests = append(s.requests, req)
	return domain.NewLinkEvent(req.URL), nil
}

type stubInstaller struct {
	forced  bool
	cleared int
}

func (s *stubInstaller) Launch(ctx context.Context, d install.DeferredDeliverer, force bool) (install.LaunchResult, error) {
	s.forced = force
	return install.LaunchResult{Reported: true}, nil
}

func (s *stubInstaller) Clear(ctx context.Context) error {
	s.cleared++
	return nil
}
