package commands

import (
	command "github.com/goliatone/go-command"
	internalcommands "github.com/linkforty/go-linkforty/internal/commands"
	"github.com/linkforty/go-linkforty/pkg/attribution"
	"github.com/linkforty/go-linkforty/pkg/events"
	"github.com/linkforty/go-linkforty/pkg/install"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
)

// Re-export request types so consumers need not import internal packages.
type (
	HandleURL     = internalcommands.HandleURL
	ReportInstall = internalcommands.ReportInstall
	ClearData     = internalcommands.ClearData
)

// Registry exposes go-command compatible handlers backed by the module services.
type Registry struct {
	Catalog       *internalcommands.Catalog
	HandleURL     command.Commander[HandleURL]
	ReportInstall command.Commander[ReportInstall]
	ClearData     command.Commander[ClearData]
}

// Dependencies mirror the internal command dependencies but keep them public.
type Dependencies struct {
	Events     *events.Service
	Installer  *install.Reporter
	Reconciler *attribution.Reconciler
	Logger     logger.Logger
}

// New builds the registry using the provided dependencies.
func New(deps Dependencies) (*Registry, error) {
	internalDeps := internalcommands.Dependencies{Logger: deps.Logger}
	if deps.Events != nil {
		internalDeps.Events = deps.Events
	}
	if deps.Installer != nil {
		internalDeps.Installer = deps.Installer
	}
	if deps.Reconciler != nil {
		internalDeps.Deferred = deps.Reconciler
	}
	catalog, err := internalcommands.NewCatalog(internalDeps)
	if err != nil {
		return nil, err
	}
	return &Registry{
		Catalog:       catalog,
		HandleURL:     catalog.HandleURL,
		ReportInstall: catalog.ReportInstall,
		ClearData:     catalog.ClearData,
	}, nil
}

// Commanders returns every handler so callers can register them with go-command registries.
func (r *Registry) Commanders() []any {
	if r == nil {
		return nil
	}
	return []any{
		r.HandleURL,
		r.ReportInstall,
		r.ClearData,
	}
}
