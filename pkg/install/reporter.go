// Package install reports fresh installs to the attribution server and keeps
// the outcome in the local key/value store.
package install

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/linkforty/go-linkforty/pkg/attribution"
	"github.com/linkforty/go-linkforty/pkg/domain"
	"github.com/linkforty/go-linkforty/pkg/fingerprint"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
	"github.com/linkforty/go-linkforty/pkg/interfaces/metrics"
	"github.com/linkforty/go-linkforty/pkg/interfaces/store"
	"github.com/linkforty/go-linkforty/pkg/transport"
)

// Storage keys owned by the reporter.
const (
	KeyInstallID   = "linkforty_install_id"
	KeyInstallData = "linkforty_install_data"
	KeyFirstLaunch = "linkforty_first_launch"
)

// Endpoint receives install reports.
const Endpoint = "/api/sdk/v1/install"

const defaultWindowHours = 168

var (
	ErrMissingRequest = errors.New("install: request function is required")
	ErrMissingStore   = errors.New("install: store is required")
	ErrReportFailed   = errors.New("install: report failed")
)

// Dependencies wires the reporter.
type Dependencies struct {
	Request                transport.RequestFunc
	Fingerprint            fingerprint.Provider
	Store                  store.KV
	AttributionWindowHours int
	Logger                 logger.Logger
	Metrics                metrics.Collector
}

// Reporter sends the install report and persists its outcome.
type Reporter struct {
	request     transport.RequestFunc
	fingerprint fingerprint.Provider
	store       store.KV
	windowHours int
	logger      logger.Logger
	metrics     metrics.Collector
}

// New validates dependencies and returns a Reporter.
func New(deps Dependencies) (*Reporter, error) {
	if deps.Request == nil {
		return nil, ErrMissingRequest
	}
	if deps.Store == nil {
		return nil, ErrMissingStore
	}
	if deps.Fingerprint == nil {
		deps.Fingerprint = &fingerprint.Nop{}
	}
	if deps.Metrics == nil {
		deps.Metrics = &metrics.Nop{}
	}
	if deps.AttributionWindowHours <= 0 {
		deps.AttributionWindowHours = defaultWindowHours
	}
	return &Reporter{
		request:     deps.Request,
		fingerprint: deps.Fingerprint,
		store:       deps.Store,
		windowHours: deps.AttributionWindowHours,
		logger:      logger.Component(deps.Logger, "install"),
		metrics:     deps.Metrics,
	}, nil
}

// Report collects a fingerprint, posts it and stores the install ID and the
// normalized deferred link data. Every failure wraps ErrReportFailed.
func (r *Reporter) Report(ctx context.Context) (*domain.InstallReport, error) {
	report, err := r.report(ctx)
	if err != nil {
		r.record("failed")
		r.logger.Warn("install report failed", logger.Field{Key: "error", Value: err})
		return nil, err
	}

	outcome := "organic"
	if report.Attributed {
		outcome = "attributed"
	}
	r.record(outcome)
	r.logger.Info("install reported",
		logger.Field{Key: "install_id", Value: report.InstallID},
		logger.Field{Key: "attributed", Value: report.Attributed},
		logger.Field{Key: "confidence", Value: report.ConfidenceScore},
		logger.Field{Key: "matched_factors", Value: report.MatchedFactors},
	)
	return report, nil
}

func (r *Reporter) report(ctx context.Context) (*domain.InstallReport, error) {
	fp, err := r.fingerprint.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: collect fingerprint: %v", ErrReportFailed, err)
	}

	body := domain.InstallRequest{FingerprintRecord: fp, AttributionWindowHours: r.windowHours}
	raw, err := transport.Post(ctx, r.request, Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportFailed, err)
	}

	var report *domain.InstallReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrReportFailed, err)
	}
	if report == nil {
		return nil, fmt.Errorf("%w: empty response", ErrReportFailed)
	}

	if err := r.persist(ctx, report); err != nil {
		r.logger.Warn("install result not persisted", logger.Field{Key: "error", Value: err})
	}
	return report, nil
}

func (r *Reporter) persist(ctx context.Context, report *domain.InstallReport) error {
	if report.InstallID != "" {
		if err := r.store.Set(ctx, KeyInstallID, report.InstallID); err != nil {
			return err
		}
	}
	data := attribution.NormalizeDeferred(report)
	if data == nil {
		return r.store.Delete(ctx, KeyInstallData)
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, KeyInstallData, string(payload))
}

// IsFirstLaunch reports whether no launch has been recorded yet.
func (r *Reporter) IsFirstLaunch(ctx context.Context) (bool, error) {
	_, found, err := store.Lookup(ctx, r.store, KeyFirstLaunch)
	if err != nil {
		return false, err
	}
	return !found, nil
}

// MarkLaunched records that the first launch has been handled.
func (r *Reporter) MarkLaunched(ctx context.Context) error {
	return r.store.Set(ctx, KeyFirstLaunch, "false")
}

// InstallID returns the server-issued install identifier, if any.
func (r *Reporter) InstallID(ctx context.Context) (string, bool, error) {
	return store.Lookup(ctx, r.store, KeyInstallID)
}

// InstallData returns the stored deferred link data, or nil for organic and
// unreported installs.
func (r *Reporter) InstallData(ctx context.Context) (*domain.LinkData, error) {
	raw, found, err := store.Lookup(ctx, r.store, KeyInstallData)
	if err != nil || !found {
		return nil, err
	}
	var data domain.LinkData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("install: decode stored data: %w", err)
	}
	return &data, nil
}

// Clear removes every key the reporter owns. The next launch counts as a
// first launch again.
func (r *Reporter) Clear(ctx context.Context) error {
	var errs []error
	for _, key := range []string{KeyInstallID, KeyInstallData, KeyFirstLaunch} {
		if err := r.store.Delete(ctx, key); err != nil && !errors.Is(err, store.ErrNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Reporter) record(outcome string) {
	r.metrics.Record(metrics.OpInstall, map[string]string{metrics.LabelOutcome: outcome})
}
