package install

import (
	"context"

	"github.com/linkforty/go-linkforty/pkg/domain"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
)

// DeferredDeliverer hands the install outcome to deferred listeners.
// attribution.Reconciler implements it.
type DeferredDeliverer interface {
	DeliverDeferred(ctx context.Context, report *domain.InstallReport, reportErr error) *domain.LinkData
}

// LaunchResult describes what Launch did.
type LaunchResult struct {
	FirstLaunch bool             `json:"firstLaunch"`
	Reported    bool             `json:"reported"`
	Data        *domain.LinkData `json:"data"`
}

// Launch reports the install on the first launch and delivers the deferred
// result exactly once. Later launches return the stored data without any
// network call or delivery. force reports even when a launch was recorded.
//
// Only storage failures are returned; a failed report is delivered as nil.
func (r *Reporter) Launch(ctx context.Context, deliverer DeferredDeliverer, force bool) (LaunchResult, error) {
	first, err := r.IsFirstLaunch(ctx)
	if err != nil {
		return LaunchResult{}, err
	}
	if !first && !force {
		data, err := r.InstallData(ctx)
		if err != nil {
			r.logger.Warn("stored install data unreadable", logger.Field{Key: "error", Value: err})
		}
		return LaunchResult{Data: data}, nil
	}

	report, reportErr := r.Report(ctx)
	var data *domain.LinkData
	if deliverer != nil {
		data = deliverer.DeliverDeferred(ctx, report, reportErr)
	}
	result := LaunchResult{FirstLaunch: first, Reported: true, Data: data}
	if err := r.MarkLaunched(ctx); err != nil {
		return result, err
	}
	return result, nil
}
