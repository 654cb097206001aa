package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type RefreshCacheTask struct {
	Task
	refresher Refresher
}

func NewRefreshCacheTask(refresher Refresher, trigger Trigger) *RefreshCacheTask {
	return &RefreshCacheTask{
		Task:      NewTask(TaskTypeRefreshCache, trigger),
		refresher: refresher,
	}
}

// Execute runs a forced refresh. A failure leaves the cache as it was; the
// scheduler decides whether to retry.
func (t *RefreshCacheTask) Execute(ctx context.Context) error {
	result, err := t.refresher.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh cache (%s): %w", t.Trigger, err)
	}

	slog.Info("Cache warmed",
		"id", t.ID,
		"trigger", t.Trigger,
		"records", len(result.Records),
		"fetched_at", result.FetchedAt,
		"duration", t.GetDuration())

	return nil
}
