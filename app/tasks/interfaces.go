package tasks

import (
	"context"

	"github.com/lysyi3m/drama-comb/app/refresh"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Example usage:
//
//	scheduler := NewScheduler(coordinator, 5*time.Minute, 1)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewRefreshCacheTask(coordinator, TriggerManual))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// Refresher forces a pipeline run and stores its result.
type Refresher interface {
	Refresh(ctx context.Context) (*refresh.Result, error)
}

var _ Refresher = (*refresh.Coordinator)(nil)
