package tasks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/drama-comb/app/drama"
	"github.com/lysyi3m/drama-comb/app/refresh"
)

type MockRefresher struct {
	calls    atomic.Int32
	failures int32
}

func (m *MockRefresher) Refresh(ctx context.Context) (*refresh.Result, error) {
	n := m.calls.Add(1)
	if n <= m.failures {
		return nil, errors.New("source unavailable")
	}
	return &refresh.Result{
		Records:   []drama.Record{{ID: 1, Title: "Queen of Tears", URL: "https://deeper.id/d/qot"}},
		Source:    refresh.SourceLive,
		FetchedAt: time.Now(),
	}, nil
}

func TestNewTask(t *testing.T) {
	a := NewTask(TaskTypeRefreshCache, TriggerStartup)
	b := NewTask(TaskTypeRefreshCache, TriggerTick)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, a.ID, 36)
	assert.Equal(t, TaskTypeRefreshCache, a.Type)
	assert.Equal(t, DefaultMaxRetries, a.MaxRetries)
	assert.Equal(t, TriggerStartup, a.GetTrigger())
	assert.Equal(t, TriggerTick, b.GetTrigger())
	assert.Zero(t, a.GetDuration())
}

func TestTaskRetryAccounting(t *testing.T) {
	task := NewTask(TaskTypeRefreshCache, TriggerTick)

	for range DefaultMaxRetries {
		require.True(t, task.CanRetry())
		task.IncrementRetryCount()
	}

	assert.False(t, task.CanRetry())
	assert.Equal(t, DefaultMaxRetries, task.GetRetryCount())
	assert.Equal(t, TriggerRetry, task.GetTrigger())
}

func TestRefreshCacheTask_Execute(t *testing.T) {
	refresher := &MockRefresher{failures: 1}
	task := NewRefreshCacheTask(refresher, TriggerStartup)

	err := task.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to refresh cache (startup)")

	assert.NoError(t, task.Execute(context.Background()))
	assert.EqualValues(t, 2, refresher.calls.Load())
}

func TestScheduler_RefreshesOnStartAndTick(t *testing.T) {
	refresher := &MockRefresher{}
	s := NewScheduler(refresher, 30*time.Millisecond, 1)

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return refresher.calls.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestScheduler_RetriesFailedTasks(t *testing.T) {
	refresher := &MockRefresher{failures: 2}
	s := NewScheduler(refresher, time.Hour, 1)
	s.baseRetryDelay = time.Millisecond

	s.Start()
	defer s.Stop()

	// Startup run fails twice, then the second retry succeeds.
	assert.Eventually(t, func() bool {
		return refresher.calls.Load() == 3
	}, 2*time.Second, 5*time.Millisecond)
}

// triggerRecorder fails until failures runs are used up and records the
// trigger each run was started with.
type triggerRecorder struct {
	*RefreshCacheTask
	mu       sync.Mutex
	triggers []Trigger
	failures int
}

func (r *triggerRecorder) Execute(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.triggers = append(r.triggers, r.GetTrigger())
	if len(r.triggers) <= r.failures {
		return errors.New("source unavailable")
	}
	return nil
}

func (r *triggerRecorder) Triggers() []Trigger {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Trigger(nil), r.triggers...)
}

func TestScheduler_RetriesAreMarkedAsRetry(t *testing.T) {
	s := NewScheduler(&MockRefresher{}, time.Hour, 1)
	s.baseRetryDelay = time.Millisecond
	s.Start()
	defer s.Stop()

	task := &triggerRecorder{RefreshCacheTask: NewRefreshCacheTask(&MockRefresher{}, TriggerManual), failures: 2}
	require.NoError(t, s.EnqueueTask(task))

	assert.Eventually(t, func() bool {
		return len(task.Triggers()) == 3
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []Trigger{TriggerManual, TriggerRetry, TriggerRetry}, task.Triggers())
}

func TestScheduler_GivesUpAfterMaxRetries(t *testing.T) {
	refresher := &MockRefresher{failures: 100}
	s := NewScheduler(refresher, time.Hour, 2)
	s.baseRetryDelay = time.Millisecond

	s.Start()

	assert.Eventually(t, func() bool {
		return refresher.calls.Load() == 1+DefaultMaxRetries
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	s.Stop()
	assert.EqualValues(t, 1+DefaultMaxRetries, refresher.calls.Load())
}

func TestScheduler_EnqueueTask(t *testing.T) {
	s := NewScheduler(&MockRefresher{}, time.Hour, 1)

	for range taskQueueSize {
		require.NoError(t, s.EnqueueTask(NewRefreshCacheTask(&MockRefresher{}, TriggerManual)))
	}
	assert.EqualError(t, s.EnqueueTask(NewRefreshCacheTask(&MockRefresher{}, TriggerManual)), "task queue is full")

	s.cancel()
	assert.ErrorIs(t, s.EnqueueTask(NewRefreshCacheTask(&MockRefresher{}, TriggerManual)), context.Canceled)
}

func TestScheduler_RetryDelay(t *testing.T) {
	s := NewScheduler(&MockRefresher{}, time.Hour, 1)

	assert.Equal(t, time.Second, s.retryDelay(1))
	assert.Equal(t, 2*time.Second, s.retryDelay(2))
	assert.Equal(t, 4*time.Second, s.retryDelay(3))
	assert.Equal(t, 30*time.Second, s.retryDelay(10))
	assert.Equal(t, 30*time.Second, s.retryDelay(64))
}
