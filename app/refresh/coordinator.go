// Package refresh decides whether a request is served from cache, from a
// live extraction run, or from an expired cache after a failed run.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/lysyi3m/drama-comb/app/cache"
	"github.com/lysyi3m/drama-comb/app/drama"
	"github.com/lysyi3m/drama-comb/app/scraper"
)

// ErrNoDataAvailable is returned when a run fails and nothing was ever cached.
var ErrNoDataAvailable = errors.New("no data available")

type Source string

const (
	SourceCache         Source = "cache"
	SourceLive          Source = "live"
	SourceStaleFallback Source = "stale_fallback"
)

type State string

// An empty state means nothing was ever stored, or the cache was cleared.
// A run that found no records still leaves a timestamp and reads as stale,
// since such a snapshot is never served as fresh.
const (
	StateFresh State = "fresh"
	StateStale State = "stale"
	StateEmpty State = "empty"
)

// Pipeline produces a new record set.
type Pipeline interface {
	Run(ctx context.Context) ([]drama.Record, error)
}

// Result is what a read resolved to. Err is set only for stale fallbacks and
// carries the reason the refresh failed.
type Result struct {
	Records   []drama.Record
	Source    Source
	FetchedAt time.Time
	Err       error
}

type Status struct {
	Records   int
	FetchedAt time.Time
	State     State
}

type Coordinator struct {
	pipeline Pipeline
	store    *cache.Store
	ttl      time.Duration
	now      func() time.Time
	group    singleflight.Group
}

// NewCoordinator builds a coordinator; now defaults to time.Now when nil.
func NewCoordinator(pipeline Pipeline, store *cache.Store, ttl time.Duration, now func() time.Time) *Coordinator {
	if now == nil {
		now = time.Now
	}
	return &Coordinator{
		pipeline: pipeline,
		store:    store,
		ttl:      ttl,
		now:      now,
	}
}

// GetRecords serves a fresh cache as is and otherwise runs the pipeline.
// A failed run falls back to whatever is cached, however old.
func (c *Coordinator) GetRecords(ctx context.Context) (*Result, error) {
	snap := c.store.Read()
	if c.isFresh(snap) {
		slog.Debug("Serving cached records", "records", len(snap.Records), "age", snap.Age(c.now()))
		return &Result{Records: snap.Records, Source: SourceCache, FetchedAt: snap.FetchedAt}, nil
	}

	return c.load(ctx)
}

// Ensure returns the cache regardless of age and runs the pipeline only when
// nothing has been cached yet.
func (c *Coordinator) Ensure(ctx context.Context) (*Result, error) {
	snap := c.store.Read()
	if !snap.IsEmpty() {
		return &Result{Records: snap.Records, Source: SourceCache, FetchedAt: snap.FetchedAt}, nil
	}

	return c.load(ctx)
}

// Refresh runs the pipeline unconditionally. On failure the cache is left
// untouched and the error is returned as is.
func (c *Coordinator) Refresh(ctx context.Context) (*Result, error) {
	snap, err := c.run(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{Records: snap.Records, Source: SourceLive, FetchedAt: snap.FetchedAt}, nil
}

func (c *Coordinator) Clear() {
	c.store.Clear()
	slog.Info("Cache cleared")
}

func (c *Coordinator) Status() Status {
	snap := c.store.Read()

	state := StateStale
	switch {
	case snap.IsEmpty() && snap.FetchedAt.IsZero():
		state = StateEmpty
	case c.isFresh(snap):
		state = StateFresh
	}

	return Status{
		Records:   len(snap.Records),
		FetchedAt: snap.FetchedAt,
		State:     state,
	}
}

func (c *Coordinator) TTL() time.Duration {
	return c.ttl
}

func (c *Coordinator) isFresh(snap drama.Snapshot) bool {
	return !snap.IsEmpty() && snap.Age(c.now()) < c.ttl
}

func (c *Coordinator) load(ctx context.Context) (*Result, error) {
	snap, err := c.run(ctx)
	if err == nil {
		return &Result{Records: snap.Records, Source: SourceLive, FetchedAt: snap.FetchedAt}, nil
	}

	// Re-read: a concurrent run may have filled the cache meanwhile.
	cached := c.store.Read()
	if !cached.IsEmpty() {
		slog.Warn("Refresh failed, serving stale cache",
			"records", len(cached.Records),
			"fetched_at", cached.FetchedAt,
			"error", err)
		return &Result{Records: cached.Records, Source: SourceStaleFallback, FetchedAt: cached.FetchedAt, Err: err}, nil
	}

	if scraper.IsParseError(err) {
		slog.Warn("Listing could not be parsed, serving empty result", "error", err)
		return &Result{Records: []drama.Record{}, Source: SourceLive, FetchedAt: c.now()}, nil
	}

	slog.Error("Refresh failed with empty cache", "error", err)
	return nil, fmt.Errorf("%w: %w", ErrNoDataAvailable, err)
}

// run executes the pipeline once for all concurrent callers and stores the
// result. Callers leaving early do not cancel the shared run.
func (c *Coordinator) run(ctx context.Context) (drama.Snapshot, error) {
	v, err, shared := c.group.Do("refresh", func() (any, error) {
		start := c.now()
		slog.Info("Refreshing records")

		records, err := c.pipeline.Run(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if records == nil {
			records = []drama.Record{}
		}

		fetchedAt := c.now()
		c.store.Write(records, fetchedAt)
		slog.Info("Records refreshed", "records", len(records), "duration", fetchedAt.Sub(start))

		return drama.Snapshot{Records: records, FetchedAt: fetchedAt}, nil
	})
	if err != nil {
		return drama.Snapshot{}, err
	}
	if shared {
		slog.Debug("Joined in-flight refresh")
	}
	return v.(drama.Snapshot), nil
}
