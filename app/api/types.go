package api

import (
	"context"
	"time"

	"github.com/lysyi3m/drama-comb/app/drama"
	"github.com/lysyi3m/drama-comb/app/feed"
	"github.com/lysyi3m/drama-comb/app/refresh"
	"github.com/lysyi3m/drama-comb/app/scraper"
)

type CoordinatorInterface interface {
	GetRecords(ctx context.Context) (*refresh.Result, error)
	Ensure(ctx context.Context) (*refresh.Result, error)
	Clear()
	Status() refresh.Status
	TTL() time.Duration
}

var _ CoordinatorInterface = (*refresh.Coordinator)(nil)

type GeneratorInterface interface {
	Run(channel feed.Channel, records []drama.Record, fetchedAt time.Time) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

// ProfileSourceInterface yields the active scraping profile. It may change
// while the server runs.
type ProfileSourceInterface interface {
	Get() scraper.Profile
}

var _ ProfileSourceInterface = (*scraper.ProfileStore)(nil)

type Handler struct {
	coordinator CoordinatorInterface
	generator   GeneratorInterface
	profiles    ProfileSourceInterface
	channel     feed.Channel
	now         func() time.Time
}
