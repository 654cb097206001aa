package cfg

import "time"

type Cfg struct {
	// Source configuration
	TargetURL    string
	BaseURL      string
	UserAgent    string
	FetchTimeout time.Duration
	ProfilePath  string
	WatchProfile bool

	// Cache configuration
	CacheTTL     time.Duration
	WarmInterval time.Duration
	WorkerCount  int

	// Summary enrichment
	EnrichSummaries   bool
	EnrichLimit       int
	EnrichConcurrency int
	EnrichRPS         float64

	// Application configuration
	Port      string
	PublicURL string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
