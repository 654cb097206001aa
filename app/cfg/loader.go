package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

const (
	minFetchTimeout = 1 * time.Second
	maxFetchTimeout = 30 * time.Second
)

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Source configuration
	TargetURL    string        `long:"target-url" env:"TARGET_URL" default:"https://deeper.id/" description:"Listing page to scrape"`
	BaseURL      string        `long:"base-url" env:"BASE_URL" default:"https://deeper.id" description:"Origin used to absolutize relative links"`
	UserAgent    string        `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36" description:"User agent string for outgoing requests"`
	FetchTimeout time.Duration `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10s" description:"Timeout for a single page fetch"`
	ProfilePath  string        `long:"profile" env:"PROFILE" description:"Optional YAML extraction profile overriding built-in selectors"`
	WatchProfile bool          `long:"watch-profile" env:"WATCH_PROFILE" description:"Reload the extraction profile when the file changes"`

	// Cache configuration
	CacheTTL     time.Duration `long:"cache-ttl" env:"CACHE_TTL" default:"10m" description:"How long a successful extraction is served from cache"`
	WarmInterval time.Duration `long:"warm-interval" env:"WARM_INTERVAL" default:"0s" description:"Background cache refresh interval (0 disables)"`
	WorkerCount  int           `long:"worker-count" env:"WORKER_COUNT" default:"1" description:"Number of background workers for cache warming"`

	// Summary enrichment
	EnrichSummaries   bool    `long:"enrich-summaries" env:"ENRICH_SUMMARIES" description:"Fetch detail pages to fill in missing summaries"`
	EnrichLimit       int     `long:"enrich-limit" env:"ENRICH_LIMIT" default:"10" description:"Maximum detail pages fetched per extraction run"`
	EnrichConcurrency int     `long:"enrich-concurrency" env:"ENRICH_CONCURRENCY" default:"4" description:"Concurrent detail page fetches"`
	EnrichRPS         float64 `long:"enrich-rps" env:"ENRICH_RPS" default:"2" description:"Detail page requests per second"`

	// Application configuration
	Port      string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	PublicURL string `long:"public-url" env:"PUBLIC_URL" description:"Public base URL for the service (e.g., https://dramas.example.com)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Jakarta)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs parses the given command-line arguments merged with environment
// variables. A nil config with a nil error means help was requested.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		TargetURL:         raw.TargetURL,
		BaseURL:           raw.BaseURL,
		UserAgent:         raw.UserAgent,
		FetchTimeout:      clampTimeout(raw.FetchTimeout),
		ProfilePath:       raw.ProfilePath,
		WatchProfile:      raw.WatchProfile,
		CacheTTL:          raw.CacheTTL,
		WarmInterval:      raw.WarmInterval,
		WorkerCount:       max(raw.WorkerCount, 1),
		EnrichSummaries:   raw.EnrichSummaries,
		EnrichLimit:       raw.EnrichLimit,
		EnrichConcurrency: max(raw.EnrichConcurrency, 1),
		EnrichRPS:         raw.EnrichRPS,
		Port:              raw.Port,
		PublicURL:         raw.PublicURL,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("cache TTL must be positive, got %s", cfg.CacheTTL)
	}
	if cfg.WarmInterval < 0 {
		return nil, fmt.Errorf("warm interval must be non-negative, got %s", cfg.WarmInterval)
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func clampTimeout(d time.Duration) time.Duration {
	if d < minFetchTimeout {
		return minFetchTimeout
	}
	if d > maxFetchTimeout {
		return maxFetchTimeout
	}
	return d
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
