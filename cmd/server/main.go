package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/drama-comb/app/api"
	"github.com/lysyi3m/drama-comb/app/cache"
	"github.com/lysyi3m/drama-comb/app/cfg"
	"github.com/lysyi3m/drama-comb/app/feed"
	"github.com/lysyi3m/drama-comb/app/refresh"
	"github.com/lysyi3m/drama-comb/app/scraper"
	"github.com/lysyi3m/drama-comb/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogging(appCfg.Debug)

	slog.Info("Starting Drama Comb server", "version", appCfg.Version, "target_url", appCfg.TargetURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profiles, err := loadProfiles(ctx, appCfg)
	if err != nil {
		slog.Error("Failed to load extraction profile", "error", err)
		os.Exit(1)
	}

	fetcher := scraper.NewHTTPFetcher(nil, appCfg.UserAgent, appCfg.FetchTimeout)

	var enricher *scraper.Enricher
	if appCfg.EnrichSummaries {
		enricher = scraper.NewEnricher(fetcher, appCfg.EnrichLimit, appCfg.EnrichConcurrency, appCfg.EnrichRPS)
		slog.Info("Summary enrichment enabled", "limit", appCfg.EnrichLimit, "concurrency", appCfg.EnrichConcurrency, "rps", appCfg.EnrichRPS)
	}

	pipeline := scraper.NewPipeline(fetcher, profiles, enricher)
	coordinator := refresh.NewCoordinator(pipeline, cache.NewStore(), appCfg.CacheTTL, nil)

	if appCfg.WarmInterval > 0 {
		scheduler := tasks.NewScheduler(coordinator, appCfg.WarmInterval, appCfg.WorkerCount)
		scheduler.Start()
		defer scheduler.Stop()
	}

	if !appCfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := api.NewHandler(coordinator, profiles, feed.Channel{
		Title:    "Drama Comb",
		SelfLink: selfLink(appCfg),
		Version:  appCfg.Version,
	})

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "cache_ttl", appCfg.CacheTTL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadProfiles builds the extraction profile from config, overlaid with the
// profile file when one is given.
func loadProfiles(ctx context.Context, appCfg *cfg.Cfg) (*scraper.ProfileStore, error) {
	base := scraper.DefaultProfile()
	base.TargetURL = appCfg.TargetURL
	base.BaseURL = appCfg.BaseURL

	if appCfg.ProfilePath == "" {
		if err := base.Validate(); err != nil {
			return nil, err
		}
		return scraper.NewProfileStore(base), nil
	}

	profile, err := scraper.LoadProfile(appCfg.ProfilePath, base)
	if err != nil {
		return nil, err
	}
	slog.Info("Extraction profile loaded", "path", appCfg.ProfilePath, "containers", len(profile.Containers))

	profiles := scraper.NewProfileStore(profile)
	if appCfg.WatchProfile {
		if err := profiles.Watch(ctx, appCfg.ProfilePath, base); err != nil {
			return nil, err
		}
		slog.Info("Watching extraction profile for changes", "path", appCfg.ProfilePath)
	}

	return profiles, nil
}

func selfLink(appCfg *cfg.Cfg) string {
	if appCfg.PublicURL != "" {
		return strings.TrimRight(appCfg.PublicURL, "/") + "/feed.xml"
	}
	return fmt.Sprintf("http://localhost:%s/feed.xml", appCfg.Port)
}
