package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/drama-comb/app/drama"
	"github.com/lysyi3m/drama-comb/app/feed"
	"github.com/lysyi3m/drama-comb/app/refresh"
	"github.com/lysyi3m/drama-comb/app/scraper"
)

const blockedMessage = "Source blocked the request (edge protection, e.g. Cloudflare)"

var endpoints = map[string]string{
	"status":      "/api/status",
	"dramas":      "/api/dramas",
	"search":      "/api/search?q=<term>",
	"clear_cache": "/api/clear-cache",
	"feed":        "/feed.xml",
	"health":      "/health",
}

// NewHandler serves the given channel metadata. The channel link always
// follows the base URL of the profile active at request time.
func NewHandler(coordinator CoordinatorInterface, profiles ProfileSourceInterface, channel feed.Channel) *Handler {
	return &Handler{
		coordinator: coordinator,
		generator:   feed.NewGenerator(),
		profiles:    profiles,
		channel:     channel,
		now:         time.Now,
	}
}

func (h *Handler) GetStatus(c *gin.Context) {
	status := h.coordinator.Status()

	c.JSON(http.StatusOK, gin.H{
		"status":       "online",
		"message":      "Drama scraper API is running",
		"cache_status": status.State,
		"last_update":  formatTime(status.FetchedAt),
		"total_items":  status.Records,
		"endpoints":    endpoints,
	})
}

func (h *Handler) GetDramas(c *gin.Context) {
	result, err := h.coordinator.GetRecords(c.Request.Context())
	if err != nil {
		slog.Error("Failed to get dramas", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": failureMessage(err),
		})
		return
	}

	switch result.Source {
	case refresh.SourceCache:
		c.JSON(http.StatusOK, gin.H{
			"status":    "success",
			"source":    "cache",
			"cached_at": formatTime(result.FetchedAt),
			"total":     len(result.Records),
			"data":      result.Records,
		})
	case refresh.SourceStaleFallback:
		response := gin.H{
			"status":  "warning",
			"message": staleMessage(result.Err),
			"source":  "old_cache",
			"data":    result.Records,
		}
		if result.Err != nil {
			response["error_detail"] = result.Err.Error()
		}
		c.JSON(http.StatusOK, response)
	default:
		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"source": "live_scraping",
			"total":  len(result.Records),
			"data":   result.Records,
		})
	}
}

func (h *Handler) SearchDramas(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Query parameter 'q' is required",
		})
		return
	}

	result, err := h.coordinator.Ensure(c.Request.Context())
	if err != nil {
		slog.Error("Failed to load dramas for search", "query", query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": failureMessage(err),
		})
		return
	}

	matches := drama.Search(result.Records, query)

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"query":       query,
		"total_found": len(matches),
		"data":        matches,
	})
}

func (h *Handler) ClearCache(c *gin.Context) {
	h.coordinator.Clear()
	c.JSON(http.StatusOK, gin.H{"message": "Cache cleared successfully"})
}

func (h *Handler) GetFeed(c *gin.Context) {
	result, err := h.coordinator.GetRecords(c.Request.Context())
	if err != nil {
		slog.Error("Failed to get dramas for feed", "error", err)
		c.String(http.StatusServiceUnavailable, failureMessage(err))
		return
	}

	rss, err := h.generator.Run(h.currentChannel(), result.Records, result.FetchedAt)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(result.Records)))
	c.Header("X-Feed-Source", string(result.Source))
	if !result.FetchedAt.IsZero() {
		c.Header("X-Last-Updated", result.FetchedAt.In(time.Local).Format(time.RFC3339))
	}

	c.String(http.StatusOK, rss)
}

func (h *Handler) currentChannel() feed.Channel {
	channel := h.channel
	channel.Link = h.profiles.Get().BaseURL
	return channel
}

func (h *Handler) GetHealth(c *gin.Context) {
	status := h.coordinator.Status()
	now := h.now()

	health := map[string]interface{}{
		"timestamp":         now.In(time.Local).Format(time.RFC3339),
		"version":           h.channel.Version,
		"cache_records":     status.Records,
		"cache_age_seconds": nil,
	}
	if !status.FetchedAt.IsZero() {
		health["cache_age_seconds"] = int(now.Sub(status.FetchedAt).Seconds())
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) Index(c *gin.Context) {
	status := h.coordinator.Status()

	page := indexPage{
		Version:   h.channel.Version,
		Source:    h.currentChannel().Link,
		State:     string(status.State),
		Records:   status.Records,
		TTL:       h.coordinator.TTL().String(),
		Endpoints: endpoints,
	}
	if !status.FetchedAt.IsZero() {
		page.LastUpdate = status.FetchedAt.In(time.Local).Format(time.RFC1123)
	}

	var buf strings.Builder
	if err := indexTemplate.Execute(&buf, page); err != nil {
		slog.Error("Status page render error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(buf.String()))
}

// formatTime returns nil for an unset time so it serializes as null.
func formatTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.In(time.Local).Format(time.RFC3339)
}

func failureMessage(err error) string {
	if scraper.IsBlocked(err) {
		return blockedMessage
	}
	return fmt.Sprintf("Failed to fetch data: %v", err)
}

func staleMessage(err error) string {
	if scraper.IsBlocked(err) {
		return blockedMessage + "; serving previously cached data"
	}
	return "Failed to refresh data; serving previously cached data"
}
