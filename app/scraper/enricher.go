package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/go-shiori/go-readability"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/lysyi3m/drama-comb/app/drama"
)

const maxSummaryChars = 300

// Enricher fills placeholder summaries from each record's own detail page.
type Enricher struct {
	fetcher     Fetcher
	limit       int
	concurrency int
	limiter     *rate.Limiter
}

func NewEnricher(fetcher Fetcher, limit, concurrency int, rps float64) *Enricher {
	if concurrency < 1 {
		concurrency = 1
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Enricher{
		fetcher:     fetcher,
		limit:       limit,
		concurrency: concurrency,
		limiter:     limiter,
	}
}

// Enrich returns a copy of records where up to limit placeholder summaries
// were replaced. Per-record failures are logged and leave that record as is.
func (e *Enricher) Enrich(ctx context.Context, records []drama.Record, placeholder string) []drama.Record {
	out := make([]drama.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}

	var targets []int
	for i, r := range out {
		if len(targets) >= e.limit {
			break
		}
		if r.HasPlaceholderSummary(placeholder) {
			targets = append(targets, i)
		}
	}
	if len(targets) == 0 {
		return out
	}

	var g errgroup.Group
	g.SetLimit(e.concurrency)

	// Each goroutine writes only its own index.
	for _, i := range targets {
		g.Go(func() error {
			summary, err := e.summarize(ctx, out[i].URL)
			if err != nil {
				slog.Debug("Summary enrichment failed", "url", out[i].URL, "error", err)
				return nil
			}
			out[i].Summary = summary
			return nil
		})
	}
	_ = g.Wait()

	slog.Debug("Summary enrichment finished", "attempted", len(targets))
	return out
}

func (e *Enricher) summarize(ctx context.Context, pageURL string) (string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", err
	}

	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid record URL: %w", err)
	}

	html, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}

	article, err := readability.FromReader(bytes.NewReader(html), u)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	summary := drama.CleanText(article.Excerpt)
	if summary == "" {
		summary = drama.CleanText(article.TextContent)
	}
	if summary == "" {
		return "", fmt.Errorf("no content extracted from %s", pageURL)
	}

	return truncateChars(summary, maxSummaryChars), nil
}

func truncateChars(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
