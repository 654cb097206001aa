package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/lysyi3m/drama-comb/app/drama"
)

// Extraction is the outcome of running the selector, extractor and assembler
// chain over one page.
type Extraction struct {
	Records    []drama.Record
	Strategy   Strategy
	Candidates int
	Discarded  map[DiscardReason]int
}

// Extract parses html and assembles records from it. Zero records is a
// valid result; only a document that cannot be built is an error.
func Extract(html []byte, p Profile) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	candidates, strategy := SelectCandidates(doc, p)

	fields := make([]RawFields, 0, candidates.Length())
	candidates.Each(func(_ int, s *goquery.Selection) {
		fields = append(fields, ExtractFields(s, p, strategy))
	})

	records, discarded := AssembleAll(fields, p)

	return &Extraction{
		Records:    records,
		Strategy:   strategy,
		Candidates: len(fields),
		Discarded:  discarded,
	}, nil
}

// Pipeline fetches the listing page named by the active profile and turns it
// into records.
type Pipeline struct {
	fetcher  Fetcher
	profiles *ProfileStore
	enricher *Enricher
}

func NewPipeline(fetcher Fetcher, profiles *ProfileStore, enricher *Enricher) *Pipeline {
	return &Pipeline{
		fetcher:  fetcher,
		profiles: profiles,
		enricher: enricher,
	}
}

func (p *Pipeline) Run(ctx context.Context) ([]drama.Record, error) {
	profile := p.profiles.Get()

	start := time.Now()
	html, err := p.fetcher.Fetch(ctx, profile.TargetURL)
	if err != nil {
		slog.Warn("Listing fetch failed", "url", profile.TargetURL, "duration", time.Since(start), "error", err)
		return nil, err
	}
	slog.Debug("Listing fetched", "url", profile.TargetURL, "bytes", len(html), "duration", time.Since(start))

	ex, err := Extract(html, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", profile.TargetURL, err)
	}

	discarded := 0
	for _, n := range ex.Discarded {
		discarded += n
	}
	slog.Info("Listing extracted",
		"url", profile.TargetURL,
		"strategy", ex.Strategy,
		"candidates", ex.Candidates,
		"discarded", discarded,
		"records", len(ex.Records))

	if p.enricher == nil || len(ex.Records) == 0 {
		return ex.Records, nil
	}

	return p.enricher.Enrich(ctx, ex.Records, profile.Defaults.Summary), nil
}
