package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy records which selection tier produced a candidate.
type Strategy string

const (
	StrategyPrimary  Strategy = "primary"
	StrategyFallback Strategy = "fallback"
	StrategyNone     Strategy = "none"
)

// SelectCandidates returns the elements to extract records from, in document
// order. Container matches win outright; only when there are none does the
// anchor-with-image pattern get a turn. An unrecognized page yields nothing.
func SelectCandidates(doc *goquery.Document, p Profile) (*goquery.Selection, Strategy) {
	if primary := doc.Find(strings.Join(p.Containers, ", ")); primary.Length() > 0 {
		return primary, StrategyPrimary
	}

	if fallback := doc.Find(p.FallbackSelector); fallback.Length() > 0 {
		return fallback, StrategyFallback
	}

	return doc.Selection.Slice(0, 0), StrategyNone
}
