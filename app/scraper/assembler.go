package scraper

import (
	"github.com/lysyi3m/drama-comb/app/drama"
)

// DiscardReason says why a candidate did not become a record.
type DiscardReason string

const (
	DiscardEmptyTitle    DiscardReason = "empty_title"
	DiscardShortTitle    DiscardReason = "short_title"
	DiscardExcludedTitle DiscardReason = "excluded_title"
	DiscardNoLink        DiscardReason = "no_link"
	DiscardBadLink       DiscardReason = "unsupported_link"
)

// Assemble turns raw fields into a normalized record, or reports why the
// candidate was dropped. The returned record has no ID yet.
func Assemble(f RawFields, p Profile) (drama.Record, DiscardReason, bool) {
	title := drama.CleanText(f.Title)
	switch {
	case title == "":
		return drama.Record{}, DiscardEmptyTitle, false
	case drama.CharLen(title) < p.MinTitleLength:
		return drama.Record{}, DiscardShortTitle, false
	case isExcludedTitle(title, p.ExcludedTitles):
		return drama.Record{}, DiscardExcludedTitle, false
	}

	link := drama.AbsoluteURL(p.BaseURL, f.Link)
	if link == "" {
		return drama.Record{}, DiscardNoLink, false
	}
	if !drama.IsWebURL(link) {
		return drama.Record{}, DiscardBadLink, false
	}

	r := drama.Record{
		Title:    title,
		URL:      link,
		Image:    drama.AbsoluteImageURL(p.BaseURL, f.Image),
		Episodes: f.Episode,
		Genres:   f.Genres,
		Summary:  f.Summary,
	}

	if r.Episodes == "" {
		r.Episodes = p.Defaults.Episode
	}
	if len(r.Genres) == 0 {
		r.Genres = []string{p.Defaults.Genre}
	}
	if r.Summary == "" {
		r.Summary = p.Defaults.Summary
	}

	return r, "", true
}

// AssembleAll assembles every candidate in order and dedupes by URL.
// Discard counts are keyed by reason.
func AssembleAll(fields []RawFields, p Profile) ([]drama.Record, map[DiscardReason]int) {
	records := make([]drama.Record, 0, len(fields))
	discarded := make(map[DiscardReason]int)

	for _, f := range fields {
		r, reason, ok := Assemble(f, p)
		if !ok {
			discarded[reason]++
			continue
		}
		records = append(records, r)
	}

	return drama.Dedupe(records), discarded
}

func isExcludedTitle(title string, excluded []string) bool {
	for _, word := range excluded {
		if word != "" && drama.ContainsFold(title, word) {
			return true
		}
	}
	return false
}
