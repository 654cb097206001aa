// Package drama holds the record model shared by the scraper, the cache and
// the API, together with the normalization rules applied to every record.
package drama

import "time"

const (
	DefaultEpisodeLabel = "Unknown"
	DefaultGenre        = "Drama"
	DefaultSummary      = "No synopsis available."
)

// Record is one extracted listing entry. URL is the identity key; ID is only
// the 1-based position within the extraction run that produced it.
type Record struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Episodes string   `json:"episodes"`
	Genres   []string `json:"genres"`
	Summary  string   `json:"summary"`
	Image    string   `json:"image,omitempty"`
	URL      string   `json:"url"`
}

// Snapshot is a record set paired with the time it was fetched.
type Snapshot struct {
	Records   []Record
	FetchedAt time.Time
}

func (s Snapshot) IsEmpty() bool {
	return len(s.Records) == 0
}

// Age returns how old the snapshot is at now. Zero for an unset snapshot.
func (s Snapshot) Age(now time.Time) time.Duration {
	if s.FetchedAt.IsZero() {
		return 0
	}
	return now.Sub(s.FetchedAt)
}

// HasPlaceholderSummary reports whether the summary was never extracted.
func (r Record) HasPlaceholderSummary(placeholder string) bool {
	return r.Summary == "" || r.Summary == placeholder
}

// Clone returns a copy that shares no slices with r.
func (r Record) Clone() Record {
	c := r
	if r.Genres != nil {
		c.Genres = append([]string(nil), r.Genres...)
	}
	return c
}
