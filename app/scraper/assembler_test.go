package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/drama-comb/app/drama"
)

func TestAssemble_Discards(t *testing.T) {
	tests := []struct {
		name   string
		fields RawFields
		reason DiscardReason
	}{
		{"empty title", RawFields{Title: "   ", Link: "/d/1"}, DiscardEmptyTitle},
		{"two characters", RawFields{Title: "ab", Link: "/d/1"}, DiscardShortTitle},
		{"two wide characters", RawFields{Title: "한국", Link: "/d/1"}, DiscardShortTitle},
		{"home link", RawFields{Title: "Home", Link: "/"}, DiscardExcludedTitle},
		{"home inside title", RawFields{Title: "Back to HOMEPAGE", Link: "/"}, DiscardExcludedTitle},
		{"no link", RawFields{Title: "Queen of Tears"}, DiscardNoLink},
		{"javascript link", RawFields{Title: "Queen of Tears", Link: "javascript:void(0)"}, DiscardBadLink},
		{"mailto link", RawFields{Title: "Queen of Tears", Link: "mailto:hi@deeper.id"}, DiscardBadLink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, reason, ok := Assemble(tt.fields, DefaultProfile())
			assert.False(t, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestAssemble_NormalizesAndDefaults(t *testing.T) {
	r, _, ok := Assemble(RawFields{
		Title: "Queen of Tears",
		Link:  "drama/queen",
		Image: "//cdn.example/q.jpg",
	}, DefaultProfile())

	require.True(t, ok)
	assert.Equal(t, "https://deeper.id/drama/queen", r.URL)
	assert.Equal(t, "https://cdn.example/q.jpg", r.Image)
	assert.Equal(t, drama.DefaultEpisodeLabel, r.Episodes)
	assert.Equal(t, []string{drama.DefaultGenre}, r.Genres)
	assert.Equal(t, drama.DefaultSummary, r.Summary)
	assert.Zero(t, r.ID)
}

func TestAssemble_KeepsExtractedValues(t *testing.T) {
	r, _, ok := Assemble(RawFields{
		Title:   "Lovely Runner",
		Link:    "https://other.example/lr",
		Episode: "Ep 16",
		Genres:  []string{"Romance", "Fantasy"},
		Summary: "Time travel romance.",
	}, DefaultProfile())

	require.True(t, ok)
	assert.Equal(t, "https://other.example/lr", r.URL)
	assert.Empty(t, r.Image)
	assert.Equal(t, "Ep 16", r.Episodes)
	assert.Equal(t, []string{"Romance", "Fantasy"}, r.Genres)
	assert.Equal(t, "Time travel romance.", r.Summary)
}

func TestAssemble_ProtocolRelativeLink(t *testing.T) {
	r, _, ok := Assemble(RawFields{Title: "Lovely Runner", Link: "//m.deeper.id/d/4"}, DefaultProfile())
	require.True(t, ok)
	assert.Equal(t, "https://m.deeper.id/d/4", r.URL)
}

func TestAssembleAll_CountsUnsupportedLinks(t *testing.T) {
	records, discarded := AssembleAll([]RawFields{
		{Title: "Lovely Runner", Link: "/d/4"},
		{Title: "Trailer", Link: "javascript:void(0)"},
	}, DefaultProfile())

	require.Len(t, records, 1)
	assert.Equal(t, 1, discarded[DiscardBadLink])
}

func TestAssembleAll_DedupesFirstWins(t *testing.T) {
	records, discarded := AssembleAll([]RawFields{
		{Title: "First A", Link: "/u"},
		{Title: "Home", Link: "/"},
		{Title: "Second B", Link: "https://deeper.id/u"},
		{Title: "Third C", Link: "/v"},
	}, DefaultProfile())

	require.Len(t, records, 2)
	assert.Equal(t, "First A", records[0].Title)
	assert.Equal(t, 1, records[0].ID)
	assert.Equal(t, "Third C", records[1].Title)
	assert.Equal(t, 2, records[1].ID)
	assert.Equal(t, 1, discarded[DiscardExcludedTitle])
}

func TestAssemble_CustomProfile(t *testing.T) {
	p := DefaultProfile()
	p.BaseURL = "https://example.org/"
	p.ExcludedTitles = []string{"beranda"}
	p.Defaults.Episode = "N/A"

	_, reason, ok := Assemble(RawFields{Title: "Beranda", Link: "/"}, p)
	assert.False(t, ok)
	assert.Equal(t, DiscardExcludedTitle, reason)

	r, _, ok := Assemble(RawFields{Title: "Home Sweet Home", Link: "/hsh"}, p)
	require.True(t, ok)
	assert.Equal(t, "https://example.org/hsh", r.URL)
	assert.Equal(t, "N/A", r.Episodes)
}
