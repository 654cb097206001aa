package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/drama-comb/app/drama"
)

var testChannel = Channel{
	Title:    "Drama Comb",
	Link:     "https://deeper.id",
	SelfLink: "http://localhost:8080/feed.xml",
	Version:  "test",
}

func testRecords() []drama.Record {
	return []drama.Record{
		{
			ID:       1,
			Title:    "Queen of Tears",
			Episodes: "Ep 16",
			Genres:   []string{"Romance", "Comedy"},
			Summary:  "A chaebol marriage in crisis & more.",
			Image:    "https://cdn.example/qot.png?w=300",
			URL:      "https://deeper.id/drama/queen-of-tears",
		},
		{
			ID:       2,
			Title:    "Lovely Runner",
			Episodes: drama.DefaultEpisodeLabel,
			Genres:   []string{drama.DefaultGenre},
			Summary:  drama.DefaultSummary,
			URL:      "https://deeper.id/drama/lovely-runner",
		},
	}
}

func TestGenerateRSS(t *testing.T) {
	fetchedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	rss, err := NewGenerator().Run(testChannel, testRecords(), fetchedAt)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(rss, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Error("RSS should contain XML declaration")
	}

	if !strings.Contains(rss, `<atom:link href="http://localhost:8080/feed.xml" rel="self" type="application/rss+xml" />`) {
		t.Error("RSS should contain atom self link")
	}

	if !strings.Contains(rss, "<generator>Drama-Comb/test</generator>") {
		t.Error("RSS should contain generator with version")
	}

	if !strings.Contains(rss, "Drama listing scraped from https://deeper.id") {
		t.Error("RSS should contain default channel description")
	}

	if !strings.Contains(rss, `<enclosure url="https://cdn.example/qot.png?w=300" length="0" type="image/png" />`) {
		t.Error("RSS should contain image enclosure with detected type")
	}

	if !strings.Contains(rss, "crisis &amp; more.") {
		t.Error("RSS should escape item text")
	}
}

func TestGenerateRSS_ParsesWithGofeed(t *testing.T) {
	fetchedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	rss, err := NewGenerator().Run(testChannel, testRecords(), fetchedAt)
	require.NoError(t, err)

	parsed, err := gofeed.NewParser().ParseString(rss)
	require.NoError(t, err)

	assert.Equal(t, "Drama Comb", parsed.Title)
	assert.Equal(t, "https://deeper.id", parsed.Link)
	require.Len(t, parsed.Items, 2)

	first := parsed.Items[0]
	assert.Equal(t, "Queen of Tears", first.Title)
	assert.Equal(t, "https://deeper.id/drama/queen-of-tears", first.Link)
	assert.Equal(t, "https://deeper.id/drama/queen-of-tears", first.GUID)
	assert.Equal(t, []string{"Romance", "Comedy"}, first.Categories)
	assert.Equal(t, "Episodes: Ep 16. A chaebol marriage in crisis & more.", first.Description)
	require.Len(t, first.Enclosures, 1)
	assert.Equal(t, "image/png", first.Enclosures[0].Type)
	require.NotNil(t, first.PublishedParsed)
	assert.True(t, fetchedAt.Equal(*first.PublishedParsed))

	assert.Empty(t, parsed.Items[1].Enclosures)
}

func TestGenerateRSS_EmptyRecords(t *testing.T) {
	rss, err := NewGenerator().Run(testChannel, nil, time.Time{})
	require.NoError(t, err)

	parsed, err := gofeed.NewParser().ParseString(rss)
	require.NoError(t, err)
	assert.Empty(t, parsed.Items)
}

func TestGenerateRSS_RequiresChannel(t *testing.T) {
	_, err := NewGenerator().Run(Channel{Title: "No link"}, nil, time.Now())
	assert.Error(t, err)
}

func TestImageType(t *testing.T) {
	assert.Equal(t, "image/webp", imageType("https://cdn.example/a.WEBP"))
	assert.Equal(t, "image/jpeg", imageType("https://cdn.example/a"))
	assert.Equal(t, "image/jpeg", imageType("https://cdn.example/a.jpg"))
}
