package scraper

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/drama-comb/app/drama"
)

const detailPage = `<!DOCTYPE html>
<html><head>
	<title>Queen of Tears</title>
	<meta name="description" content="The queen of department stores and her husband weather a marital crisis.">
</head><body>
	<article>
		<h1>Queen of Tears</h1>
		<p>The queen of department stores and her husband, a supermarket prince from a small village, weather a marital crisis until love miraculously begins to bloom again.</p>
		<p>Starring Kim Soo-hyun and Kim Ji-won, the series follows the couple through three years of marriage, family schemes and an illness that changes everything.</p>
	</article>
</body></html>`

func TestEnricher_FillsPlaceholderSummaries(t *testing.T) {
	var mu sync.Mutex
	var fetched []string
	fetcher := &stubFetcher{FetchFn: func(_ context.Context, url string) ([]byte, error) {
		mu.Lock()
		fetched = append(fetched, url)
		mu.Unlock()
		if url == "https://deeper.id/drama/broken" {
			return nil, errors.New("connection reset")
		}
		return []byte(detailPage), nil
	}}

	records := []drama.Record{
		{ID: 1, Title: "Queen of Tears", URL: "https://deeper.id/drama/qot", Summary: drama.DefaultSummary, Genres: []string{"Drama"}},
		{ID: 2, Title: "Lovely Runner", URL: "https://deeper.id/drama/lr", Summary: "Time travel romance."},
		{ID: 3, Title: "Broken Page", URL: "https://deeper.id/drama/broken", Summary: drama.DefaultSummary},
	}

	got := NewEnricher(fetcher, 10, 2, 0).Enrich(context.Background(), records, drama.DefaultSummary)

	require.Len(t, got, 3)
	assert.Equal(t, "The queen of department stores and her husband weather a marital crisis.", got[0].Summary)
	assert.Equal(t, "Time travel romance.", got[1].Summary)
	assert.Equal(t, drama.DefaultSummary, got[2].Summary)

	assert.ElementsMatch(t, []string{"https://deeper.id/drama/qot", "https://deeper.id/drama/broken"}, fetched)

	// The input slice is never modified.
	assert.Equal(t, drama.DefaultSummary, records[0].Summary)
}

func TestEnricher_RespectsLimit(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	fetcher := &stubFetcher{FetchFn: func(_ context.Context, _ string) ([]byte, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return []byte(detailPage), nil
	}}

	records := make([]drama.Record, 5)
	for i := range records {
		records[i] = drama.Record{ID: i + 1, URL: "https://deeper.id/d/" + string(rune('a'+i)), Summary: drama.DefaultSummary}
	}

	got := NewEnricher(fetcher, 2, 4, 100).Enrich(context.Background(), records, drama.DefaultSummary)

	assert.Equal(t, 2, calls)
	assert.NotEqual(t, drama.DefaultSummary, got[0].Summary)
	assert.NotEqual(t, drama.DefaultSummary, got[1].Summary)
	assert.Equal(t, drama.DefaultSummary, got[2].Summary)
}

func TestTruncateChars(t *testing.T) {
	assert.Equal(t, "abc", truncateChars("abc", 5))
	assert.Equal(t, "한국", truncateChars("한국어", 2))
}
