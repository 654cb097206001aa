package scraper

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

var _ Fetcher = (*stubFetcher)(nil)

type stubFetcher struct {
	FetchFn func(ctx context.Context, url string) ([]byte, error)
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f.FetchFn(ctx, url)
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

// firstCandidate selects with the default profile and returns the first match.
func firstCandidate(t *testing.T, html string) (*goquery.Selection, Strategy) {
	t.Helper()
	sel, strategy := SelectCandidates(mustDoc(t, html), DefaultProfile())
	require.Positive(t, sel.Length())
	return sel.First(), strategy
}
