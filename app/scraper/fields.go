package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/lysyi3m/drama-comb/app/drama"
)

// RawFields is what the extractor could find on one candidate, before any
// normalization or defaults. Missing values are empty.
type RawFields struct {
	Title   string
	Link    string
	Episode string
	Image   string
	Genres  []string
	Summary string
}

// fieldRule returns a trimmed value or "" when it does not apply.
type fieldRule func(s *goquery.Selection, p Profile) string

var (
	titleRules = []fieldRule{
		attrRule("title"),
		imageAttrRule("alt"),
		func(s *goquery.Selection, p Profile) string {
			return firstText(s, p.Headings)
		},
		func(s *goquery.Selection, _ Profile) string {
			return drama.CleanText(s.Text())
		},
	}

	linkRules = []fieldRule{
		attrRule("href"),
		func(s *goquery.Selection, _ Profile) string {
			return strings.TrimSpace(s.Find("a[href]").First().AttrOr("href", ""))
		},
	}

	episodeRules = []fieldRule{
		func(s *goquery.Selection, p Profile) string {
			return firstText(s, p.StatusMarkers)
		},
		markerRule,
	}

	imageRules = []fieldRule{
		imageAttrRule("src"),
		imageAttrRule("data-src"),
	}
)

// ExtractFields runs every field's rule chain over one candidate. Genres and
// summary are only looked for on content blocks picked by the primary
// strategy; fallback candidates are bare anchors.
func ExtractFields(s *goquery.Selection, p Profile, strategy Strategy) RawFields {
	f := RawFields{
		Title:   firstMatch(s, p, titleRules),
		Link:    firstMatch(s, p, linkRules),
		Episode: firstMatch(s, p, episodeRules),
		Image:   firstMatch(s, p, imageRules),
	}

	if strategy == StrategyPrimary {
		f.Genres = collectGenres(s, p.Genres)
		f.Summary = firstText(s, p.Summaries)
	}

	return f
}

func firstMatch(s *goquery.Selection, p Profile, rules []fieldRule) string {
	for _, rule := range rules {
		if v := rule(s, p); v != "" {
			return v
		}
	}
	return ""
}

func attrRule(name string) fieldRule {
	return func(s *goquery.Selection, _ Profile) string {
		return strings.TrimSpace(s.AttrOr(name, ""))
	}
}

func imageAttrRule(name string) fieldRule {
	return func(s *goquery.Selection, _ Profile) string {
		return strings.TrimSpace(s.Find("img").First().AttrOr(name, ""))
	}
}

// firstText returns the text of the first descendant matching any selector,
// trying selectors in the order given.
func firstText(s *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if text := drama.CleanText(s.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// markerRule finds the innermost element carrying the episode marker: the
// first, in document order, whose text contains it while none of its child
// elements' text does. Its own text is preferred so "Ep 12 <span>HD</span>"
// yields "Ep 12".
func markerRule(s *goquery.Selection, p Profile) string {
	if p.EpisodeMarker == "" {
		return ""
	}

	var found string
	s.Find("*").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if !strings.Contains(el.Text(), p.EpisodeMarker) {
			return true
		}
		inChild := false
		el.Children().EachWithBreak(func(_ int, child *goquery.Selection) bool {
			inChild = strings.Contains(child.Text(), p.EpisodeMarker)
			return !inChild
		})
		if inChild {
			return true
		}

		found = drama.CleanText(ownText(el))
		if !strings.Contains(found, p.EpisodeMarker) {
			found = drama.CleanText(el.Text())
		}
		return false
	})
	return found
}

// ownText joins the element's direct text nodes, skipping child elements.
func ownText(el *goquery.Selection) string {
	var b strings.Builder
	for _, n := range el.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

func collectGenres(s *goquery.Selection, selectors []string) []string {
	for _, sel := range selectors {
		var genres []string
		seen := make(map[string]struct{})
		s.Find(sel).Each(func(_ int, el *goquery.Selection) {
			g := drama.CleanText(el.Text())
			if g == "" {
				return
			}
			if _, ok := seen[g]; ok {
				return
			}
			seen[g] = struct{}{}
			genres = append(genres, g)
		})
		if len(genres) > 0 {
			return genres
		}
	}
	return nil
}
