package drama

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

var schemeRE = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*:`)

// AbsoluteURL joins link to base unless it already carries a scheme.
// Protocol-relative links take the base's scheme. A separating slash is
// inserted only when link does not start with one.
func AbsoluteURL(base, link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	if schemeRE.MatchString(link) {
		return link
	}
	if strings.HasPrefix(link, "//") {
		return baseScheme(base) + ":" + link
	}
	base = strings.TrimRight(base, "/")
	if strings.HasPrefix(link, "/") {
		return base + link
	}
	return base + "/" + link
}

// IsWebURL reports whether link is an absolute http or https URL with a host.
func IsWebURL(link string) bool {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func baseScheme(base string) string {
	if u, err := url.Parse(strings.TrimSpace(base)); err == nil && u.Scheme != "" {
		return strings.ToLower(u.Scheme)
	}
	return "https"
}

// AbsoluteImageURL is AbsoluteURL with protocol-relative URLs completed to https.
func AbsoluteImageURL(base, src string) string {
	src = strings.TrimSpace(src)
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	return AbsoluteURL(base, src)
}

// Fold returns the Unicode case-folded form of s for case-insensitive matching.
// A Caser is stateful, so each call gets its own.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}

// CharLen counts characters, not bytes.
func CharLen(s string) int {
	return utf8.RuneCountInString(s)
}

// CleanText trims s and collapses inner runs of whitespace.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
