package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/lysyi3m/drama-comb/app/drama"
)

// Channel describes the feed itself.
type Channel struct {
	Title       string
	Link        string
	Description string
	SelfLink    string
	Version     string
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders records as RSS 2.0. fetchedAt stamps the channel and every item
// since listing entries carry no dates of their own.
func (g *Generator) Run(channel Channel, records []drama.Record, fetchedAt time.Time) (string, error) {
	if channel.Title == "" || channel.Link == "" {
		return "", fmt.Errorf("channel title and link are required")
	}

	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", channel.Title, 4)
	g.writeElement(&buf, "link", channel.Link, 4)
	description := channel.Description
	if description == "" {
		description = fmt.Sprintf("Drama listing scraped from %s", channel.Link)
	}
	g.writeElement(&buf, "description", description, 4)

	if channel.SelfLink != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(channel.SelfLink)))
	}

	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	g.writeElement(&buf, "lastBuildDate", fetchedAt.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Drama-Comb/%s", channel.Version), 4)

	for _, r := range records {
		g.writeItem(&buf, r, fetchedAt)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, r drama.Record, fetchedAt time.Time) {
	buf.WriteString("    <item>\n")

	buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(r.URL)))
	xml.EscapeText(buf, []byte(r.URL))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", r.Title, 6)
	g.writeElement(buf, "link", r.URL, 6)
	g.writeElement(buf, "description", itemDescription(r), 6)
	g.writeElement(buf, "pubDate", fetchedAt.Format(time.RFC1123Z), 6)

	for _, genre := range r.Genres {
		if genre != "" {
			g.writeElement(buf, "category", genre, 6)
		}
	}

	// RSS 2.0 requires url, length and type; the length is unknown without a HEAD request.
	if r.Image != "" {
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"0\" type=\"%s\" />\n",
			html.EscapeString(r.Image),
			html.EscapeString(imageType(r.Image))))
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func itemDescription(r drama.Record) string {
	if r.Episodes == "" {
		return r.Summary
	}
	return fmt.Sprintf("Episodes: %s. %s", r.Episodes, r.Summary)
}

func imageType(src string) string {
	ext := path.Ext(strings.SplitN(src, "?", 2)[0])
	if t := mime.TypeByExtension(strings.ToLower(ext)); strings.HasPrefix(t, "image/") {
		return t
	}
	return "image/jpeg"
}
