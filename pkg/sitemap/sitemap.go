// Package sitemap renders sitemap.xml and robots.txt for the storefront.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// URL is one <url> entry.
type URL struct {
	Loc        string
	LastMod    time.Time
	ChangeFreq string
	Priority   float64
}

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []xmlEntry `xml:"url"`
}

type xmlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Write encodes urls as a sitemap document.
func Write(w io.Writer, urls []URL) error {
	set := urlSet{Xmlns: xmlns, URLs: make([]xmlEntry, 0, len(urls))}
	for _, u := range urls {
		e := xmlEntry{Loc: u.Loc, ChangeFreq: u.ChangeFreq}
		if !u.LastMod.IsZero() {
			e.LastMod = u.LastMod.UTC().Format("2006-01-02")
		}
		if u.Priority > 0 {
			e.Priority = fmt.Sprintf("%.1f", u.Priority)
		}
		set.URLs = append(set.URLs, e)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("failed to encode sitemap: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Join builds an absolute URL from a base and a path.
func Join(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// WriteRobots writes a robots.txt allowing everything except disallow and
// pointing crawlers at the sitemap.
func WriteRobots(w io.Writer, baseURL string, disallow []string) error {
	var b strings.Builder
	b.WriteString("User-agent: *\nAllow: /\n")
	for _, d := range disallow {
		b.WriteString("Disallow: " + d + "\n")
	}
	b.WriteString("\nSitemap: " + Join(baseURL, "sitemap.xml") + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}
