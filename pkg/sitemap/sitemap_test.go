package sitemap

import (
	"bytes"
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, []URL{
		{Loc: "https://dixis.gr/", ChangeFreq: "daily", Priority: 1},
		{Loc: "https://dixis.gr/products/meli?a=1&b=2", LastMod: time.Date(2024, 3, 9, 22, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, out, "<priority>1.0</priority>")
	assert.Contains(t, out, "<lastmod>2024-03-09</lastmod>")
	assert.Contains(t, out, "a=1&amp;b=2")

	var decoded urlSet
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded.URLs, 2)
}

func TestWriteRobots(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRobots(&buf, "https://dixis.gr/", []string{"/admin", "/api"}))

	assert.Equal(t, "User-agent: *\nAllow: /\nDisallow: /admin\nDisallow: /api\n\nSitemap: https://dixis.gr/sitemap.xml\n", buf.String())
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "https://x.gr/a/b", Join("https://x.gr/", "/a/b"))
}
