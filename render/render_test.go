package render

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/cache"
	"folio/common"
)

func TestHTMLRendersMarkdown(t *testing.T) {
	r := New(nil, 0, common.DiscardLogger())

	html, err := r.HTML("# Title\n\n**bold** and ~~gone~~\n\n| a | b |\n|---|---|\n| 1 | 2 |")
	require.NoError(t, err)

	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.Contains(t, html, "<del>gone</del>")
	assert.Contains(t, html, "<table>")
}

func TestHTMLLinkifiesURLs(t *testing.T) {
	r := New(nil, 0, common.DiscardLogger())

	html, err := r.HTML("see https://example.com")
	require.NoError(t, err)
	assert.Contains(t, html, `href="https://example.com"`)
}

func TestHTMLStripsScripts(t *testing.T) {
	r := New(nil, 0, common.DiscardLogger())

	html, err := r.HTML("hello <script>alert(1)</script><a href=\"javascript:alert(1)\">x</a>")
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "javascript:")
	assert.Contains(t, html, "hello")
}

func TestCachedReusesRenderedHTML(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory(time.Minute)
	r := New(c, time.Minute, common.DiscardLogger())
	updated := time.Now()

	first, err := r.Cached(ctx, "post-1", "en", updated, "*one*")
	require.NoError(t, err)

	// Same version, different source: the cached HTML wins.
	second, err := r.Cached(ctx, "post-1", "en", updated, "*two*")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	third, err := r.Cached(ctx, "post-1", "en", updated.Add(time.Second), "*two*")
	require.NoError(t, err)
	assert.Contains(t, third, "<em>two</em>")
}
