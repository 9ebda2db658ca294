package render

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"

	"folio/cache"
)

const cacheNamespace = "render"

// Renderer turns markdown bodies into sanitized HTML. Raw HTML in the
// source is allowed through goldmark and then filtered by bluemonday.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	cache  cache.Cache
	ttl    time.Duration
	log    *slog.Logger
}

// New builds a renderer. c may be nil, in which case nothing is cached.
func New(c cache.Cache, ttl time.Duration, log *slog.Logger) *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Linkify,
			),
			goldmark.WithRendererOptions(
				htmlrenderer.WithUnsafe(),
			),
		),
		policy: bluemonday.UGCPolicy(),
		cache:  c,
		ttl:    ttl,
		log:    log,
	}
}

// HTML renders source without caching.
func (r *Renderer) HTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return r.policy.Sanitize(buf.String()), nil
}

// Cached renders source for one version of one piece of content. The
// version is identified by id, language and the last update time, so an
// edit never serves stale HTML.
func (r *Renderer) Cached(ctx context.Context, id, lang string, updated time.Time, source string) (string, error) {
	if r.cache == nil {
		return r.HTML(source)
	}

	key := cache.Key(cacheNamespace, id, lang, updated.UnixNano())
	if b, err := r.cache.Get(ctx, key); err == nil {
		return string(b), nil
	}

	html, err := r.HTML(source)
	if err != nil {
		return "", err
	}
	if err := r.cache.Set(ctx, key, []byte(html), r.ttl); err != nil {
		r.log.Warn("caching rendered markdown", "id", id, "error", err)
	}
	return html, nil
}
