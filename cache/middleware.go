package cache

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// ResponsePrefix namespaces cached API responses so writes can drop them
// with Clear.
const ResponsePrefix = "response"

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Middleware serves repeated GET requests for public content from c. The
// key covers the full URL and the negotiated language stored under
// langKey in the gin context.
func Middleware(c Cache, ttl time.Duration, langKey string, log *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodGet || ctx.GetHeader("Authorization") != "" {
			ctx.Next()
			return
		}

		key := Key(ResponsePrefix, ctx.Request.URL.RequestURI(), ctx.GetString(langKey))
		if cached, err := c.Get(ctx.Request.Context(), key); err == nil {
			ctx.Header("X-Cache", "HIT")
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			ctx.Abort()
			return
		}

		ctx.Header("X-Cache", "MISS")
		writer := &responseWriter{ResponseWriter: ctx.Writer, body: bytes.NewBuffer(nil)}
		ctx.Writer = writer

		ctx.Next()

		if writer.Status() == http.StatusOK &&
			strings.HasPrefix(writer.Header().Get("Content-Type"), "application/json") {
			if err := c.Set(ctx.Request.Context(), key, writer.body.Bytes(), ttl); err != nil {
				log.Warn("caching response", "path", ctx.Request.URL.Path, "error", err)
			}
		}
	}
}

// Invalidate drops cached responses after any successful write request.
func Invalidate(c Cache, log *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		switch ctx.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		if ctx.Writer.Status() >= http.StatusBadRequest {
			return
		}
		if err := c.Clear(ctx.Request.Context(), ResponsePrefix+":"); err != nil {
			log.Warn("clearing response cache", "error", err)
		}
	}
}
