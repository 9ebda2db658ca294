package api

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"folio/auth"
	"folio/common"
	"folio/models"
)

const (
	claimsKey   = "claims"
	languageKey = "language"
	sessionLang = "lang"
)

// TokenVerifier checks an access token and returns its claims, or nil.
type TokenVerifier interface {
	VerifyToken(token string) *auth.Claims
}

// RequireAuth accepts requests carrying a valid bearer access token.
func RequireAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			common.Abort(c, common.ErrUnauthorized)
			return
		}
		claims := v.VerifyToken(strings.TrimSpace(token))
		if claims == nil {
			common.Abort(c, common.ErrInvalidToken)
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireEditor lets admins and editors through. It must run after RequireAuth.
func RequireEditor(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil || !models.Role(claims.Role).CanEdit() {
		common.Abort(c, common.ErrForbidden)
		return
	}
	c.Next()
}

func currentClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func currentUserID(c *gin.Context) string {
	if claims := currentClaims(c); claims != nil {
		return claims.UserID
	}
	return ""
}

var languageMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(models.SupportedLanguages))
	for i, l := range models.SupportedLanguages {
		tags[i] = language.MustParse(string(l))
	}
	return language.NewMatcher(tags)
}()

// matchLanguage picks the supported language closest to an Accept-Language
// header, or the default language.
func matchLanguage(header string) models.LanguageCode {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return models.DefaultLanguage
	}
	_, idx, conf := languageMatcher.Match(tags...)
	if conf == language.No {
		return models.DefaultLanguage
	}
	return models.SupportedLanguages[idx]
}

// Language negotiates the content language: ?lang= first, then the language
// remembered in the session, then Accept-Language. An explicit ?lang= is
// remembered for later requests.
func Language(c *gin.Context) {
	var session sessions.Session
	if _, ok := c.Get(sessions.DefaultKey); ok {
		session = sessions.Default(c)
	}
	lang := models.DefaultLanguage

	if q, ok := models.ParseLanguage(c.Query("lang")); ok {
		lang = q
		if session != nil && session.Get(sessionLang) != string(q) {
			session.Set(sessionLang, string(q))
			_ = session.Save()
		}
	} else if s, ok := sessionLanguage(session); ok {
		lang = s
	} else if header := c.GetHeader("Accept-Language"); header != "" {
		lang = matchLanguage(header)
	}

	c.Set(languageKey, string(lang))
	c.Header("Content-Language", string(lang))
	c.Next()
}

func sessionLanguage(session sessions.Session) (models.LanguageCode, bool) {
	if session == nil {
		return "", false
	}
	s, _ := session.Get(sessionLang).(string)
	return models.ParseLanguage(s)
}

func requestLanguage(c *gin.Context) models.LanguageCode {
	if l, ok := models.ParseLanguage(c.GetString(languageKey)); ok {
		return l
	}
	return models.DefaultLanguage
}

// maxLimiters bounds the per-IP limiter map; it is reset when exceeded.
const maxLimiters = 10000

type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[ip]
	if !ok {
		if len(l.limiters) >= maxLimiters {
			l.limiters = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(l.rate, l.burst)
		l.limiters[ip] = lim
	}
	return lim
}

// RateLimit allows rps requests per second per client IP with the given burst.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	l := &ipLimiter{limiters: make(map[string]*rate.Limiter), rate: rate.Limit(rps), burst: burst}
	return func(c *gin.Context) {
		if !l.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.Response{
				Success: false,
				Error:   "rate_limited",
				Message: "Too many requests, slow down",
			})
			return
		}
		c.Next()
	}
}

// RequestLogger logs one line per request at info, or warn for 5xx.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		log.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"ip", c.ClientIP(),
		)
	}
}
