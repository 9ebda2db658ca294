// Package api exposes the portfolio over JSON: public read routes under
// /api, account routes under /api/auth and the editing surface under
// /api/admin.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"folio/analytics"
	"folio/cache"
	"folio/common"
	"folio/models"
	"folio/render"
	"folio/service"
)

const sessionName = "folio_session"

type Services struct {
	Auth         *service.AuthService
	Blog         *service.BlogService
	Projects     *service.ProjectService
	Experience   *service.ExperienceService
	Education    *service.EducationService
	Testimonials *service.TestimonialService
	Tags         *service.TaxonomyService[models.Tag, *models.Tag]
	Categories   *service.TaxonomyService[models.Category, *models.Category]
	Frameworks   *service.TaxonomyService[models.Framework, *models.Framework]
	Languages    *service.TaxonomyService[models.ProgrammingLanguage, *models.ProgrammingLanguage]
	About        []AboutSection
	Translations *service.TranslationService
	Uploads      *service.UploadService
}

// Module holds everything the HTTP layer needs. Views, Renderer and Cache
// are optional.
type Module struct {
	Services
	Views     *analytics.ViewTracker
	Renderer  *render.Renderer
	Cache     cache.Cache
	CacheTTL  time.Duration
	Sessions  sessions.Store
	AuthRate  float64
	AuthBurst int
	Log       *slog.Logger
}

func NewModule(s Services, log *slog.Logger) *Module {
	if log == nil {
		log = common.DiscardLogger()
	}
	return &Module{
		Services:  s,
		CacheTTL:  5 * time.Minute,
		AuthRate:  1,
		AuthBurst: 5,
		Log:       log.With("module", "api"),
	}
}

func (m *Module) RegisterRoutes(router *gin.Engine) {
	router.NoRoute(common.NotFoundHandler)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, common.Success(gin.H{"status": "ok"}, ""))
	})

	root := router.Group("/api")
	if m.Sessions != nil {
		root.Use(sessions.Sessions(sessionName, m.Sessions))
	}

	m.authRoutes(root.Group("/auth"))

	public := root.Group("")
	public.Use(Language)
	m.publicRoutes(public)

	admin := root.Group("/admin")
	admin.Use(RequireAuth(m.Auth), RequireEditor)
	if m.Cache != nil {
		admin.Use(cache.Invalidate(m.Cache, m.Log))
	}
	m.adminRoutes(admin)
}

// cached wraps list endpoints with the response cache when one is configured.
func (m *Module) cached() gin.HandlerFunc {
	if m.Cache == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return cache.Middleware(m.Cache, m.CacheTTL, languageKey, m.Log)
}
