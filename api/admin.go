package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"folio/common"
	"folio/models"
	"folio/repository"
)

func (m *Module) adminRoutes(g *gin.RouterGroup) {
	blog := g.Group("/blog")
	blog.GET("/search", m.searchPosts)
	blog.PATCH("/:id/featured", toggle(m.Blog.ToggleFeatured))
	blog.PATCH("/:id/published", toggle(m.Blog.TogglePublished))
	crudOf[models.BlogPost](m.Blog, m.Blog.Create, m.Blog.Update).register(blog)

	projects := g.Group("/projects")
	projects.GET("/search", m.searchProjects)
	projects.PATCH("/:id/featured", toggle(m.Projects.ToggleFeatured))
	projects.PATCH("/:id/published", toggle(m.Projects.TogglePublished))
	crudOf[models.Project](m.Projects, m.Projects.Create, m.Projects.Update).register(projects)

	experience := g.Group("/experience")
	experience.GET("/search", m.searchExperience)
	crudOf[models.Experience](m.Experience, m.Experience.Create, m.Experience.Update).register(experience)

	education := g.Group("/education")
	education.GET("/search", m.searchEducation)
	crudOf[models.Education](m.Education, m.Education.Create, m.Education.Update).register(education)

	testimonials := g.Group("/testimonials")
	testimonials.GET("/search", m.searchTestimonials)
	testimonials.PATCH("/:id/featured", toggle(m.Testimonials.ToggleFeatured))
	crudOf[models.Testimonial](m.Testimonials, m.Testimonials.Create, m.Testimonials.Update).register(testimonials)

	adminTerms[models.Tag](g.Group("/tags"), m.Tags)
	adminTerms[models.Category](g.Group("/categories"), m.Categories)
	adminTerms[models.Framework](g.Group("/frameworks"), m.Frameworks)
	adminTerms[models.ProgrammingLanguage](g.Group("/programming-languages"), m.Languages)

	for _, s := range m.About {
		s.admin(g.Group("/about/" + s.Name))
	}

	m.translationRoutes(g.Group("/translations"))

	uploads := g.Group("/uploads")
	uploads.POST("", m.upload)
	uploads.GET("", m.listUploads)
	uploads.GET("/:id", get(m.Uploads.Get))
	uploads.DELETE("/:id", remove(m.Uploads.Delete))

	if m.Views != nil {
		g.GET("/analytics/daily", m.visitsByDay)
		g.GET("/analytics/top", m.topContent)
	}
}

func (m *Module) searchPosts(c *gin.Context) {
	page, err := m.Blog.Search(c.Request.Context(), repository.BlogPostFilter{
		Query:      c.Query("q"),
		UserID:     c.Query("userId"),
		Category:   c.Query("category"),
		Tag:        c.Query("tag"),
		Visible:    boolQuery(c, "visible"),
		Published:  boolQuery(c, "published"),
		Featured:   boolQuery(c, "featured"),
		Pagination: pagination(c),
	})
	common.Respond(c, http.StatusOK, page, err)
}

func (m *Module) searchProjects(c *gin.Context) {
	page, err := m.Projects.Search(c.Request.Context(), repository.ProjectFilter{
		Query:      c.Query("q"),
		UserID:     c.Query("userId"),
		Status:     c.Query("status"),
		Tag:        c.Query("tag"),
		Framework:  c.Query("framework"),
		Language:   c.Query("language"),
		Visible:    boolQuery(c, "visible"),
		Published:  boolQuery(c, "published"),
		Featured:   boolQuery(c, "featured"),
		Pagination: pagination(c),
	})
	common.Respond(c, http.StatusOK, page, err)
}

func resumeFilter(c *gin.Context) repository.ResumeFilter {
	return repository.ResumeFilter{
		Query:      c.Query("q"),
		UserID:     c.Query("userId"),
		Current:    boolQuery(c, "current"),
		Visible:    boolQuery(c, "visible"),
		Pagination: pagination(c),
	}
}

func (m *Module) searchExperience(c *gin.Context) {
	page, err := m.Experience.Search(c.Request.Context(), resumeFilter(c))
	common.Respond(c, http.StatusOK, page, err)
}

func (m *Module) searchEducation(c *gin.Context) {
	page, err := m.Education.Search(c.Request.Context(), resumeFilter(c))
	common.Respond(c, http.StatusOK, page, err)
}

func (m *Module) searchTestimonials(c *gin.Context) {
	minRating, _ := strconv.Atoi(c.Query("minRating"))
	page, err := m.Testimonials.Search(c.Request.Context(), repository.TestimonialFilter{
		Query:      c.Query("q"),
		UserID:     c.Query("userId"),
		MinRating:  minRating,
		Featured:   boolQuery(c, "featured"),
		Visible:    boolQuery(c, "visible"),
		Pagination: pagination(c),
	})
	common.Respond(c, http.StatusOK, page, err)
}

func (m *Module) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, m.Uploads.MaxBytes()+1<<20)

	header, err := c.FormFile("file")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		common.Respond(c, 0, nil, common.Validation("File is too large", "file"))
		return
	}
	if err != nil {
		common.Respond(c, 0, nil, common.Validation("A file is required", "file"))
		return
	}
	f, err := header.Open()
	if err != nil {
		common.Respond(c, 0, nil, m.internal(c, "open upload", err))
		return
	}
	defer f.Close()

	up, err := m.Uploads.Upload(c.Request.Context(), currentUserID(c), header.Filename, f)
	common.RespondMessage(c, http.StatusCreated, up, "Uploaded", err)
}

func (m *Module) listUploads(c *gin.Context) {
	page, err := m.Uploads.List(c.Request.Context(), c.Query("userId"), pagination(c))
	common.Respond(c, http.StatusOK, page, err)
}

// analyticsType reads ?type=; an empty value covers every content type.
func analyticsType(c *gin.Context) (models.ContentType, bool) {
	raw := c.Query("type")
	if raw == "" {
		return "", true
	}
	return models.ParseContentType(raw)
}

func (m *Module) visitsByDay(c *gin.Context) {
	ct, ok := analyticsType(c)
	if !ok {
		common.Respond(c, 0, nil, common.Validation("Unknown content type", "type"))
		return
	}
	days, err := m.Views.VisitsByDay(c.Request.Context(), ct, intQuery(c, "days", 30))
	common.Respond(c, http.StatusOK, days, m.internal(c, "visits by day", err))
}

func (m *Module) topContent(c *gin.Context) {
	ct, ok := analyticsType(c)
	if !ok {
		common.Respond(c, 0, nil, common.Validation("Unknown content type", "type"))
		return
	}
	top, err := m.Views.TopContent(c.Request.Context(), ct, intQuery(c, "days", 30), intQuery(c, "limit", 10))
	common.Respond(c, http.StatusOK, top, m.internal(c, "top content", err))
}

func (m *Module) internal(c *gin.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	m.Log.ErrorContext(c.Request.Context(), op+" failed", "error", err)
	return common.Internal(err)
}
