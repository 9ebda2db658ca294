package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	"folio/common"
	"folio/models"
	"folio/repository"
)

// localizedPage is a repository.Page whose items were resolved into the
// request language.
type localizedPage struct {
	Items      []*models.Resolved[any] `json:"items"`
	Total      int64                   `json:"total"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	TotalPages int                     `json:"totalPages"`
}

type postDetail struct {
	*models.Resolved[models.BlogPost]
	ContentHTML string `json:"contentHtml"`
}

func (m *Module) publicRoutes(g *gin.RouterGroup) {
	g.GET("/blog", m.cached(), m.listPosts)
	g.GET("/blog/featured", m.cached(), localized(m, models.ContentBlogPost, m.Blog.ListFeatured, postID))
	g.GET("/blog/:slug", m.showPost)

	g.GET("/projects", m.cached(), m.listProjects)
	g.GET("/projects/featured", m.cached(), localized(m, models.ContentProject, m.Projects.ListFeatured, projectID))
	g.GET("/projects/:slug", m.showProject)

	g.GET("/experience", m.cached(), localized(m, models.ContentExperience, published(m.Experience.ListPublished), experienceID))
	g.GET("/experience/current", m.cached(), localized(m, models.ContentExperience, m.Experience.ListCurrent, experienceID))
	g.GET("/education", m.cached(), localized(m, models.ContentEducation, published(m.Education.ListPublished), educationID))
	g.GET("/testimonials", m.cached(), localized(m, models.ContentTestimonial, published(m.Testimonials.ListPublished), testimonialID))
	g.GET("/testimonials/featured", m.cached(), localized(m, models.ContentTestimonial, m.Testimonials.ListFeatured, testimonialID))

	publicTerms[models.Tag](g.Group("/tags"), m.Tags, m.cached())
	publicTerms[models.Category](g.Group("/categories"), m.Categories, m.cached())
	publicTerms[models.Framework](g.Group("/frameworks"), m.Frameworks, m.cached())
	publicTerms[models.ProgrammingLanguage](g.Group("/programming-languages"), m.Languages, m.cached())

	g.GET("/about", m.aboutSections)
	g.GET("/about/:section", m.cached(), m.aboutSection)

	g.GET("/i18n/languages", m.languages)
}

func postID(p *models.BlogPost) string           { return p.ID }
func projectID(p *models.Project) string         { return p.ID }
func experienceID(e *models.Experience) string   { return e.ID }
func educationID(e *models.Education) string     { return e.ID }
func testimonialID(t *models.Testimonial) string { return t.ID }

// published adapts an owner-scoped list to the site-wide public list.
func published[T any](fn func(ctx context.Context, userID string) ([]T, error)) func(ctx context.Context) ([]T, error) {
	return func(ctx context.Context) ([]T, error) {
		return fn(ctx, "")
	}
}

// resolveAll composes every item with its translation for lang, falling
// back to the default language.
func (m *Module) resolveAll(ctx context.Context, ct models.ContentType, ids []string, lang models.LanguageCode) ([]*models.Resolved[any], error) {
	out := make([]*models.Resolved[any], 0, len(ids))
	for _, id := range ids {
		res, err := m.Translations.Resolve(ctx, ct, id, lang, true)
		if err != nil {
			return nil, err
		}
		if res != nil {
			out = append(out, res)
		}
	}
	return out, nil
}

func localized[T any](m *Module, ct models.ContentType, fn func(ctx context.Context) ([]T, error), id func(*T) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		items, err := fn(ctx)
		if err != nil {
			common.Respond(c, 0, nil, err)
			return
		}
		res, err := m.resolveAll(ctx, ct, ids(items, id), requestLanguage(c))
		common.Respond(c, http.StatusOK, res, err)
	}
}

func localizedPageOf[T any](m *Module, c *gin.Context, ct models.ContentType, page *repository.Page[T], id func(*T) string) (*localizedPage, error) {
	items, err := m.resolveAll(c.Request.Context(), ct, ids(page.Items, id), requestLanguage(c))
	if err != nil {
		return nil, err
	}
	return &localizedPage{Items: items, Total: page.Total, Page: page.Page, Limit: page.Limit, TotalPages: page.TotalPages}, nil
}

func ids[T any](items []T, id func(*T) string) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = id(&items[i])
	}
	return out
}

func (m *Module) listPosts(c *gin.Context) {
	yes := true
	page, err := m.Blog.Search(c.Request.Context(), repository.BlogPostFilter{
		Query:      c.Query("q"),
		Category:   c.Query("category"),
		Tag:        c.Query("tag"),
		Visible:    &yes,
		Published:  &yes,
		Featured:   boolQuery(c, "featured"),
		Pagination: pagination(c),
	})
	if err != nil {
		common.Respond(c, 0, nil, err)
		return
	}
	res, err := localizedPageOf(m, c, models.ContentBlogPost, page, postID)
	common.Respond(c, http.StatusOK, res, err)
}

// showPost serves one published post with its rendered HTML and records the
// view.
func (m *Module) showPost(c *gin.Context) {
	ctx := c.Request.Context()
	post, err := m.Blog.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		common.Respond(c, 0, nil, err)
		return
	}
	if !post.Published || !post.Visible {
		common.Respond(c, 0, nil, common.NotFound("Blog post not found"))
		return
	}

	res, err := m.Translations.ResolveBlogPost(ctx, post.ID, requestLanguage(c), true)
	if err != nil || res == nil {
		common.Respond(c, 0, nil, orNotFound(err, "Blog post not found"))
		return
	}

	detail := postDetail{Resolved: res}
	if m.Renderer != nil {
		content := res.Content.Content
		version := fmt.Sprintf("%s:%016x", post.ID, xxhash.Sum64String(content))
		html, err := m.Renderer.Cached(ctx, version, string(res.Language), post.UpdatedAt, content)
		if err != nil {
			m.Log.WarnContext(ctx, "rendering post", "id", post.ID, "error", err)
		}
		detail.ContentHTML = html
	}

	m.trackView(c, models.ContentBlogPost, post.ID)
	common.Respond(c, http.StatusOK, detail, nil)
}

func (m *Module) listProjects(c *gin.Context) {
	yes := true
	page, err := m.Projects.Search(c.Request.Context(), repository.ProjectFilter{
		Query:      c.Query("q"),
		Status:     c.Query("status"),
		Tag:        c.Query("tag"),
		Framework:  c.Query("framework"),
		Language:   c.Query("language"),
		Visible:    &yes,
		Published:  &yes,
		Featured:   boolQuery(c, "featured"),
		Pagination: pagination(c),
	})
	if err != nil {
		common.Respond(c, 0, nil, err)
		return
	}
	res, err := localizedPageOf(m, c, models.ContentProject, page, projectID)
	common.Respond(c, http.StatusOK, res, err)
}

func (m *Module) showProject(c *gin.Context) {
	ctx := c.Request.Context()
	project, err := m.Projects.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		common.Respond(c, 0, nil, err)
		return
	}
	if !project.Published || !project.Visible {
		common.Respond(c, 0, nil, common.NotFound("Project not found"))
		return
	}
	res, err := m.Translations.Resolve(ctx, models.ContentProject, project.ID, requestLanguage(c), true)
	if err != nil || res == nil {
		common.Respond(c, 0, nil, orNotFound(err, "Project not found"))
		return
	}
	m.trackView(c, models.ContentProject, project.ID)
	common.Respond(c, http.StatusOK, res, nil)
}

// trackView never fails the request; analytics problems are only logged.
func (m *Module) trackView(c *gin.Context, ct models.ContentType, id string) {
	if m.Views == nil {
		return
	}
	if _, err := m.Views.Track(c, ct, id); err != nil {
		m.Log.WarnContext(c.Request.Context(), "tracking view", "type", ct, "id", id, "error", err)
	}
}

func orNotFound(err error, msg string) error {
	if err != nil {
		return err
	}
	return common.NotFound(msg)
}

type languageInfo struct {
	Code       models.LanguageCode `json:"code"`
	NativeName string              `json:"nativeName"`
	IsDefault  bool                `json:"isDefault"`
}

func (m *Module) languages(c *gin.Context) {
	out := make([]languageInfo, len(models.SupportedLanguages))
	for i, l := range models.SupportedLanguages {
		out[i] = languageInfo{Code: l, NativeName: l.NativeName(), IsDefault: l == models.DefaultLanguage}
	}
	common.Respond(c, http.StatusOK, gin.H{"languages": out, "current": requestLanguage(c)}, nil)
}
