package api

import (
	"context"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"folio/common"
	"folio/repository"
	"folio/service"
)

// crudService is what every admin table exposes, whatever its input type.
type crudService[T any] interface {
	List(ctx context.Context) ([]T, error)
	ListVisible(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Delete(ctx context.Context, id string) error
	UpdateOrder(ctx context.Context, updates []repository.OrderUpdate) error
	ToggleVisibility(ctx context.Context, id string) (*T, error)
}

type termService[T any] interface {
	crudService[T]
	GetBySlug(ctx context.Context, slug string) (*T, error)
	GetVisibleBySlug(ctx context.Context, slug string) (*T, error)
	Create(ctx context.Context, userID string, in service.TermInput) (*T, error)
	Update(ctx context.Context, id string, in service.TermInput) (*T, error)
	Search(ctx context.Context, query string, visible *bool, p repository.Pagination) (*repository.Page[T], error)
}

type aboutService[T any] interface {
	crudService[T]
	ListPublished(ctx context.Context, userID string) ([]T, error)
	Create(ctx context.Context, userID string, item T) (*T, error)
	Update(ctx context.Context, id string, item T) (*T, error)
	Search(ctx context.Context, query string, visible *bool, p repository.Pagination) (*repository.Page[T], error)
}

func crudOf[T, In any](s crudService[T], create func(context.Context, string, In) (*T, error), update func(context.Context, string, In) (*T, error)) crudRoutes {
	return crudRoutes{
		list:       list(s.List),
		get:        get(s.Get),
		create:     createHandler(create),
		update:     updateHandler(update),
		remove:     remove(s.Delete),
		visibility: toggle(s.ToggleVisibility),
		reorder:    reorder(s.UpdateOrder),
	}
}

func searchHandler[T any](fn func(ctx context.Context, query string, visible *bool, p repository.Pagination) (*repository.Page[T], error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := fn(c.Request.Context(), c.Query("q"), boolQuery(c, "visible"), pagination(c))
		common.Respond(c, http.StatusOK, page, err)
	}
}

func publicTerms[T any](g *gin.RouterGroup, s termService[T], cached gin.HandlerFunc) {
	g.GET("", cached, list(s.ListVisible))
	g.GET("/:slug", func(c *gin.Context) {
		item, err := s.GetVisibleBySlug(c.Request.Context(), c.Param("slug"))
		common.Respond(c, http.StatusOK, item, err)
	})
}

func adminTerms[T any](g *gin.RouterGroup, s termService[T]) {
	g.GET("/search", searchHandler(s.Search))
	crudOf[T](s, s.Create, s.Update).register(g)
}

// AboutSection is one "about me" list, such as hobbies or books, served
// under /api/about/<name>.
type AboutSection struct {
	Name   string
	public gin.HandlerFunc
	admin  func(g *gin.RouterGroup)
}

func About[T any](name string, s aboutService[T]) AboutSection {
	return AboutSection{
		Name:   name,
		public: list(published(s.ListPublished)),
		admin: func(g *gin.RouterGroup) {
			g.GET("/search", searchHandler(s.Search))
			crudOf[T](s, s.Create, s.Update).register(g)
		},
	}
}

func (m *Module) findSection(name string) (AboutSection, bool) {
	for _, s := range m.About {
		if s.Name == name {
			return s, true
		}
	}
	return AboutSection{}, false
}

func (m *Module) aboutSections(c *gin.Context) {
	names := make([]string, len(m.About))
	for i, s := range m.About {
		names[i] = s.Name
	}
	sort.Strings(names)
	common.Respond(c, http.StatusOK, names, nil)
}

func (m *Module) aboutSection(c *gin.Context) {
	s, ok := m.findSection(c.Param("section"))
	if !ok {
		common.Respond(c, 0, nil, common.NotFound("Unknown about section"))
		return
	}
	s.public(c)
}
