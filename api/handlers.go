package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"folio/common"
	"folio/repository"
)

func bind[In any](c *gin.Context) (In, bool) {
	var in In
	if err := c.ShouldBindJSON(&in); err != nil {
		common.Respond(c, 0, nil, common.Validation("Invalid request body: "+err.Error()))
		return in, false
	}
	return in, true
}

func list[T any](fn func(ctx context.Context) ([]T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := fn(c.Request.Context())
		common.Respond(c, http.StatusOK, items, err)
	}
}

func get[T any](fn func(ctx context.Context, id string) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := fn(c.Request.Context(), c.Param("id"))
		common.Respond(c, http.StatusOK, item, err)
	}
}

func createHandler[T, In any](fn func(ctx context.Context, userID string, in In) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, ok := bind[In](c)
		if !ok {
			return
		}
		item, err := fn(c.Request.Context(), currentUserID(c), in)
		common.RespondMessage(c, http.StatusCreated, item, "Created", err)
	}
}

func updateHandler[T, In any](fn func(ctx context.Context, id string, in In) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, ok := bind[In](c)
		if !ok {
			return
		}
		item, err := fn(c.Request.Context(), c.Param("id"), in)
		common.RespondMessage(c, http.StatusOK, item, "Updated", err)
	}
}

func remove(fn func(ctx context.Context, id string) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := fn(c.Request.Context(), c.Param("id"))
		common.RespondMessage(c, http.StatusOK, nil, "Deleted", err)
	}
}

func toggle[T any](fn func(ctx context.Context, id string) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := fn(c.Request.Context(), c.Param("id"))
		common.Respond(c, http.StatusOK, item, err)
	}
}

type reorderRequest struct {
	Items []repository.OrderUpdate `json:"items"`
}

func reorder(fn func(ctx context.Context, updates []repository.OrderUpdate) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bind[reorderRequest](c)
		if !ok {
			return
		}
		err := fn(c.Request.Context(), req.Items)
		common.RespondMessage(c, http.StatusOK, nil, "Order updated", err)
	}
}

// crudRoutes are the admin operations every content table supports.
type crudRoutes struct {
	list, get, create, update, remove, visibility, reorder gin.HandlerFunc
}

func (r crudRoutes) register(g *gin.RouterGroup) {
	g.GET("", r.list)
	g.POST("", r.create)
	g.PUT("/reorder", r.reorder)
	g.GET("/:id", r.get)
	g.PUT("/:id", r.update)
	g.DELETE("/:id", r.remove)
	g.PATCH("/:id/visibility", r.visibility)
}

func pagination(c *gin.Context) repository.Pagination {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return repository.Pagination{
		Page:  page,
		Limit: limit,
		Sort:  c.Query("sort"),
		Desc:  strings.EqualFold(c.Query("order"), "desc"),
	}
}

// boolQuery returns nil when the parameter is absent or not a boolean.
func boolQuery(c *gin.Context, name string) *bool {
	v, err := strconv.ParseBool(c.Query(name))
	if err != nil {
		return nil
	}
	return &v
}

func intQuery(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
