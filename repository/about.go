package repository

import (
	"context"

	"gorm.io/gorm"
)

// AboutRepository serves one "about me" section table.
type AboutRepository[T any] struct {
	*Store[T]
}

func NewAboutRepository[T any](db *gorm.DB) *AboutRepository[T] {
	return &AboutRepository[T]{Store: newStore[T](db, tableOf[T](db), map[string]string{
		"name":      "name",
		"createdAt": "created_at",
		"order":     "display_order",
	})}
}

func (r *AboutRepository[T]) FindPublished(ctx context.Context, userID string) ([]T, error) {
	return r.FindVisibleByOwner(ctx, userID)
}

func (r *AboutRepository[T]) ToggleVisibility(ctx context.Context, id string) (*T, error) {
	return r.Toggle(ctx, id, "visible")
}

func (r *AboutRepository[T]) Search(ctx context.Context, query string, visible *bool, p Pagination) (*Page[T], error) {
	return r.Store.Search(ctx, p,
		r.textSearch(query, "name", "description"),
		r.flag("visible", visible),
	)
}
