package service

import (
	"context"
	"errors"

	"folio/common"
	"folio/repository"
)

// store is the part of a repository every content service relies on.
type store[T any] interface {
	FindAll(ctx context.Context) ([]T, error)
	FindVisible(ctx context.Context) ([]T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, item *T) error
	Update(ctx context.Context, id string, fields map[string]any) (*T, error)
	Delete(ctx context.Context, id string) (bool, error)
	UpdateOrder(ctx context.Context, updates []repository.OrderUpdate) error
	ToggleVisibility(ctx context.Context, id string) (*T, error)
}

// crud implements the operations that look the same for every table.
type crud[T any] struct {
	Base
	repo store[T]
	noun string
}

func newCrud[T any](b Base, repo store[T], noun string) crud[T] {
	return crud[T]{Base: b, repo: repo, noun: noun}
}

func (s *crud[T]) List(ctx context.Context) ([]T, error) {
	items, err := s.repo.FindAll(ctx)
	return nonNil(items), s.fail(ctx, "list", err)
}

func (s *crud[T]) ListVisible(ctx context.Context) ([]T, error) {
	items, err := s.repo.FindVisible(ctx)
	return nonNil(items), s.fail(ctx, "list visible", err)
}

func (s *crud[T]) Get(ctx context.Context, id string) (*T, error) {
	item, err := s.repo.FindByID(ctx, id)
	return s.found(ctx, "get", item, err)
}

func (s *crud[T]) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.fail(ctx, "delete", err)
	}
	if !ok {
		return s.notFound(s.noun)
	}
	s.log.InfoContext(ctx, "deleted", "id", id)
	return nil
}

// UpdateOrder applies the whole batch or nothing.
func (s *crud[T]) UpdateOrder(ctx context.Context, updates []repository.OrderUpdate) error {
	if len(updates) == 0 {
		return common.Validation("No order updates given", "items")
	}
	seen := make(map[string]bool, len(updates))
	for _, u := range updates {
		if u.ID == "" {
			return common.Validation("Every item needs an id", "id")
		}
		if seen[u.ID] {
			return common.Validation("Duplicate id "+u.ID, "id")
		}
		seen[u.ID] = true
	}

	err := s.repo.UpdateOrder(ctx, updates)
	if errors.Is(err, common.ErrNotFound) {
		return s.notFound(s.noun)
	}
	return s.fail(ctx, "update order", err)
}

func (s *crud[T]) ToggleVisibility(ctx context.Context, id string) (*T, error) {
	item, err := s.repo.ToggleVisibility(ctx, id)
	return s.found(ctx, "toggle visibility", item, err)
}

// found maps a repository (nil, nil) to a not-found error.
func (s *crud[T]) found(ctx context.Context, op string, item *T, err error) (*T, error) {
	if err != nil {
		return nil, s.fail(ctx, op, err)
	}
	if item == nil {
		return nil, s.notFound(s.noun)
	}
	return item, nil
}

// create validates item and inserts it; after runs once the row exists.
func (s *crud[T]) create(ctx context.Context, item *T, id func(*T) string, after func(id string) error) (*T, error) {
	if err := s.validate.Struct(item); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, s.fail(ctx, "create", err)
	}
	newID := id(item)
	if after != nil {
		if err := after(newID); err != nil {
			return nil, s.fail(ctx, "create", err)
		}
	}
	s.log.InfoContext(ctx, "created", "id", newID)
	return s.Get(ctx, newID)
}

// update loads the row, lets apply merge the input into it, validates the
// result and persists only the changed columns.
func (s *crud[T]) update(ctx context.Context, id string, apply func(cur *T) (changes, error), after func() error) (*T, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fields, err := apply(cur)
	if err != nil {
		return nil, s.fail(ctx, "update", err)
	}
	if err := s.validate.Struct(cur); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, fields)
	if _, err := s.found(ctx, "update", updated, err); err != nil {
		return nil, err
	}
	if after != nil {
		if err := after(); err != nil {
			return nil, s.fail(ctx, "update", err)
		}
		return s.Get(ctx, id)
	}
	return updated, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
