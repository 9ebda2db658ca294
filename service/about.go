package service

import (
	"context"

	"folio/models"
	"folio/repository"
)

type aboutModel[T any] interface {
	*T
	GetItem() *models.AboutItem
}

// AboutService manages one "about me" section. Writes take the whole item;
// an update replaces every editable column.
type AboutService[T any, PT aboutModel[T]] struct {
	crud[T]
	items *repository.AboutRepository[T]
}

func NewAboutService[T any, PT aboutModel[T]](b Base, items *repository.AboutRepository[T], noun string) *AboutService[T, PT] {
	return &AboutService[T, PT]{crud: newCrud[T](b, items, noun), items: items}
}

func (s *AboutService[T, PT]) ListPublished(ctx context.Context, userID string) ([]T, error) {
	items, err := s.items.FindPublished(ctx, userID)
	return nonNil(items), s.fail(ctx, "list published", err)
}

func (s *AboutService[T, PT]) Create(ctx context.Context, userID string, item T) (*T, error) {
	it := PT(&item).GetItem()
	it.ID = ""
	it.UserID = userID
	trim(&it.Name)
	return s.create(ctx, &item, func(t *T) string { return PT(t).GetItem().ID }, nil)
}

func (s *AboutService[T, PT]) Update(ctx context.Context, id string, item T) (*T, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	it := PT(&item).GetItem()
	it.ID = id
	it.UserID = PT(cur).GetItem().UserID
	trim(&it.Name)
	if err := s.validate.Struct(&item); err != nil {
		return nil, err
	}

	updated, err := s.items.Replace(ctx, id, &item)
	return s.found(ctx, "update", updated, err)
}

func (s *AboutService[T, PT]) Search(ctx context.Context, query string, visible *bool, p repository.Pagination) (*repository.Page[T], error) {
	page, err := s.items.Search(ctx, query, visible, p)
	if err != nil {
		return nil, s.fail(ctx, "search", err)
	}
	return page, nil
}
