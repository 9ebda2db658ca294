package service

import (
	"context"

	"folio/common"
	"folio/models"
	"folio/repository"
)

type TermInput struct {
	Name         *string `json:"name"`
	Slug         *string `json:"slug"`
	Description  *string `json:"description"`
	Color        *string `json:"color"`
	Icon         *string `json:"icon"`
	WebsiteURL   *string `json:"websiteUrl"`
	Visible      *bool   `json:"visible"`
	DisplayOrder *int    `json:"displayOrder"`
}

func (in *TermInput) apply(item any, t *models.Term) changes {
	ch := changes{}
	ch.str("name", &t.Name, in.Name)
	ch.str("slug", &t.Slug, in.Slug)
	ch.str("description", &t.Description, in.Description)
	ch.str("color", &t.Color, in.Color)
	ch.str("icon", &t.Icon, in.Icon)
	ch.flag("visible", &t.Visible, in.Visible)
	ch.num("display_order", &t.DisplayOrder, in.DisplayOrder)
	if fw, ok := item.(*models.Framework); ok {
		ch.str("website_url", &fw.WebsiteURL, in.WebsiteURL)
	}
	return ch
}

// termModel is satisfied by pointers to the taxonomy models.
type termModel[T any] interface {
	*T
	GetTerm() *models.Term
}

// TaxonomyService manages one kind of taxonomy term.
type TaxonomyService[T any, PT termModel[T]] struct {
	crud[T]
	terms *repository.TermRepository[T]
}

func NewTaxonomyService[T any, PT termModel[T]](b Base, terms *repository.TermRepository[T], noun string) *TaxonomyService[T, PT] {
	return &TaxonomyService[T, PT]{crud: newCrud[T](b, terms, noun), terms: terms}
}

func (s *TaxonomyService[T, PT]) GetBySlug(ctx context.Context, slug string) (*T, error) {
	item, err := s.terms.FindBySlug(ctx, slug)
	return s.found(ctx, "get by slug", item, err)
}

// GetVisibleBySlug hides terms an editor has switched off.
func (s *TaxonomyService[T, PT]) GetVisibleBySlug(ctx context.Context, slug string) (*T, error) {
	item, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !PT(item).GetTerm().Visible {
		return nil, s.notFound(s.noun)
	}
	return item, nil
}

func (s *TaxonomyService[T, PT]) Create(ctx context.Context, userID string, in TermInput) (*T, error) {
	item := new(T)
	term := PT(item).GetTerm()
	term.UserID = userID
	term.Visible = true
	in.apply(item, term)
	if term.Slug == "" {
		term.Slug = common.Slugify(term.Name)
	}
	if err := s.checkSlug(ctx, term.Slug, ""); err != nil {
		return nil, err
	}
	return s.create(ctx, item, func(t *T) string { return PT(t).GetTerm().ID }, nil)
}

func (s *TaxonomyService[T, PT]) Update(ctx context.Context, id string, in TermInput) (*T, error) {
	return s.update(ctx, id, func(cur *T) (changes, error) {
		term := PT(cur).GetTerm()
		ch := in.apply(cur, term)
		if in.Slug != nil && term.Slug == "" {
			term.Slug = common.Slugify(term.Name)
			ch["slug"] = term.Slug
		}
		if _, ok := ch["slug"]; ok {
			if err := s.checkSlug(ctx, term.Slug, id); err != nil {
				return nil, err
			}
		}
		return ch, nil
	}, nil)
}

func (s *TaxonomyService[T, PT]) checkSlug(ctx context.Context, slug, excludeID string) error {
	if slug == "" {
		return nil
	}
	taken, err := s.terms.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return s.fail(ctx, "check slug", err)
	}
	if taken {
		return common.Conflict("Slug already in use")
	}
	return nil
}

func (s *TaxonomyService[T, PT]) Search(ctx context.Context, query string, visible *bool, p repository.Pagination) (*repository.Page[T], error) {
	page, err := s.terms.Search(ctx, query, visible, p)
	if err != nil {
		return nil, s.fail(ctx, "search", err)
	}
	return page, nil
}
