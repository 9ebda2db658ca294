package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"folio/models"
)

// TermRepository serves one taxonomy table.
type TermRepository[T any] struct {
	*Store[T]
}

var termSort = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
	"order":     "display_order",
}

func tableOf[T any](db *gorm.DB) string {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(new(T)); err != nil {
		panic(fmt.Sprintf("repository: cannot parse model %T: %v", new(T), err))
	}
	return stmt.Schema.Table
}

func newTermRepository[T any](db *gorm.DB, dependents ...func(tx *gorm.DB, id string) error) *TermRepository[T] {
	s := newStore[T](db, tableOf[T](db), termSort)
	if len(dependents) > 0 {
		s.dependents = chain(dependents...)
	}
	return &TermRepository[T]{Store: s}
}

func NewTagRepository(db *gorm.DB) *TermRepository[models.Tag] {
	return newTermRepository[models.Tag](db,
		removeJoins("blog_post_tags", "tag_id"),
		removeJoins("project_tags", "tag_id"),
	)
}

func NewCategoryRepository(db *gorm.DB) *TermRepository[models.Category] {
	return newTermRepository[models.Category](db, func(tx *gorm.DB, id string) error {
		return tx.Model(&models.BlogPost{}).Where("category_id = ?", id).UpdateColumn("category_id", nil).Error
	})
}

func NewFrameworkRepository(db *gorm.DB) *TermRepository[models.Framework] {
	return newTermRepository[models.Framework](db, removeJoins("project_frameworks", "framework_id"))
}

func NewProgrammingLanguageRepository(db *gorm.DB) *TermRepository[models.ProgrammingLanguage] {
	return newTermRepository[models.ProgrammingLanguage](db, removeJoins("project_languages", "programming_language_id"))
}

func (r *TermRepository[T]) FindBySlug(ctx context.Context, slug string) (*T, error) {
	return r.first(ctx, r.where(r.col("slug")+" = ?", slug))
}

func (r *TermRepository[T]) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugTaken(ctx, r.db, new(T), slug, excludeID)
}

func (r *TermRepository[T]) ToggleVisibility(ctx context.Context, id string) (*T, error) {
	return r.Toggle(ctx, id, "visible")
}

func (r *TermRepository[T]) Search(ctx context.Context, query string, visible *bool, p Pagination) (*Page[T], error) {
	return r.Store.Search(ctx, p,
		r.textSearch(query, "name", "description"),
		r.flag("visible", visible),
	)
}
