package repository

import (
	"context"

	"gorm.io/gorm"

	"folio/models"
)

type ProjectFilter struct {
	Query     string
	UserID    string
	Status    string
	Tag       string
	Framework string
	Language  string
	Visible   *bool
	Published *bool
	Featured  *bool
	Pagination
}

type ProjectRepository struct {
	*Store[models.Project]
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	s := newStore[models.Project](db, "projects", map[string]string{
		"title":     "title",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"startDate": "start_date",
		"order":     "display_order",
	}, "Tags", "Frameworks", "Languages")
	s.dependents = chain(
		removeTranslations(&models.ProjectTranslation{}),
		removeJoins("project_tags", "project_id"),
		removeJoins("project_frameworks", "project_id"),
		removeJoins("project_languages", "project_id"),
	)
	return &ProjectRepository{Store: s}
}

func (r *ProjectRepository) published(userID string) []Scope {
	return []Scope{
		r.where(r.col("visible")+" = ?", true),
		r.where(r.col("published")+" = ?", true),
		r.owner(userID),
	}
}

func (r *ProjectRepository) FindPublished(ctx context.Context, userID string) ([]models.Project, error) {
	return r.find(ctx, r.published(userID)...)
}

func (r *ProjectRepository) FindFeatured(ctx context.Context) ([]models.Project, error) {
	return r.find(ctx, append(r.published(""), r.where(r.col("featured")+" = ?", true))...)
}

func (r *ProjectRepository) FindBySlug(ctx context.Context, slug string) (*models.Project, error) {
	return r.first(ctx, r.where(r.col("slug")+" = ?", slug))
}

func (r *ProjectRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugTaken(ctx, r.db, &models.Project{}, slug, excludeID)
}

func (r *ProjectRepository) ToggleVisibility(ctx context.Context, id string) (*models.Project, error) {
	return r.Toggle(ctx, id, "visible")
}

func (r *ProjectRepository) ToggleFeatured(ctx context.Context, id string) (*models.Project, error) {
	return r.Toggle(ctx, id, "featured")
}

func (r *ProjectRepository) TogglePublished(ctx context.Context, id string) (*models.Project, error) {
	return togglePublished[models.Project](ctx, r.Store, id)
}

func (r *ProjectRepository) owned(id string) *models.Project {
	return &models.Project{Model: models.Model{ID: id}}
}

func (r *ProjectRepository) SetTags(ctx context.Context, id string, ids []string) error {
	return replaceTerms[models.Tag](ctx, r.db, r.owned(id), "Tags", ids)
}

func (r *ProjectRepository) SetFrameworks(ctx context.Context, id string, ids []string) error {
	return replaceTerms[models.Framework](ctx, r.db, r.owned(id), "Frameworks", ids)
}

func (r *ProjectRepository) SetLanguages(ctx context.Context, id string, ids []string) error {
	return replaceTerms[models.ProgrammingLanguage](ctx, r.db, r.owned(id), "Languages", ids)
}

func (r *ProjectRepository) Search(ctx context.Context, f ProjectFilter) (*Page[models.Project], error) {
	return r.Store.Search(ctx, f.Pagination,
		r.textSearch(f.Query, "title", "description", "long_description"),
		r.owner(f.UserID),
		r.equals("status", f.Status),
		r.flag("visible", f.Visible),
		r.flag("published", f.Published),
		r.flag("featured", f.Featured),
		r.related("project_tags", "project_id", "tags", "tag_id", f.Tag),
		r.related("project_frameworks", "project_id", "frameworks", "framework_id", f.Framework),
		r.related("project_languages", "project_id", "programming_languages", "programming_language_id", f.Language),
	)
}
