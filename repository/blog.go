package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"folio/models"
)

type BlogPostFilter struct {
	Query     string
	UserID    string
	Category  string
	Tag       string
	Visible   *bool
	Published *bool
	Featured  *bool
	Pagination
}

type BlogPostRepository struct {
	*Store[models.BlogPost]
}

func NewBlogPostRepository(db *gorm.DB) *BlogPostRepository {
	s := newStore[models.BlogPost](db, "blog_posts", map[string]string{
		"title":       "title",
		"createdAt":   "created_at",
		"updatedAt":   "updated_at",
		"publishedAt": "published_at",
		"viewCount":   "view_count",
		"order":       "display_order",
	}, "Tags", "Category")
	s.dependents = chain(
		removeTranslations(&models.BlogPostTranslation{}),
		removeJoins("blog_post_tags", "blog_post_id"),
	)
	return &BlogPostRepository{Store: s}
}

func (r *BlogPostRepository) published(userID string) []Scope {
	return []Scope{
		r.where(r.col("visible")+" = ?", true),
		r.where(r.col("published")+" = ?", true),
		r.owner(userID),
	}
}

// FindPublished lists posts that are both visible and published, newest
// first. An empty userID does not restrict the owner.
func (r *BlogPostRepository) FindPublished(ctx context.Context, userID string) ([]models.BlogPost, error) {
	var posts []models.BlogPost
	err := r.query(ctx).Scopes(r.published(userID)...).
		Order(r.col("published_at") + " DESC").
		Find(&posts).Error
	return posts, err
}

func (r *BlogPostRepository) FindFeatured(ctx context.Context) ([]models.BlogPost, error) {
	scopes := append(r.published(""), r.where(r.col("featured")+" = ?", true))
	return r.find(ctx, scopes...)
}

func (r *BlogPostRepository) FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	return r.first(ctx, r.where(r.col("slug")+" = ?", slug))
}

// SlugExists reports whether another post already uses slug.
func (r *BlogPostRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugTaken(ctx, r.db, &models.BlogPost{}, slug, excludeID)
}

func (r *BlogPostRepository) ToggleVisibility(ctx context.Context, id string) (*models.BlogPost, error) {
	return r.Toggle(ctx, id, "visible")
}

func (r *BlogPostRepository) ToggleFeatured(ctx context.Context, id string) (*models.BlogPost, error) {
	return r.Toggle(ctx, id, "featured")
}

// TogglePublished flips the published flag. The first publication stamps
// published_at; unpublishing keeps it.
func (r *BlogPostRepository) TogglePublished(ctx context.Context, id string) (*models.BlogPost, error) {
	return togglePublished[models.BlogPost](ctx, r.Store, id)
}

// IncrementViewCount bumps the counter without touching updated_at.
func (r *BlogPostRepository) IncrementViewCount(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.BlogPost{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	return res.RowsAffected > 0, res.Error
}

// SetTags replaces the post's tags with tagIDs.
func (r *BlogPostRepository) SetTags(ctx context.Context, id string, tagIDs []string) error {
	return replaceTerms[models.Tag](ctx, r.db, &models.BlogPost{Model: models.Model{ID: id}}, "Tags", tagIDs)
}

func (r *BlogPostRepository) Search(ctx context.Context, f BlogPostFilter) (*Page[models.BlogPost], error) {
	return r.Store.Search(ctx, f.Pagination,
		r.textSearch(f.Query, "title", "excerpt", "content"),
		r.owner(f.UserID),
		r.flag("visible", f.Visible),
		r.flag("published", f.Published),
		r.flag("featured", f.Featured),
		r.related("blog_post_tags", "blog_post_id", "tags", "tag_id", f.Tag),
		r.inCategory(f.Category),
	)
}

func (r *BlogPostRepository) inCategory(slug string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if slug == "" {
			return db
		}
		sub := r.db.Model(&models.Category{}).Select("id").Where("slug = ?", slug)
		return db.Where(r.col("category_id")+" IN (?)", sub)
	}
}

func slugTaken(ctx context.Context, db *gorm.DB, model any, slug, excludeID string) (bool, error) {
	q := db.WithContext(ctx).Model(model).Where("slug = ?", slug)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}

type publishState struct {
	Published   bool
	PublishedAt *time.Time
}

func togglePublished[T any](ctx context.Context, s *Store[T], id string) (*T, error) {
	var found bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row publishState
		err := tx.Model(new(T)).Select("published", "published_at").Where("id = ?", id).Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true

		now := time.Now()
		fields := map[string]any{"published": !row.Published, "updated_at": now}
		if !row.Published && row.PublishedAt == nil {
			fields["published_at"] = now
		}
		return tx.Model(new(T)).Where("id = ?", id).Updates(fields).Error
	})
	if err != nil || !found {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

// replaceTerms swaps the many-to-many association of owner for the terms
// with ids. Unknown ids are ignored.
func replaceTerms[T any](ctx context.Context, db *gorm.DB, owner any, association string, ids []string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(ids) == 0 {
			return tx.Model(owner).Association(association).Clear()
		}
		terms := []T{}
		if err := tx.Where("id IN ?", ids).Find(&terms).Error; err != nil {
			return err
		}
		return tx.Model(owner).Association(association).Replace(terms)
	})
}
