package repository

import (
	"context"

	"gorm.io/gorm"

	"folio/models"
)

// ResumeFilter searches experience and education entries.
type ResumeFilter struct {
	Query   string
	UserID  string
	Current *bool
	Visible *bool
	Pagination
}

var resumeSort = map[string]string{
	"startDate": "start_date",
	"endDate":   "end_date",
	"createdAt": "created_at",
	"order":     "display_order",
}

type ExperienceRepository struct {
	*Store[models.Experience]
}

func NewExperienceRepository(db *gorm.DB) *ExperienceRepository {
	s := newStore[models.Experience](db, "experiences", resumeSort)
	s.dependents = removeTranslations(&models.ExperienceTranslation{})
	return &ExperienceRepository{Store: s}
}

// FindPublished lists visible entries, most recent first.
func (r *ExperienceRepository) FindPublished(ctx context.Context, userID string) ([]models.Experience, error) {
	var items []models.Experience
	err := r.query(ctx).
		Scopes(r.where(r.col("visible")+" = ?", true), r.owner(userID)).
		Order(r.col("display_order") + " ASC").
		Order(r.col("start_date") + " DESC").
		Find(&items).Error
	return items, err
}

// FindCurrent lists visible positions still held.
func (r *ExperienceRepository) FindCurrent(ctx context.Context) ([]models.Experience, error) {
	return r.find(ctx,
		r.where(r.col("is_current")+" = ?", true),
		r.where(r.col("visible")+" = ?", true),
	)
}

func (r *ExperienceRepository) ToggleVisibility(ctx context.Context, id string) (*models.Experience, error) {
	return r.Toggle(ctx, id, "visible")
}

func (r *ExperienceRepository) Search(ctx context.Context, f ResumeFilter) (*Page[models.Experience], error) {
	return r.Store.Search(ctx, f.Pagination,
		r.textSearch(f.Query, "company", "position", "description", "location"),
		r.owner(f.UserID),
		r.flag("is_current", f.Current),
		r.flag("visible", f.Visible),
	)
}

type EducationRepository struct {
	*Store[models.Education]
}

func NewEducationRepository(db *gorm.DB) *EducationRepository {
	s := newStore[models.Education](db, "educations", resumeSort)
	s.dependents = removeTranslations(&models.EducationTranslation{})
	return &EducationRepository{Store: s}
}

func (r *EducationRepository) FindPublished(ctx context.Context, userID string) ([]models.Education, error) {
	var items []models.Education
	err := r.query(ctx).
		Scopes(r.where(r.col("visible")+" = ?", true), r.owner(userID)).
		Order(r.col("display_order") + " ASC").
		Order(r.col("start_date") + " DESC").
		Find(&items).Error
	return items, err
}

func (r *EducationRepository) ToggleVisibility(ctx context.Context, id string) (*models.Education, error) {
	return r.Toggle(ctx, id, "visible")
}

func (r *EducationRepository) Search(ctx context.Context, f ResumeFilter) (*Page[models.Education], error) {
	return r.Store.Search(ctx, f.Pagination,
		r.textSearch(f.Query, "institution", "degree", "field_of_study", "description"),
		r.owner(f.UserID),
		r.flag("is_current", f.Current),
		r.flag("visible", f.Visible),
	)
}

type TestimonialFilter struct {
	Query     string
	UserID    string
	MinRating int
	Featured  *bool
	Visible   *bool
	Pagination
}

type TestimonialRepository struct {
	*Store[models.Testimonial]
}

func NewTestimonialRepository(db *gorm.DB) *TestimonialRepository {
	s := newStore[models.Testimonial](db, "testimonials", map[string]string{
		"rating":     "rating",
		"authorName": "author_name",
		"createdAt":  "created_at",
		"order":      "display_order",
	})
	s.dependents = removeTranslations(&models.TestimonialTranslation{})
	return &TestimonialRepository{Store: s}
}

func (r *TestimonialRepository) FindPublished(ctx context.Context, userID string) ([]models.Testimonial, error) {
	return r.FindVisibleByOwner(ctx, userID)
}

func (r *TestimonialRepository) FindFeatured(ctx context.Context) ([]models.Testimonial, error) {
	return r.find(ctx,
		r.where(r.col("visible")+" = ?", true),
		r.where(r.col("featured")+" = ?", true),
	)
}

func (r *TestimonialRepository) ToggleVisibility(ctx context.Context, id string) (*models.Testimonial, error) {
	return r.Toggle(ctx, id, "visible")
}

func (r *TestimonialRepository) ToggleFeatured(ctx context.Context, id string) (*models.Testimonial, error) {
	return r.Toggle(ctx, id, "featured")
}

func (r *TestimonialRepository) Search(ctx context.Context, f TestimonialFilter) (*Page[models.Testimonial], error) {
	minRating := func(db *gorm.DB) *gorm.DB {
		if f.MinRating <= 0 {
			return db
		}
		return db.Where(r.col("rating")+" >= ?", f.MinRating)
	}
	return r.Store.Search(ctx, f.Pagination,
		r.textSearch(f.Query, "author_name", "author_company", "content"),
		r.owner(f.UserID),
		r.flag("featured", f.Featured),
		r.flag("visible", f.Visible),
		minRating,
	)
}
