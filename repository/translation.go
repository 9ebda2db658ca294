package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"folio/models"
)

// ErrUnknownContentType is returned for a content type without translation tables.
var ErrUnknownContentType = errors.New("unknown content type")

// ErrUnsupportedLanguage is returned for language codes outside the supported set.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// TranslationRepository reads and writes the per-language rows of every
// translatable content table.
type TranslationRepository struct {
	db *gorm.DB
}

func NewTranslationRepository(db *gorm.DB) *TranslationRepository {
	return &TranslationRepository{db: db}
}

// Transaction runs fn against a repository bound to one transaction. Nested
// calls on the bound repository become savepoints.
func (r *TranslationRepository) Transaction(ctx context.Context, fn func(tx *TranslationRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&TranslationRepository{db: tx})
	})
}

type contentTables struct {
	parent      any
	translation any
}

func tablesFor(ct models.ContentType) (contentTables, error) {
	switch ct {
	case models.ContentBlogPost:
		return contentTables{&models.BlogPost{}, &models.BlogPostTranslation{}}, nil
	case models.ContentProject:
		return contentTables{&models.Project{}, &models.ProjectTranslation{}}, nil
	case models.ContentExperience:
		return contentTables{&models.Experience{}, &models.ExperienceTranslation{}}, nil
	case models.ContentEducation:
		return contentTables{&models.Education{}, &models.EducationTranslation{}}, nil
	case models.ContentTestimonial:
		return contentTables{&models.Testimonial{}, &models.TestimonialTranslation{}}, nil
	}
	return contentTables{}, fmt.Errorf("%w: %q", ErrUnknownContentType, ct)
}

func checkKey(key models.TranslationKey) error {
	if key.ContentID == "" {
		return errors.New("translation needs a content id")
	}
	if !key.LanguageCode.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, key.LanguageCode)
	}
	return nil
}

func createTranslation[T any](ctx context.Context, db *gorm.DB, key models.TranslationKey, row *T) (*T, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func getTranslation[T any](ctx context.Context, db *gorm.DB, contentID string, lang models.LanguageCode) (*T, error) {
	var row T
	err := db.WithContext(ctx).
		Where("content_id = ? AND language_code = ?", contentID, lang).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func updateTranslation[T any](ctx context.Context, db *gorm.DB, contentID string, lang models.LanguageCode, fields map[string]any) (*T, error) {
	fields["updated_at"] = time.Now()
	res := db.WithContext(ctx).Model(new(T)).
		Where("content_id = ? AND language_code = ?", contentID, lang).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return getTranslation[T](ctx, db, contentID, lang)
}

// resolve composes the parent row with the best available translation:
// the requested language, then the default language when fallback is
// allowed, then the parent untouched. It returns nil only when the parent
// row does not exist.
func resolve[P any, T any](ctx context.Context, db *gorm.DB, contentID string, lang models.LanguageCode, fallback bool, apply func(*T, *P), preloads ...string) (*models.Resolved[P], error) {
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	var parent P
	err := q.Where("id = ?", contentID).Take(&parent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	tr, err := getTranslation[T](ctx, db, contentID, lang)
	if err != nil {
		return nil, err
	}
	if tr != nil {
		apply(tr, &parent)
		return &models.Resolved[P]{Content: parent, Language: lang, IsTranslated: true}, nil
	}

	if fallback && lang != models.DefaultLanguage {
		tr, err = getTranslation[T](ctx, db, contentID, models.DefaultLanguage)
		if err != nil {
			return nil, err
		}
		if tr != nil {
			apply(tr, &parent)
			return &models.Resolved[P]{Content: parent, Language: models.DefaultLanguage, IsFallback: true}, nil
		}
	}

	return &models.Resolved[P]{Content: parent, Language: lang}, nil
}

// Blog posts

func (r *TranslationRepository) CreateBlogPostTranslation(ctx context.Context, t *models.BlogPostTranslation) (*models.BlogPostTranslation, error) {
	return createTranslation(ctx, r.db, t.TranslationKey, t)
}

func (r *TranslationRepository) UpdateBlogPostTranslation(ctx context.Context, contentID string, lang models.LanguageCode, fields map[string]any) (*models.BlogPostTranslation, error) {
	return updateTranslation[models.BlogPostTranslation](ctx, r.db, contentID, lang, fields)
}

func (r *TranslationRepository) GetBlogPostTranslation(ctx context.Context, contentID string, lang models.LanguageCode) (*models.BlogPostTranslation, error) {
	return getTranslation[models.BlogPostTranslation](ctx, r.db, contentID, lang)
}

func (r *TranslationRepository) GetBlogPostWithTranslation(ctx context.Context, contentID string, lang models.LanguageCode, fallback bool) (*models.Resolved[models.BlogPost], error) {
	return resolve(ctx, r.db, contentID, lang, fallback, (*models.BlogPostTranslation).ApplyTo, "Tags", "Category")
}

// Projects

func (r *TranslationRepository) CreateProjectTranslation(ctx context.Context, t *models.ProjectTranslation) (*models.ProjectTranslation, error) {
	return createTranslation(ctx, r.db, t.TranslationKey, t)
}

func (r *TranslationRepository) UpdateProjectTranslation(ctx context.Context, contentID string, lang models.LanguageCode, fields map[string]any) (*models.ProjectTranslation, error) {
	return updateTranslation[models.ProjectTranslation](ctx, r.db, contentID, lang, fields)
}

func (r *TranslationRepository) GetProjectTranslation(ctx context.Context, contentID string, lang models.LanguageCode) (*models.ProjectTranslation, error) {
	return getTranslation[models.ProjectTranslation](ctx, r.db, contentID, lang)
}

func (r *TranslationRepository) GetProjectWithTranslation(ctx context.Context, contentID string, lang models.LanguageCode, fallback bool) (*models.Resolved[models.Project], error) {
	return resolve(ctx, r.db, contentID, lang, fallback, (*models.ProjectTranslation).ApplyTo, "Tags", "Frameworks", "Languages")
}

// Experience

func (r *TranslationRepository) CreateExperienceTranslation(ctx context.Context, t *models.ExperienceTranslation) (*models.ExperienceTranslation, error) {
	return createTranslation(ctx, r.db, t.TranslationKey, t)
}

func (r *TranslationRepository) UpdateExperienceTranslation(ctx context.Context, contentID string, lang models.LanguageCode, fields map[string]any) (*models.ExperienceTranslation, error) {
	return updateTranslation[models.ExperienceTranslation](ctx, r.db, contentID, lang, fields)
}

func (r *TranslationRepository) GetExperienceTranslation(ctx context.Context, contentID string, lang models.LanguageCode) (*models.ExperienceTranslation, error) {
	return getTranslation[models.ExperienceTranslation](ctx, r.db, contentID, lang)
}

func (r *TranslationRepository) GetExperienceWithTranslation(ctx context.Context, contentID string, lang models.LanguageCode, fallback bool) (*models.Resolved[models.Experience], error) {
	return resolve(ctx, r.db, contentID, lang, fallback, (*models.ExperienceTranslation).ApplyTo)
}

// Education

func (r *TranslationRepository) CreateEducationTranslation(ctx context.Context, t *models.EducationTranslation) (*models.EducationTranslation, error) {
	return createTranslation(ctx, r.db, t.TranslationKey, t)
}

func (r *TranslationRepository) UpdateEducationTranslation(ctx context.Context, contentID string, lang models.LanguageCode, fields map[string]any) (*models.EducationTranslation, error) {
	return updateTranslation[models.EducationTranslation](ctx, r.db, contentID, lang, fields)
}

func (r *TranslationRepository) GetEducationTranslation(ctx context.Context, contentID string, lang models.LanguageCode) (*models.EducationTranslation, error) {
	return getTranslation[models.EducationTranslation](ctx, r.db, contentID, lang)
}

func (r *TranslationRepository) GetEducationWithTranslation(ctx context.Context, contentID string, lang models.LanguageCode, fallback bool) (*models.Resolved[models.Education], error) {
	return resolve(ctx, r.db, contentID, lang, fallback, (*models.EducationTranslation).ApplyTo)
}

// Testimonials

func (r *TranslationRepository) CreateTestimonialTranslation(ctx context.Context, t *models.TestimonialTranslation) (*models.TestimonialTranslation, error) {
	return createTranslation(ctx, r.db, t.TranslationKey, t)
}

func (r *TranslationRepository) UpdateTestimonialTranslation(ctx context.Context, contentID string, lang models.LanguageCode, fields map[string]any) (*models.TestimonialTranslation, error) {
	return updateTranslation[models.TestimonialTranslation](ctx, r.db, contentID, lang, fields)
}

func (r *TranslationRepository) GetTestimonialTranslation(ctx context.Context, contentID string, lang models.LanguageCode) (*models.TestimonialTranslation, error) {
	return getTranslation[models.TestimonialTranslation](ctx, r.db, contentID, lang)
}

func (r *TranslationRepository) GetTestimonialWithTranslation(ctx context.Context, contentID string, lang models.LanguageCode, fallback bool) (*models.Resolved[models.Testimonial], error) {
	return resolve(ctx, r.db, contentID, lang, fallback, (*models.TestimonialTranslation).ApplyTo)
}

// ContentExists reports whether the parent row of a translation exists.
func (r *TranslationRepository) ContentExists(ctx context.Context, ct models.ContentType, contentID string) (bool, error) {
	tables, err := tablesFor(ct)
	if err != nil {
		return false, err
	}
	var n int64
	err = r.db.WithContext(ctx).Model(tables.parent).Where("id = ?", contentID).Count(&n).Error
	return n > 0, err
}

type statusRow interface {
	MissingFields() []string
	Updated() time.Time
}

func statusOf[T any, PT interface {
	*T
	statusRow
}](ctx context.Context, db *gorm.DB, contentID string, lang models.LanguageCode) (statusRow, error) {
	row, err := getTranslation[T](ctx, db, contentID, lang)
	if err != nil || row == nil {
		return nil, err
	}
	return PT(row), nil
}

func (r *TranslationRepository) statusRow(ctx context.Context, ct models.ContentType, contentID string, lang models.LanguageCode) (statusRow, error) {
	switch ct {
	case models.ContentBlogPost:
		return statusOf[models.BlogPostTranslation](ctx, r.db, contentID, lang)
	case models.ContentProject:
		return statusOf[models.ProjectTranslation](ctx, r.db, contentID, lang)
	case models.ContentExperience:
		return statusOf[models.ExperienceTranslation](ctx, r.db, contentID, lang)
	case models.ContentEducation:
		return statusOf[models.EducationTranslation](ctx, r.db, contentID, lang)
	case models.ContentTestimonial:
		return statusOf[models.TestimonialTranslation](ctx, r.db, contentID, lang)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownContentType, ct)
}

// GetTranslationStatus reports, for every supported language, whether a
// translation row exists and which required fields it still lacks.
func (r *TranslationRepository) GetTranslationStatus(ctx context.Context, ct models.ContentType, contentID string) ([]models.TranslationStatus, error) {
	required := models.RequiredTranslationFields(ct)
	if required == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContentType, ct)
	}

	statuses := make([]models.TranslationStatus, 0, len(models.SupportedLanguages))
	for _, lang := range models.SupportedLanguages {
		row, err := r.statusRow(ctx, ct, contentID, lang)
		if err != nil {
			return nil, fmt.Errorf("status %s/%s: %w", ct, lang, err)
		}

		st := models.TranslationStatus{Language: lang}
		if row == nil {
			st.MissingFields = append([]string{}, required...)
		} else {
			updated := row.Updated()
			st.IsPublished = true
			st.LastUpdated = &updated
			st.MissingFields = row.MissingFields()
			st.IsComplete = len(st.MissingFields) == 0
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// GetTranslationStats counts content across every translatable table and,
// per language, how much of it has a translation row.
func (r *TranslationRepository) GetTranslationStats(ctx context.Context) (*models.TranslationStats, error) {
	tables := make([]contentTables, 0, len(models.ContentTypes))
	for _, ct := range models.ContentTypes {
		t, err := tablesFor(ct)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	totals := make([]int64, len(tables))
	for i, t := range tables {
		g.Go(func() error {
			return r.db.WithContext(gctx).Model(t.parent).Count(&totals[i]).Error
		})
	}

	translated := make([][]int64, len(models.SupportedLanguages))
	for li, lang := range models.SupportedLanguages {
		translated[li] = make([]int64, len(tables))
		for ti, t := range tables {
			g.Go(func() error {
				return r.db.WithContext(gctx).Model(t.translation).
					Where("language_code = ?", lang).
					Count(&translated[li][ti]).Error
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &models.TranslationStats{}
	for _, n := range totals {
		stats.TotalContent += n
	}
	for li, lang := range models.SupportedLanguages {
		var count int64
		for _, n := range translated[li] {
			count += n
		}
		stats.Languages = append(stats.Languages, models.LanguageStats{
			Language:   lang,
			Name:       lang.NativeName(),
			Translated: count,
			Percentage: percentage(count, stats.TotalContent),
		})
	}
	return stats, nil
}

func percentage(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(part) / float64(total) * 100
	return math.Round(math.Min(p, 100)*100) / 100
}

// DeleteTranslations removes every translation of one content row and
// returns how many rows went away.
func (r *TranslationRepository) DeleteTranslations(ctx context.Context, ct models.ContentType, contentID string) (int64, error) {
	tables, err := tablesFor(ct)
	if err != nil {
		return 0, err
	}
	res := r.db.WithContext(ctx).Where("content_id = ?", contentID).Delete(tables.translation)
	return res.RowsAffected, res.Error
}
