package service

import (
	"context"
	"fmt"
	"strings"

	"folio/common"
	"folio/models"
	"folio/repository"
)

// LanguageResult is the outcome of one language in a bulk create.
type LanguageResult struct {
	Language    models.LanguageCode `json:"language"`
	Translation any                 `json:"translation,omitempty"`
	Err         error               `json:"-"`
	Error       string              `json:"error,omitempty"`
}

type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

type TranslationService struct {
	Base
	repo *repository.TranslationRepository
}

func NewTranslationService(b Base, repo *repository.TranslationRepository) *TranslationService {
	return &TranslationService{Base: b, repo: repo}
}

func row[T any](r *T, err error) (any, error) {
	if err != nil || r == nil {
		return nil, err
	}
	return r, nil
}

func createRow(ctx context.Context, repo *repository.TranslationRepository, ct models.ContentType, key models.TranslationKey, in *models.TranslationInput) (any, error) {
	switch ct {
	case models.ContentBlogPost:
		return row[models.BlogPostTranslation](repo.CreateBlogPostTranslation(ctx, in.BlogPost(key)))
	case models.ContentProject:
		return row[models.ProjectTranslation](repo.CreateProjectTranslation(ctx, in.Project(key)))
	case models.ContentExperience:
		return row[models.ExperienceTranslation](repo.CreateExperienceTranslation(ctx, in.Experience(key)))
	case models.ContentEducation:
		return row[models.EducationTranslation](repo.CreateEducationTranslation(ctx, in.Education(key)))
	case models.ContentTestimonial:
		return row[models.TestimonialTranslation](repo.CreateTestimonialTranslation(ctx, in.Testimonial(key)))
	}
	return nil, fmt.Errorf("%w: %q", repository.ErrUnknownContentType, ct)
}

func (s *TranslationService) checkTarget(ctx context.Context, ct models.ContentType, contentID string, lang models.LanguageCode) error {
	if !lang.Valid() {
		return common.Validation(fmt.Sprintf("Unsupported language %q", lang), "language")
	}
	exists, err := s.repo.ContentExists(ctx, ct, contentID)
	if err != nil {
		return err
	}
	if !exists {
		return s.notFound("Content")
	}
	return nil
}

// Create adds the translation of one content row into lang. A second
// translation for the same language is a conflict.
func (s *TranslationService) Create(ctx context.Context, ct models.ContentType, contentID string, lang models.LanguageCode, in *models.TranslationInput) (any, error) {
	if err := s.checkTarget(ctx, ct, contentID, lang); err != nil {
		return nil, s.fail(ctx, "create", err)
	}
	if res := s.ValidateTranslationData(ct, in); !res.IsValid {
		return nil, common.Validation(strings.Join(res.Errors, "; "), "translation")
	}

	key := models.TranslationKey{ContentID: contentID, LanguageCode: lang}
	tr, err := createRow(ctx, s.repo, ct, key, in)
	if err != nil {
		return nil, s.fail(ctx, "create", err)
	}
	s.log.InfoContext(ctx, "translation created", "type", ct, "id", contentID, "language", lang)
	return tr, nil
}

// Update changes the provided fields. It returns nil, nil when the
// translation does not exist.
func (s *TranslationService) Update(ctx context.Context, ct models.ContentType, contentID string, lang models.LanguageCode, in *models.TranslationInput) (any, error) {
	if !lang.Valid() {
		return nil, common.Validation(fmt.Sprintf("Unsupported language %q", lang), "language")
	}
	fields := in.Columns(ct)

	var (
		tr  any
		err error
	)
	switch ct {
	case models.ContentBlogPost:
		tr, err = row[models.BlogPostTranslation](s.repo.UpdateBlogPostTranslation(ctx, contentID, lang, fields))
	case models.ContentProject:
		tr, err = row[models.ProjectTranslation](s.repo.UpdateProjectTranslation(ctx, contentID, lang, fields))
	case models.ContentExperience:
		tr, err = row[models.ExperienceTranslation](s.repo.UpdateExperienceTranslation(ctx, contentID, lang, fields))
	case models.ContentEducation:
		tr, err = row[models.EducationTranslation](s.repo.UpdateEducationTranslation(ctx, contentID, lang, fields))
	case models.ContentTestimonial:
		tr, err = row[models.TestimonialTranslation](s.repo.UpdateTestimonialTranslation(ctx, contentID, lang, fields))
	default:
		err = fmt.Errorf("%w: %q", repository.ErrUnknownContentType, ct)
	}
	return tr, s.fail(ctx, "update", err)
}

// Get returns nil, nil when there is no translation for lang.
func (s *TranslationService) Get(ctx context.Context, ct models.ContentType, contentID string, lang models.LanguageCode) (any, error) {
	var (
		tr  any
		err error
	)
	switch ct {
	case models.ContentBlogPost:
		tr, err = row[models.BlogPostTranslation](s.repo.GetBlogPostTranslation(ctx, contentID, lang))
	case models.ContentProject:
		tr, err = row[models.ProjectTranslation](s.repo.GetProjectTranslation(ctx, contentID, lang))
	case models.ContentExperience:
		tr, err = row[models.ExperienceTranslation](s.repo.GetExperienceTranslation(ctx, contentID, lang))
	case models.ContentEducation:
		tr, err = row[models.EducationTranslation](s.repo.GetEducationTranslation(ctx, contentID, lang))
	case models.ContentTestimonial:
		tr, err = row[models.TestimonialTranslation](s.repo.GetTestimonialTranslation(ctx, contentID, lang))
	default:
		err = fmt.Errorf("%w: %q", repository.ErrUnknownContentType, ct)
	}
	return tr, s.fail(ctx, "get", err)
}

// Resolve returns the content in lang, falling back to the default
// language when allowed. It returns nil, nil only when the content row
// does not exist.
func (s *TranslationService) Resolve(ctx context.Context, ct models.ContentType, contentID string, lang models.LanguageCode, fallback bool) (*models.Resolved[any], error) {
	if !lang.Valid() {
		lang = models.DefaultLanguage
	}
	var (
		res *models.Resolved[any]
		err error
	)
	switch ct {
	case models.ContentBlogPost:
		var r *models.Resolved[models.BlogPost]
		r, err = s.repo.GetBlogPostWithTranslation(ctx, contentID, lang, fallback)
		res = r.Untyped()
	case models.ContentProject:
		var r *models.Resolved[models.Project]
		r, err = s.repo.GetProjectWithTranslation(ctx, contentID, lang, fallback)
		res = r.Untyped()
	case models.ContentExperience:
		var r *models.Resolved[models.Experience]
		r, err = s.repo.GetExperienceWithTranslation(ctx, contentID, lang, fallback)
		res = r.Untyped()
	case models.ContentEducation:
		var r *models.Resolved[models.Education]
		r, err = s.repo.GetEducationWithTranslation(ctx, contentID, lang, fallback)
		res = r.Untyped()
	case models.ContentTestimonial:
		var r *models.Resolved[models.Testimonial]
		r, err = s.repo.GetTestimonialWithTranslation(ctx, contentID, lang, fallback)
		res = r.Untyped()
	default:
		err = fmt.Errorf("%w: %q", repository.ErrUnknownContentType, ct)
	}
	if err != nil {
		return nil, s.fail(ctx, "resolve", err)
	}
	return res, nil
}

// ResolveBlogPost is Resolve for callers that need the typed post.
func (s *TranslationService) ResolveBlogPost(ctx context.Context, id string, lang models.LanguageCode, fallback bool) (*models.Resolved[models.BlogPost], error) {
	if !lang.Valid() {
		lang = models.DefaultLanguage
	}
	res, err := s.repo.GetBlogPostWithTranslation(ctx, id, lang, fallback)
	return res, s.fail(ctx, "resolve", err)
}

func (s *TranslationService) Status(ctx context.Context, ct models.ContentType, contentID string) ([]models.TranslationStatus, error) {
	exists, err := s.repo.ContentExists(ctx, ct, contentID)
	if err != nil {
		return nil, s.fail(ctx, "status", err)
	}
	if !exists {
		return nil, s.notFound("Content")
	}
	statuses, err := s.repo.GetTranslationStatus(ctx, ct, contentID)
	return statuses, s.fail(ctx, "status", err)
}

func (s *TranslationService) Stats(ctx context.Context) (*models.TranslationStats, error) {
	stats, err := s.repo.GetTranslationStats(ctx)
	return stats, s.fail(ctx, "stats", err)
}

func (s *TranslationService) Delete(ctx context.Context, ct models.ContentType, contentID string) (int64, error) {
	n, err := s.repo.DeleteTranslations(ctx, ct, contentID)
	if err != nil {
		return 0, s.fail(ctx, "delete", err)
	}
	s.log.InfoContext(ctx, "translations deleted", "type", ct, "id", contentID, "count", n)
	return n, nil
}

// CreateMultipleTranslations creates one translation per language in a
// single transaction. Each language runs in its own savepoint: a failing
// language is rolled back and reported in its result while the others are
// kept. Empty inputs are skipped and produce no result.
func (s *TranslationService) CreateMultipleTranslations(ctx context.Context, ct models.ContentType, contentID string, inputs map[models.LanguageCode]*models.TranslationInput) ([]LanguageResult, error) {
	exists, err := s.repo.ContentExists(ctx, ct, contentID)
	if err != nil {
		return nil, s.fail(ctx, "create multiple", err)
	}
	if !exists {
		return nil, s.notFound("Content")
	}

	results := []LanguageResult{}
	err = s.repo.Transaction(ctx, func(tx *repository.TranslationRepository) error {
		for _, lang := range orderedLanguages(inputs) {
			in := inputs[lang]
			if in.IsEmpty(ct) {
				continue
			}
			tr, err := s.createLanguage(ctx, tx, ct, contentID, lang, in)
			res := LanguageResult{Language: lang, Translation: tr, Err: err}
			if err != nil {
				res.Error = common.Failure(err).Message
			}
			results = append(results, res)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "create multiple", err)
	}
	return results, nil
}

func (s *TranslationService) createLanguage(ctx context.Context, tx *repository.TranslationRepository, ct models.ContentType, contentID string, lang models.LanguageCode, in *models.TranslationInput) (any, error) {
	if !lang.Valid() {
		return nil, common.Validation(fmt.Sprintf("Unsupported language %q", lang), "language")
	}
	if v := s.ValidateTranslationData(ct, in); !v.IsValid {
		return nil, common.Validation(strings.Join(v.Errors, "; "), "translation")
	}

	key := models.TranslationKey{ContentID: contentID, LanguageCode: lang}
	var tr any
	err := tx.Transaction(ctx, func(sp *repository.TranslationRepository) error {
		var err error
		tr, err = createRow(ctx, sp, ct, key, in)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "create multiple", err)
	}
	return tr, nil
}

// orderedLanguages lists the supported languages present in inputs in
// their display order, followed by any unsupported codes.
func orderedLanguages(inputs map[models.LanguageCode]*models.TranslationInput) []models.LanguageCode {
	out := make([]models.LanguageCode, 0, len(inputs))
	for _, lang := range models.SupportedLanguages {
		if _, ok := inputs[lang]; ok {
			out = append(out, lang)
		}
	}
	for lang := range inputs {
		if !lang.Valid() {
			out = append(out, lang)
		}
	}
	return out
}

// ValidateTranslationData checks that the required fields of ct are present
// and non-empty.
func (s *TranslationService) ValidateTranslationData(ct models.ContentType, in *models.TranslationInput) ValidationResult {
	required := models.RequiredTranslationFields(ct)
	if required == nil {
		return ValidationResult{Errors: []string{fmt.Sprintf("unsupported content type %q", ct)}}
	}
	if in == nil {
		in = &models.TranslationInput{}
	}

	errs := []string{}
	for _, field := range required {
		if field == "achievements" {
			if len(trimList(in.Achievements)) == 0 {
				errs = append(errs, "achievements must contain at least one item")
			}
			continue
		}
		if v, _ := in.Value(ct, field); v == "" {
			errs = append(errs, field+" is required")
		}
	}
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// DetectLanguage is a hook for a language detection provider. Without one
// every text is assumed to be in the default language.
func (s *TranslationService) DetectLanguage(text string) models.LanguageCode {
	return models.DefaultLanguage
}

// AutoTranslate is a hook for a machine translation provider. Without one
// the input is returned unchanged.
func (s *TranslationService) AutoTranslate(ctx context.Context, in *models.TranslationInput, from, to models.LanguageCode) (*models.TranslationInput, error) {
	return in, ctx.Err()
}
