package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"folio/common"
	"folio/models"
	"folio/repository"
)

func newTranslationService(db *gorm.DB) *TranslationService {
	return NewTranslationService(testBase("translation"), repository.NewTranslationRepository(db))
}

func newPost(t *testing.T, db *gorm.DB) *models.BlogPost {
	t.Helper()
	svc := NewBlogService(testBase("blog"), repository.NewBlogPostRepository(db))
	post, err := svc.Create(context.Background(), "user-1", BlogPostInput{
		Title:   ptr("Hello World"),
		Content: ptr("English body"),
	})
	require.NoError(t, err)
	return post
}

func TestTranslationCreate(t *testing.T) {
	db := setupTestDB(t)
	svc := newTranslationService(db)
	post := newPost(t, db)
	ctx := context.Background()

	tr, err := svc.Create(ctx, models.ContentBlogPost, post.ID, models.LangFrench, &models.TranslationInput{
		Title:   ptr(" Bonjour "),
		Content: ptr("Corps"),
	})
	require.NoError(t, err)
	row, ok := tr.(*models.BlogPostTranslation)
	require.True(t, ok)
	assert.Equal(t, "Bonjour", row.Title)

	_, err = svc.Create(ctx, models.ContentBlogPost, post.ID, models.LangFrench, &models.TranslationInput{
		Title: ptr("Encore"), Content: ptr("x"),
	})
	assertKind(t, err, common.KindConflict)
}

func TestTranslationCreate_Rejections(t *testing.T) {
	db := setupTestDB(t)
	svc := newTranslationService(db)
	post := newPost(t, db)
	ctx := context.Background()
	in := &models.TranslationInput{Title: ptr("Hallo"), Content: ptr("x")}

	_, err := svc.Create(ctx, models.ContentBlogPost, post.ID, "de", in)
	assertKind(t, err, common.KindValidation)

	_, err = svc.Create(ctx, models.ContentBlogPost, "missing", models.LangSpanish, in)
	assertKind(t, err, common.KindNotFound)

	_, err = svc.Create(ctx, "podcast", post.ID, models.LangSpanish, in)
	assertKind(t, err, common.KindValidation)

	_, err = svc.Create(ctx, models.ContentBlogPost, post.ID, models.LangSpanish, &models.TranslationInput{Title: ptr("Hola")})
	assertKind(t, err, common.KindValidation)
}

func TestTranslationUpdateAndGet(t *testing.T) {
	db := setupTestDB(t)
	svc := newTranslationService(db)
	post := newPost(t, db)
	ctx := context.Background()

	missing, err := svc.Update(ctx, models.ContentBlogPost, post.ID, models.LangSpanish, &models.TranslationInput{Title: ptr("Hola")})
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = svc.Create(ctx, models.ContentBlogPost, post.ID, models.LangSpanish, &models.TranslationInput{Title: ptr("Hola"), Content: ptr("Cuerpo")})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, models.ContentBlogPost, post.ID, models.LangSpanish, &models.TranslationInput{Excerpt: ptr("Resumen")})
	require.NoError(t, err)
	row := updated.(*models.BlogPostTranslation)
	assert.Equal(t, "Hola", row.Title)
	assert.Equal(t, "Resumen", row.Excerpt)

	got, err := svc.Get(ctx, models.ContentBlogPost, post.ID, models.LangSpanish)
	require.NoError(t, err)
	assert.Equal(t, "Resumen", got.(*models.BlogPostTranslation).Excerpt)

	none, err := svc.Get(ctx, models.ContentBlogPost, post.ID, models.LangKorean)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestTranslationResolve(t *testing.T) {
	db := setupTestDB(t)
	svc := newTranslationService(db)
	post := newPost(t, db)
	ctx := context.Background()

	_, err := svc.Create(ctx, models.ContentBlogPost, post.ID, models.LangEnglish, &models.TranslationInput{Title: ptr("Hello (en)"), Content: ptr("Body")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.ContentBlogPost, post.ID, models.LangFrench, &models.TranslationInput{Title: ptr("Bonjour"), Content: ptr("Corps")})
	require.NoError(t, err)

	fr, err := svc.Resolve(ctx, models.ContentBlogPost, post.ID, models.LangFrench, true)
	require.NoError(t, err)
	assert.True(t, fr.IsTranslated)
	assert.Equal(t, "Bonjour", fr.Content.(models.BlogPost).Title)

	es, err := svc.Resolve(ctx, models.ContentBlogPost, post.ID, models.LangSpanish, true)
	require.NoError(t, err)
	assert.True(t, es.IsFallback)
	assert.Equal(t, models.LangEnglish, es.Language)
	assert.Equal(t, "Hello (en)", es.Content.(models.BlogPost).Title)

	invalid, err := svc.Resolve(ctx, models.ContentBlogPost, post.ID, "xx", true)
	require.NoError(t, err)
	assert.Equal(t, models.LangEnglish, invalid.Language)

	missing, err := svc.Resolve(ctx, models.ContentBlogPost, "missing", models.LangFrench, true)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTranslationStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := newTranslationService(db)
	post := newPost(t, db)
	ctx := context.Background()

	statuses, err := svc.Status(ctx, models.ContentBlogPost, post.ID)
	require.NoError(t, err)
	assert.Len(t, statuses, 8)

	_, err = svc.Status(ctx, models.ContentBlogPost, "missing")
	assertKind(t, err, common.KindNotFound)
}

func TestTranslationStats_Empty(t *testing.T) {
	svc := newTranslationService(setupTestDB(t))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalContent)
	for _, l := range stats.Languages {
		assert.Equal(t, 0.0, l.Percentage)
	}
}

func TestCreateMultipleTranslations(t *testing.T) {
	db := setupTestDB(t)
	svc := newTranslationService(db)
	post := newPost(t, db)
	ctx := context.Background()

	results, err := svc.CreateMultipleTranslations(ctx, models.ContentBlogPost, post.ID, map[models.LanguageCode]*models.TranslationInput{
		models.LangSpanish: {Title: ptr("Hola"), Content: ptr("Cuerpo")},
		models.LangFrench:  {Title: ptr("Bonjour"), Content: ptr("Corps")},
		models.LangItalian: {},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, models.LangSpanish, results[0].Language)
	assert.Equal(t, models.LangFrench, results[1].Language)
	for _, r := range results {
		assert.NoError(t, r.Err)
		assert.NotNil(t, r.Translation)
	}
}

func TestCreateMultipleTranslations_PartialFailure(t *testing.T) {
	db := setupTestDB(t)
	svc := newTranslationService(db)
	post := newPost(t, db)
	ctx := context.Background()

	_, err := svc.Create(ctx, models.ContentBlogPost, post.ID, models.LangSpanish, &models.TranslationInput{Title: ptr("Hola"), Content: ptr("Cuerpo")})
	require.NoError(t, err)

	results, err := svc.CreateMultipleTranslations(ctx, models.ContentBlogPost, post.ID, map[models.LanguageCode]*models.TranslationInput{
		models.LangSpanish:  {Title: ptr("Hola otra vez"), Content: ptr("Cuerpo")},
		models.LangFrench:   {Title: ptr("Bonjour"), Content: ptr("Corps")},
		models.LangJapanese: {Title: ptr("こんにちは")},
		"de":                {Title: ptr("Hallo"), Content: ptr("Text")},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)

	byLang := map[models.LanguageCode]LanguageResult{}
	for _, r := range results {
		byLang[r.Language] = r
	}
	assertKind(t, byLang[models.LangSpanish].Err, common.KindConflict)
	assert.NotEmpty(t, byLang[models.LangSpanish].Error)
	assert.NoError(t, byLang[models.LangFrench].Err)
	assertKind(t, byLang[models.LangJapanese].Err, common.KindValidation)
	assertKind(t, byLang["de"].Err, common.KindValidation)

	fr, err := svc.Get(ctx, models.ContentBlogPost, post.ID, models.LangFrench)
	require.NoError(t, err)
	assert.NotNil(t, fr)

	es, err := svc.Get(ctx, models.ContentBlogPost, post.ID, models.LangSpanish)
	require.NoError(t, err)
	assert.Equal(t, "Hola", es.(*models.BlogPostTranslation).Title)
}

func TestCreateMultipleTranslations_MissingContent(t *testing.T) {
	svc := newTranslationService(setupTestDB(t))

	_, err := svc.CreateMultipleTranslations(context.Background(), models.ContentProject, "missing", map[models.LanguageCode]*models.TranslationInput{
		models.LangSpanish: {Title: ptr("Hola"), Description: ptr("x")},
	})
	assertKind(t, err, common.KindNotFound)
}

func TestValidateTranslationData(t *testing.T) {
	svc := newTranslationService(setupTestDB(t))

	res := svc.ValidateTranslationData(models.ContentExperience, &models.TranslationInput{
		Position:     ptr("Engineer"),
		Description:  ptr("Built things"),
		Achievements: []string{" ", ""},
	})
	assert.False(t, res.IsValid)
	assert.Equal(t, []string{"achievements must contain at least one item"}, res.Errors)

	res = svc.ValidateTranslationData(models.ContentExperience, &models.TranslationInput{
		Position:     ptr("Engineer"),
		Description:  ptr("Built things"),
		Achievements: []string{"Shipped"},
	})
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)

	res = svc.ValidateTranslationData(models.ContentTestimonial, nil)
	assert.False(t, res.IsValid)
	assert.Equal(t, []string{"content is required"}, res.Errors)

	res = svc.ValidateTranslationData("podcast", nil)
	assert.False(t, res.IsValid)
}

func TestExperienceTranslationAchievements(t *testing.T) {
	db := setupTestDB(t)
	svc := newTranslationService(db)
	ctx := context.Background()
	exp, err := NewExperienceService(testBase("experience"), repository.NewExperienceRepository(db)).Create(ctx, "user-1", ExperienceInput{
		Company:   ptr("Acme"),
		Position:  ptr("Engineer"),
		StartDate: ptr(time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, models.ContentExperience, exp.ID, models.LangPortuguese, &models.TranslationInput{
		Position:     ptr("Engenheiro"),
		Description:  ptr("Construí coisas"),
		Achievements: []string{"Primeiro", " ", "Segundo"},
	})
	require.NoError(t, err)

	res, err := svc.Resolve(ctx, models.ContentExperience, exp.ID, models.LangPortuguese, true)
	require.NoError(t, err)
	e := res.Content.(models.Experience)
	assert.Equal(t, "Engenheiro", e.Position)
	assert.Equal(t, []string{"Primeiro", "Segundo"}, []string(e.Achievements))
}

func TestDetectLanguageAndAutoTranslate(t *testing.T) {
	svc := newTranslationService(setupTestDB(t))
	assert.Equal(t, models.LangEnglish, svc.DetectLanguage("Bonjour tout le monde"))

	in := &models.TranslationInput{Title: ptr("Hello")}
	out, err := svc.AutoTranslate(context.Background(), in, models.LangEnglish, models.LangFrench)
	require.NoError(t, err)
	assert.Same(t, in, out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.AutoTranslate(ctx, in, models.LangEnglish, models.LangFrench)
	assert.ErrorIs(t, err, context.Canceled)
}

// translatable describes how to create one kind of content and read back
// the translated field used to tell languages apart.
type translatable struct {
	create func(t *testing.T, db *gorm.DB) string
	input  func(text string) *models.TranslationInput
	patch  func(text string) *models.TranslationInput
	read   func(content any) string
}

var translatables = map[models.ContentType]translatable{
	models.ContentBlogPost: {
		create: func(t *testing.T, db *gorm.DB) string { return newPost(t, db).ID },
		input: func(text string) *models.TranslationInput {
			return &models.TranslationInput{Title: ptr(text), Content: ptr("body " + text)}
		},
		patch: func(text string) *models.TranslationInput { return &models.TranslationInput{Title: ptr(text)} },
		read:  func(content any) string { return content.(models.BlogPost).Title },
	},
	models.ContentProject: {
		create: func(t *testing.T, db *gorm.DB) string {
			p, err := NewProjectService(testBase("project"), repository.NewProjectRepository(db)).Create(context.Background(), "user-1", ProjectInput{
				Title:       ptr("Folio"),
				Description: ptr("A portfolio backend"),
			})
			require.NoError(t, err)
			return p.ID
		},
		input: func(text string) *models.TranslationInput {
			return &models.TranslationInput{Title: ptr(text), Description: ptr("about " + text)}
		},
		patch: func(text string) *models.TranslationInput { return &models.TranslationInput{Title: ptr(text)} },
		read:  func(content any) string { return content.(models.Project).Title },
	},
	models.ContentExperience: {
		create: func(t *testing.T, db *gorm.DB) string {
			e, err := NewExperienceService(testBase("experience"), repository.NewExperienceRepository(db)).Create(context.Background(), "user-1", ExperienceInput{
				Company:   ptr("Acme"),
				Position:  ptr("Engineer"),
				StartDate: ptr(time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)),
			})
			require.NoError(t, err)
			return e.ID
		},
		input: func(text string) *models.TranslationInput {
			return &models.TranslationInput{Position: ptr(text), Description: ptr("did " + text), Achievements: []string{"shipped " + text}}
		},
		patch: func(text string) *models.TranslationInput { return &models.TranslationInput{Position: ptr(text)} },
		read:  func(content any) string { return content.(models.Experience).Position },
	},
	models.ContentEducation: {
		create: func(t *testing.T, db *gorm.DB) string {
			e, err := NewEducationService(testBase("education"), repository.NewEducationRepository(db)).Create(context.Background(), "user-1", EducationInput{
				Institution: ptr("MIT"),
				Degree:      ptr("BSc"),
				StartDate:   ptr(time.Date(2010, 9, 1, 0, 0, 0, 0, time.UTC)),
			})
			require.NoError(t, err)
			return e.ID
		},
		input: func(text string) *models.TranslationInput {
			return &models.TranslationInput{Degree: ptr(text), Institution: ptr("school " + text)}
		},
		patch: func(text string) *models.TranslationInput { return &models.TranslationInput{Degree: ptr(text)} },
		read:  func(content any) string { return content.(models.Education).Degree },
	},
	models.ContentTestimonial: {
		create: func(t *testing.T, db *gorm.DB) string {
			tm, err := NewTestimonialService(testBase("testimonial"), repository.NewTestimonialRepository(db)).Create(context.Background(), "user-1", TestimonialInput{
				AuthorName: ptr("Grace"),
				Content:    ptr("Great work"),
			})
			require.NoError(t, err)
			return tm.ID
		},
		input: func(text string) *models.TranslationInput { return &models.TranslationInput{Content: ptr(text)} },
		patch: func(text string) *models.TranslationInput { return &models.TranslationInput{Content: ptr(text)} },
		read:  func(content any) string { return content.(models.Testimonial).Content },
	},
}

func TestTranslationLifecycle_EveryTypeAndLanguage(t *testing.T) {
	for _, ct := range models.ContentTypes {
		tc, ok := translatables[ct]
		require.True(t, ok, ct)

		t.Run(string(ct), func(t *testing.T) {
			db := setupTestDB(t)
			svc := newTranslationService(db)
			ctx := context.Background()
			id := tc.create(t, db)

			statuses, err := svc.Status(ctx, ct, id)
			require.NoError(t, err)
			require.Len(t, statuses, len(models.SupportedLanguages))
			for _, st := range statuses {
				assert.False(t, st.IsComplete, st.Language)
				assert.Equal(t, models.RequiredTranslationFields(ct), st.MissingFields, st.Language)
			}

			for _, lang := range models.SupportedLanguages {
				marker := string(lang) + " text"

				created, err := svc.Create(ctx, ct, id, lang, tc.input(marker))
				require.NoError(t, err, lang)
				require.NotNil(t, created, lang)

				got, err := svc.Get(ctx, ct, id, lang)
				require.NoError(t, err, lang)
				require.NotNil(t, got, lang)

				updated, err := svc.Update(ctx, ct, id, lang, tc.patch(marker+" v2"))
				require.NoError(t, err, lang)
				require.NotNil(t, updated, lang)

				res, err := svc.Resolve(ctx, ct, id, lang, true)
				require.NoError(t, err, lang)
				require.NotNil(t, res, lang)
				assert.True(t, res.IsTranslated, lang)
				assert.False(t, res.IsFallback, lang)
				assert.Equal(t, lang, res.Language)
				assert.Equal(t, marker+" v2", tc.read(res.Content), lang)
			}

			statuses, err = svc.Status(ctx, ct, id)
			require.NoError(t, err)
			for _, st := range statuses {
				assert.True(t, st.IsComplete, st.Language)
				assert.True(t, st.IsPublished, st.Language)
				assert.NotNil(t, st.LastUpdated, st.Language)
				assert.Empty(t, st.MissingFields, st.Language)
			}
		})
	}
}

func TestTranslationFallback_EveryTypeAndLanguage(t *testing.T) {
	for _, ct := range models.ContentTypes {
		tc := translatables[ct]

		t.Run(string(ct), func(t *testing.T) {
			db := setupTestDB(t)
			svc := newTranslationService(db)
			ctx := context.Background()
			id := tc.create(t, db)
			original, err := svc.Resolve(ctx, ct, id, models.LangEnglish, true)
			require.NoError(t, err)

			_, err = svc.Create(ctx, ct, id, models.DefaultLanguage, tc.input("english text"))
			require.NoError(t, err)

			for _, lang := range models.SupportedLanguages {
				res, err := svc.Resolve(ctx, ct, id, lang, true)
				require.NoError(t, err, lang)
				assert.Equal(t, models.DefaultLanguage, res.Language, lang)
				assert.Equal(t, "english text", tc.read(res.Content), lang)
				assert.Equal(t, lang != models.DefaultLanguage, res.IsFallback, lang)
				assert.Equal(t, lang == models.DefaultLanguage, res.IsTranslated, lang)

				plain, err := svc.Resolve(ctx, ct, id, lang, false)
				require.NoError(t, err, lang)
				assert.Equal(t, lang, plain.Language)
				if lang != models.DefaultLanguage {
					assert.False(t, plain.IsTranslated, lang)
					assert.Equal(t, tc.read(original.Content), tc.read(plain.Content), lang)
				}
			}
		})
	}
}
