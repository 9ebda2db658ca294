package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"folio/common"
	"folio/database"
	"folio/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.RunMigrations(db))
	return db
}

func createTestPost(t *testing.T, db *gorm.DB, slug string) *models.BlogPost {
	t.Helper()
	post := &models.BlogPost{
		UserID:  "user-1",
		Title:   "Original " + slug,
		Slug:    slug,
		Content: "English body",
		Visible: true,
	}
	require.NoError(t, NewBlogPostRepository(db).Create(context.Background(), post))
	return post
}

func createTestExperience(t *testing.T, db *gorm.DB) *models.Experience {
	t.Helper()
	exp := &models.Experience{
		UserID:       "user-1",
		Company:      "Acme",
		Position:     "Engineer",
		StartDate:    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Achievements: datatypes.JSONSlice[string]{"Shipped things"},
		Visible:      true,
	}
	require.NoError(t, NewExperienceRepository(db).Create(context.Background(), exp))
	return exp
}

func key(id string, lang models.LanguageCode) models.TranslationKey {
	return models.TranslationKey{ContentID: id, LanguageCode: lang}
}

func TestGetWithTranslation_RequestedLanguage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTranslationRepository(db)
	ctx := context.Background()
	post := createTestPost(t, db, "hello")

	_, err := repo.CreateBlogPostTranslation(ctx, &models.BlogPostTranslation{
		TranslationKey: key(post.ID, models.LangFrench),
		Title:          "Bonjour",
		Content:        "Corps français",
	})
	require.NoError(t, err)

	res, err := repo.GetBlogPostWithTranslation(ctx, post.ID, models.LangFrench, true)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.IsTranslated)
	assert.False(t, res.IsFallback)
	assert.Equal(t, models.LangFrench, res.Language)
	assert.Equal(t, "Bonjour", res.Content.Title)
	assert.Equal(t, "Corps français", res.Content.Content)
	assert.Equal(t, "hello", res.Content.Slug)
}

func TestGetWithTranslation_FallsBackToEnglish(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTranslationRepository(db)
	ctx := context.Background()
	post := createTestPost(t, db, "hello")

	_, err := repo.CreateBlogPostTranslation(ctx, &models.BlogPostTranslation{
		TranslationKey: key(post.ID, models.LangEnglish),
		Title:          "Hello (edited)",
		Content:        "Edited body",
	})
	require.NoError(t, err)

	res, err := repo.GetBlogPostWithTranslation(ctx, post.ID, models.LangFrench, true)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.IsFallback)
	assert.False(t, res.IsTranslated)
	assert.Equal(t, models.LangEnglish, res.Language)
	assert.Equal(t, "Hello (edited)", res.Content.Title)

	res, err = repo.GetBlogPostWithTranslation(ctx, post.ID, models.LangFrench, false)
	require.NoError(t, err)
	assert.False(t, res.IsFallback)
	assert.Equal(t, models.LangFrench, res.Language)
	assert.Equal(t, "Original hello", res.Content.Title)
}

func TestGetWithTranslation_NoTranslationReturnsOriginal(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTranslationRepository(db)
	post := createTestPost(t, db, "hello")

	res, err := repo.GetBlogPostWithTranslation(context.Background(), post.ID, models.LangJapanese, true)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.False(t, res.IsTranslated)
	assert.False(t, res.IsFallback)
	assert.Equal(t, models.LangJapanese, res.Language)
	assert.Equal(t, "Original hello", res.Content.Title)
}

func TestGetWithTranslation_PartialTranslationKeepsOriginalFields(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTranslationRepository(db)
	ctx := context.Background()
	post := createTestPost(t, db, "hello")

	_, err := repo.CreateBlogPostTranslation(ctx, &models.BlogPostTranslation{
		TranslationKey: key(post.ID, models.LangSpanish),
		Title:          "Hola",
	})
	require.NoError(t, err)

	res, err := repo.GetBlogPostWithTranslation(ctx, post.ID, models.LangSpanish, true)
	require.NoError(t, err)
	assert.Equal(t, "Hola", res.Content.Title)
	assert.Equal(t, "English body", res.Content.Content)
}

func TestGetWithTranslation_MissingContent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTranslationRepository(db)

	res, err := repo.GetProjectWithTranslation(context.Background(), "does-not-exist", models.LangEnglish, true)
	assert.NoError(t, err)
	assert.Nil(t, res)
}

func TestCreateTranslation_DuplicateLanguage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTranslationRepository(db)
	ctx := context.Background()
	post := createTestPost(t, db, "hello")

	tr := &models.BlogPostTranslation{TranslationKey: key(post.ID, models.LangItalian), Title: "Ciao"}
	_, err := repo.CreateBlogPostTranslation(ctx, tr)
	require.NoError(t, err)

	_, err = repo.CreateBlogPostTranslation(ctx, &models.BlogPostTranslation{TranslationKey: key(post.ID, models.LangItalian), Title: "Ciao 2"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestCreateTranslation_UnsupportedLanguage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTranslationRepository(db)
	post := createTestPost(t, db, "hello")

	_, err := repo.CreateBlogPostTranslation(context.Background(), &models.BlogPostTranslation{
		TranslationKey: key(post.ID, "de"),
		Title:          "Hallo",
	})
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestUpdateTranslation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTranslationRepository(db)
	ctx := context.Background()
	post := createTestPost(t, db, "hello")

	_, err := repo.CreateBlogPostTranslation(ctx, &models.BlogPostTranslation{TranslationKey: key(post.ID, models.LangPortuguese), Title: "Olá"})
	require.NoError(t, err)

	updated, err := repo.UpdateBlogPostTranslation(ctx, post.ID, models.LangPortuguese, map[string]any{"content": "Corpo"})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Olá", updated.Title)
	assert.Equal(t, "Corpo", updated.Content)

	missing, err := repo.UpdateBlogPostTranslation(ctx, post.ID, models.LangKorean, map[string]any{"content": "x"})
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestExperienceTranslation_AchievementsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTranslationRepository(db)
	ctx := context.Background()
	exp := createTestExperience(t, db)

	_, err := repo.CreateExperienceTranslation(ctx, &models.ExperienceTranslation{
		TranslationKey: key(exp.ID, models.LangSpanish),
		Position:       "Ingeniero",
		Description:    "Construí cosas",
		Achievements:   datatypes.JSONSlice[string]{"Primero", "Segundo"},
	})
	require.NoError(t, err)

	got, err := repo.GetExperienceTranslation(ctx, exp.ID, models.LangSpanish)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"Primero", "Segundo"}, []string(got.Achievements))

	res, err := repo.GetExperienceWithTranslation(ctx, exp.ID, models.LangSpanish, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Primero", "Segundo"}, []string(res.Content.Achievements))
	assert.Equal(t, "Acme", res.Content.Company)
}

func TestExperienceTranslation_MalformedAchievementsFailRead(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTranslationRepository(db)
	ctx := context.Background()
	exp := createTestExperience(t, db)

	_, err := repo.CreateExperienceTranslation(ctx, &models.ExperienceTranslation{
		TranslationKey: key(exp.ID, models.LangFrench),
		Position:       "Ingénieur",
	})
	require.NoError(t, err)

	err = db.Exec("UPDATE experience_translations SET achievements = ? WHERE content_id = ?", "not json", exp.ID).Error
	require.NoError(t, err)

	_, err = repo.GetExperienceTranslation(ctx, exp.ID, models.LangFrench)
	assert.Error(t, err)
}

func TestGetTranslationStatus_NoTranslations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTranslationRepository(db)
	post := createTestPost(t, db, "hello")

	statuses, err := repo.GetTranslationStatus(context.Background(), models.ContentBlogPost, post.ID)
	require.NoError(t, err)
	require.Len(t, statuses, len(models.SupportedLanguages))
	for i, st := range statuses {
		assert.Equal(t, models.SupportedLanguages[i], st.Language)
		assert.False(t, st.IsComplete)
		assert.False(t, st.IsPublished)
		assert.Nil(t, st.LastUpdated)
		assert.Equal(t, []string{"title", "content"}, st.MissingFields)
	}
}

func TestGetTranslationStatus_MissingFields(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTranslationRepository(db)
	ctx := context.Background()
	post := createTestPost(t, db, "hello")

	_, err := repo.CreateBlogPostTranslation(ctx, &models.BlogPostTranslation{TranslationKey: key(post.ID, models.LangSpanish), Title: "Hola", Content: "Cuerpo"})
	require.NoError(t, err)
	_, err = repo.CreateBlogPostTranslation(ctx, &models.BlogPostTranslation{TranslationKey: key(post.ID, models.LangFrench), Title: "Bonjour"})
	require.NoError(t, err)

	statuses, err := repo.GetTranslationStatus(ctx, models.ContentBlogPost, post.ID)
	require.NoError(t, err)

	byLang := map[models.LanguageCode]models.TranslationStatus{}
	for _, st := range statuses {
		byLang[st.Language] = st
	}
	assert.True(t, byLang[models.LangSpanish].IsComplete)
	assert.Empty(t, byLang[models.LangSpanish].MissingFields)
	assert.NotNil(t, byLang[models.LangSpanish].LastUpdated)

	assert.False(t, byLang[models.LangFrench].IsComplete)
	assert.True(t, byLang[models.LangFrench].IsPublished)
	assert.Equal(t, []string{"content"}, byLang[models.LangFrench].MissingFields)
}

func TestGetTranslationStatus_UnknownContentType(t *testing.T) {
	db := setupTestDB(t)
	_, err := NewTranslationRepository(db).GetTranslationStatus(context.Background(), "podcast", "x")
	assert.ErrorIs(t, err, ErrUnknownContentType)
}

func TestGetTranslationStats_Empty(t *testing.T) {
	db := setupTestDB(t)

	stats, err := NewTranslationRepository(db).GetTranslationStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalContent)
	require.Len(t, stats.Languages, len(models.SupportedLanguages))
	for _, l := range stats.Languages {
		assert.Equal(t, int64(0), l.Translated)
		assert.Equal(t, 0.0, l.Percentage)
		assert.NotEmpty(t, l.Name)
	}
}

func TestGetTranslationStats_Counts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTranslationRepository(db)
	ctx := context.Background()
	first := createTestPost(t, db, "first")
	createTestPost(t, db, "second")
	createTestExperience(t, db)

	_, err := repo.CreateBlogPostTranslation(ctx, &models.BlogPostTranslation{TranslationKey: key(first.ID, models.LangSpanish), Title: "Primero"})
	require.NoError(t, err)

	stats, err := repo.GetTranslationStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalContent)
	for _, l := range stats.Languages {
		if l.Language == models.LangSpanish {
			assert.Equal(t, int64(1), l.Translated)
			assert.Equal(t, 33.33, l.Percentage)
		} else {
			assert.Equal(t, 0.0, l.Percentage)
		}
	}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, percentage(5, 0))
	assert.Equal(t, 50.0, percentage(1, 2))
	assert.Equal(t, 100.0, percentage(7, 3))
	assert.Equal(t, 66.67, percentage(2, 3))
}

func TestDeleteTranslations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTranslationRepository(db)
	ctx := context.Background()
	post := createTestPost(t, db, "hello")

	for _, lang := range []models.LanguageCode{models.LangSpanish, models.LangFrench} {
		_, err := repo.CreateBlogPostTranslation(ctx, &models.BlogPostTranslation{TranslationKey: key(post.ID, lang), Title: "x"})
		require.NoError(t, err)
	}

	n, err := repo.DeleteTranslations(ctx, models.ContentBlogPost, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.DeleteTranslations(ctx, models.ContentBlogPost, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestTransaction_RollsBack(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTranslationRepository(db)
	ctx := context.Background()
	post := createTestPost(t, db, "hello")

	err := repo.Transaction(ctx, func(tx *TranslationRepository) error {
		if _, err := tx.CreateBlogPostTranslation(ctx, &models.BlogPostTranslation{TranslationKey: key(post.ID, models.LangSpanish), Title: "Hola"}); err != nil {
			return err
		}
		return common.ErrNotFound
	})
	assert.ErrorIs(t, err, common.ErrNotFound)

	got, err := repo.GetBlogPostTranslation(ctx, post.ID, models.LangSpanish)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteContentRemovesTranslations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTranslationRepository(db)
	ctx := context.Background()
	post := createTestPost(t, db, "hello")

	_, err := repo.CreateBlogPostTranslation(ctx, &models.BlogPostTranslation{TranslationKey: key(post.ID, models.LangSpanish), Title: "Hola"})
	require.NoError(t, err)

	ok, err := NewBlogPostRepository(db).Delete(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetBlogPostTranslation(ctx, post.ID, models.LangSpanish)
	require.NoError(t, err)
	assert.Nil(t, got)
}
