package common

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello, World!":           "hello-world",
		"  Leading and trailing ": "leading-and-trailing",
		"Ação e Reação":           "acao-e-reacao",
		"already-a-slug":          "already-a-slug",
		"---":                     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
	assert.NotEmpty(t, Slugify("日本語の記事"))
	assert.True(t, ValidSlug(Slugify("日本語の記事")))
}

func TestValidSlug(t *testing.T) {
	assert.True(t, ValidSlug("go-1-24"))
	assert.False(t, ValidSlug("Go"))
	assert.False(t, ValidSlug("double--hyphen"))
	assert.False(t, ValidSlug("-leading"))
	assert.False(t, ValidSlug(""))
}

type sample struct {
	Title string `json:"title" validate:"required,max=5"`
	Slug  string `json:"slug" validate:"omitempty,slug"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestValidatorUsesJSONNames(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Struct(sample{Title: "ok", Slug: "a-b"}))

	err := v.Struct(sample{Slug: "Bad Slug", Email: "nope"})
	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, KindValidation, e.Kind)
	assert.ElementsMatch(t, []string{"title", "slug", "email"}, e.Fields)
	assert.Contains(t, e.Message, "title is required")
}

func TestErrorKinds(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", ErrInvalidCredentials)
	assert.Equal(t, KindUnauthorized, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, ErrInvalidCredentials))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))

	assert.Equal(t, http.StatusBadRequest, KindValidation.HTTPStatus())
	assert.Equal(t, http.StatusConflict, KindConflict.HTTPStatus())
	assert.Equal(t, http.StatusForbidden, ErrAccountDisabled.Kind.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, KindInternal.HTTPStatus())
}

func TestFailureHidesInternalCause(t *testing.T) {
	resp := Failure(errors.New("pq: connection refused"))
	assert.False(t, resp.Success)
	assert.Equal(t, string(KindInternal), resp.Error)
	assert.NotContains(t, resp.Message, "pq")
}

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Respond(c, http.StatusCreated, gin.H{"id": "1"}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":"1"}}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Respond(c, http.StatusOK, nil, NotFound("Blog post not found"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"not_found","message":"Blog post not found"}`, w.Body.String())
}

func TestDialector(t *testing.T) {
	cases := map[string]string{
		"folio.db":                              "sqlite",
		"sqlite://data/folio.db":                "sqlite",
		"postgres://u:p@localhost:5432/folio":   "postgres",
		"mysql://u:p@tcp(localhost:3306)/folio": "mysql",
	}
	for url, name := range cases {
		d, err := Dialector(url)
		require.NoError(t, err, url)
		assert.Equal(t, name, d.Name(), url)
	}

	assert.Equal(t, "u:p@tcp(db:3306)/folio?parseTime=true&clientFoundRows=true", mysqlDSN("u:p@tcp(db:3306)/folio"))
	assert.Equal(t, "u:p@tcp(db:3306)/folio?charset=utf8mb4&parseTime=false&clientFoundRows=true",
		mysqlDSN("u:p@tcp(db:3306)/folio?charset=utf8mb4&parseTime=false"))

	_, err := Dialector("mongodb://localhost")
	assert.Error(t, err)
	_, err = Dialector("sqlite://")
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "too-short")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("REFRESH_TOKEN_DAYS", "14")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("SITE_URL", "http://localhost:8080")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 14*24*time.Hour, cfg.RefreshTokenTTL())
	assert.Equal(t, cfg.JWTSecret, cfg.SessionSecret)
	assert.False(t, cfg.UseS3())
	assert.False(t, cfg.SecureCookies())

	t.Setenv("SITE_URL", "https://folio.example.com")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.SecureCookies())

	t.Setenv("UPLOAD_BACKEND", "s3")
	t.Setenv("S3_BUCKET", "")
	_, err = LoadConfig()
	assert.Error(t, err)
}
