package models

import (
	"time"

	"gorm.io/datatypes"
)

// TranslationKey is the composite primary key shared by every translation
// table. A content row has at most one translation per language.
type TranslationKey struct {
	ContentID    string       `gorm:"primaryKey;size:36" json:"contentId"`
	LanguageCode LanguageCode `gorm:"primaryKey;size:5;check:language_code IN ('en','es','pt','it','fr','ja','zh','ko')" json:"languageCode"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func (k *TranslationKey) Updated() time.Time {
	return k.UpdatedAt
}

type BlogPostTranslation struct {
	TranslationKey
	Title           string `gorm:"size:200" json:"title"`
	Excerpt         string `gorm:"size:500" json:"excerpt"`
	Content         string `gorm:"type:text" json:"content"`
	MetaTitle       string `gorm:"size:200" json:"metaTitle"`
	MetaDescription string `gorm:"size:300" json:"metaDescription"`
}

type ProjectTranslation struct {
	TranslationKey
	Title           string `gorm:"size:200" json:"title"`
	Description     string `gorm:"size:1000" json:"description"`
	LongDescription string `gorm:"type:text" json:"longDescription"`
}

// ExperienceTranslation keeps achievements as a JSON array column. A stored
// value that is not a valid array makes the read fail.
type ExperienceTranslation struct {
	TranslationKey
	Position     string                      `gorm:"size:200" json:"position"`
	Company      string                      `gorm:"size:200" json:"company"`
	Location     string                      `gorm:"size:200" json:"location"`
	Description  string                      `gorm:"type:text" json:"description"`
	Achievements datatypes.JSONSlice[string] `gorm:"not null;default:'[]'" json:"achievements"`
}

type EducationTranslation struct {
	TranslationKey
	Institution  string `gorm:"size:200" json:"institution"`
	Degree       string `gorm:"size:200" json:"degree"`
	FieldOfStudy string `gorm:"size:200" json:"fieldOfStudy"`
	Description  string `gorm:"type:text" json:"description"`
}

type TestimonialTranslation struct {
	TranslationKey
	Content        string `gorm:"type:text" json:"content"`
	AuthorPosition string `gorm:"size:100" json:"authorPosition"`
}

// RequiredTranslationFields lists, per content type, the fields a translation
// needs before it counts as complete.
func RequiredTranslationFields(ct ContentType) []string {
	switch ct {
	case ContentBlogPost:
		return []string{"title", "content"}
	case ContentProject:
		return []string{"title", "description"}
	case ContentExperience:
		return []string{"position", "description", "achievements"}
	case ContentEducation:
		return []string{"degree", "institution"}
	case ContentTestimonial:
		return []string{"content"}
	}
	return nil
}

func missing(required []string, present func(string) bool) []string {
	out := []string{}
	for _, f := range required {
		if !present(f) {
			out = append(out, f)
		}
	}
	return out
}

func (t *BlogPostTranslation) MissingFields() []string {
	return missing(RequiredTranslationFields(ContentBlogPost), func(f string) bool {
		switch f {
		case "title":
			return t.Title != ""
		case "content":
			return t.Content != ""
		}
		return false
	})
}

func (t *ProjectTranslation) MissingFields() []string {
	return missing(RequiredTranslationFields(ContentProject), func(f string) bool {
		switch f {
		case "title":
			return t.Title != ""
		case "description":
			return t.Description != ""
		}
		return false
	})
}

func (t *ExperienceTranslation) MissingFields() []string {
	return missing(RequiredTranslationFields(ContentExperience), func(f string) bool {
		switch f {
		case "position":
			return t.Position != ""
		case "description":
			return t.Description != ""
		case "achievements":
			return len(t.Achievements) > 0
		}
		return false
	})
}

func (t *EducationTranslation) MissingFields() []string {
	return missing(RequiredTranslationFields(ContentEducation), func(f string) bool {
		switch f {
		case "degree":
			return t.Degree != ""
		case "institution":
			return t.Institution != ""
		}
		return false
	})
}

func (t *TestimonialTranslation) MissingFields() []string {
	return missing(RequiredTranslationFields(ContentTestimonial), func(f string) bool {
		return f == "content" && t.Content != ""
	})
}

func overlay(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// ApplyTo copies the translated fields that are set onto p.
func (t *BlogPostTranslation) ApplyTo(p *BlogPost) {
	overlay(&p.Title, t.Title)
	overlay(&p.Excerpt, t.Excerpt)
	overlay(&p.Content, t.Content)
	overlay(&p.MetaTitle, t.MetaTitle)
	overlay(&p.MetaDescription, t.MetaDescription)
}

func (t *ProjectTranslation) ApplyTo(p *Project) {
	overlay(&p.Title, t.Title)
	overlay(&p.Description, t.Description)
	overlay(&p.LongDescription, t.LongDescription)
}

func (t *ExperienceTranslation) ApplyTo(e *Experience) {
	overlay(&e.Position, t.Position)
	overlay(&e.Company, t.Company)
	overlay(&e.Location, t.Location)
	overlay(&e.Description, t.Description)
	if len(t.Achievements) > 0 {
		e.Achievements = append(datatypes.JSONSlice[string]{}, t.Achievements...)
	}
}

func (t *EducationTranslation) ApplyTo(e *Education) {
	overlay(&e.Institution, t.Institution)
	overlay(&e.Degree, t.Degree)
	overlay(&e.FieldOfStudy, t.FieldOfStudy)
	overlay(&e.Description, t.Description)
}

func (t *TestimonialTranslation) ApplyTo(p *Testimonial) {
	overlay(&p.Content, t.Content)
	overlay(&p.AuthorPosition, t.AuthorPosition)
}

// Resolved is content composed with the translation picked for a request.
type Resolved[T any] struct {
	Content      T            `json:"content"`
	Language     LanguageCode `json:"language"`
	IsTranslated bool         `json:"isTranslated"`
	IsFallback   bool         `json:"isFallback"`
}

// Untyped drops the type parameter so mixed content can share one envelope.
func (r *Resolved[T]) Untyped() *Resolved[any] {
	if r == nil {
		return nil
	}
	return &Resolved[any]{
		Content:      r.Content,
		Language:     r.Language,
		IsTranslated: r.IsTranslated,
		IsFallback:   r.IsFallback,
	}
}

type TranslationStatus struct {
	Language      LanguageCode `json:"language"`
	IsComplete    bool         `json:"isComplete"`
	IsPublished   bool         `json:"isPublished"`
	LastUpdated   *time.Time   `json:"lastUpdated"`
	MissingFields []string     `json:"missingFields"`
}

type LanguageStats struct {
	Language   LanguageCode `json:"language"`
	Name       string       `json:"name"`
	Translated int64        `json:"translated"`
	Percentage float64      `json:"percentage"`
}

type TranslationStats struct {
	TotalContent int64           `json:"totalContent"`
	Languages    []LanguageStats `json:"languages"`
}
