package models

import (
	"strings"

	"gorm.io/datatypes"
)

// TranslationInput carries translated fields for any content type. Nil
// pointers are "not provided"; which fields apply depends on the type.
type TranslationInput struct {
	Title           *string  `json:"title,omitempty"`
	Excerpt         *string  `json:"excerpt,omitempty"`
	Content         *string  `json:"content,omitempty"`
	MetaTitle       *string  `json:"metaTitle,omitempty"`
	MetaDescription *string  `json:"metaDescription,omitempty"`
	Description     *string  `json:"description,omitempty"`
	LongDescription *string  `json:"longDescription,omitempty"`
	Position        *string  `json:"position,omitempty"`
	Company         *string  `json:"company,omitempty"`
	Location        *string  `json:"location,omitempty"`
	Institution     *string  `json:"institution,omitempty"`
	Degree          *string  `json:"degree,omitempty"`
	FieldOfStudy    *string  `json:"fieldOfStudy,omitempty"`
	AuthorPosition  *string  `json:"authorPosition,omitempty"`
	Achievements    []string `json:"achievements,omitempty"`
}

type translatedField struct {
	column string
	value  *string
}

func (in *TranslationInput) stringFields(ct ContentType) []translatedField {
	switch ct {
	case ContentBlogPost:
		return []translatedField{
			{"title", in.Title},
			{"excerpt", in.Excerpt},
			{"content", in.Content},
			{"meta_title", in.MetaTitle},
			{"meta_description", in.MetaDescription},
		}
	case ContentProject:
		return []translatedField{
			{"title", in.Title},
			{"description", in.Description},
			{"long_description", in.LongDescription},
		}
	case ContentExperience:
		return []translatedField{
			{"position", in.Position},
			{"company", in.Company},
			{"location", in.Location},
			{"description", in.Description},
		}
	case ContentEducation:
		return []translatedField{
			{"institution", in.Institution},
			{"degree", in.Degree},
			{"field_of_study", in.FieldOfStudy},
			{"description", in.Description},
		}
	case ContentTestimonial:
		return []translatedField{
			{"content", in.Content},
			{"author_position", in.AuthorPosition},
		}
	}
	return nil
}

// Value returns the trimmed value of a field by its JSON name, and whether
// it was provided.
func (in *TranslationInput) Value(ct ContentType, field string) (string, bool) {
	for _, f := range in.stringFields(ct) {
		if jsonName(f.column) == field && f.value != nil {
			return strings.TrimSpace(*f.value), true
		}
	}
	return "", false
}

// IsEmpty reports whether in carries nothing usable for ct.
func (in *TranslationInput) IsEmpty(ct ContentType) bool {
	if in == nil {
		return true
	}
	for _, f := range in.stringFields(ct) {
		if f.value != nil && strings.TrimSpace(*f.value) != "" {
			return false
		}
	}
	return ct != ContentExperience || len(in.Achievements) == 0
}

// Columns maps the provided fields to column values for a partial update.
func (in *TranslationInput) Columns(ct ContentType) map[string]any {
	cols := map[string]any{}
	for _, f := range in.stringFields(ct) {
		if f.value != nil {
			cols[f.column] = strings.TrimSpace(*f.value)
		}
	}
	if ct == ContentExperience && in.Achievements != nil {
		cols["achievements"] = datatypes.JSONSlice[string](cleanList(in.Achievements))
	}
	return cols
}

func (in *TranslationInput) BlogPost(key TranslationKey) *BlogPostTranslation {
	return &BlogPostTranslation{
		TranslationKey:  key,
		Title:           str(in.Title),
		Excerpt:         str(in.Excerpt),
		Content:         str(in.Content),
		MetaTitle:       str(in.MetaTitle),
		MetaDescription: str(in.MetaDescription),
	}
}

func (in *TranslationInput) Project(key TranslationKey) *ProjectTranslation {
	return &ProjectTranslation{
		TranslationKey:  key,
		Title:           str(in.Title),
		Description:     str(in.Description),
		LongDescription: str(in.LongDescription),
	}
}

func (in *TranslationInput) Experience(key TranslationKey) *ExperienceTranslation {
	return &ExperienceTranslation{
		TranslationKey: key,
		Position:       str(in.Position),
		Company:        str(in.Company),
		Location:       str(in.Location),
		Description:    str(in.Description),
		Achievements:   datatypes.JSONSlice[string](cleanList(in.Achievements)),
	}
}

func (in *TranslationInput) Education(key TranslationKey) *EducationTranslation {
	return &EducationTranslation{
		TranslationKey: key,
		Institution:    str(in.Institution),
		Degree:         str(in.Degree),
		FieldOfStudy:   str(in.FieldOfStudy),
		Description:    str(in.Description),
	}
}

func (in *TranslationInput) Testimonial(key TranslationKey) *TestimonialTranslation {
	return &TestimonialTranslation{
		TranslationKey: key,
		Content:        str(in.Content),
		AuthorPosition: str(in.AuthorPosition),
	}
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

func jsonName(column string) string {
	parts := strings.Split(column, "_")
	for i := 1; i < len(parts); i++ {
		parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
	}
	return strings.Join(parts, "")
}
