package models

import (
	"time"

	"gorm.io/datatypes"
)

// ContentType names the translatable content tables.
type ContentType string

const (
	ContentBlogPost    ContentType = "blog_post"
	ContentProject     ContentType = "project"
	ContentExperience  ContentType = "experience"
	ContentEducation   ContentType = "education"
	ContentTestimonial ContentType = "testimonial"
)

var ContentTypes = []ContentType{
	ContentBlogPost,
	ContentProject,
	ContentExperience,
	ContentEducation,
	ContentTestimonial,
}

// ParseContentType accepts the canonical names plus the plural and hyphenated
// forms used in URLs.
func ParseContentType(s string) (ContentType, bool) {
	switch s {
	case "blog_post", "blog-post", "blog", "posts":
		return ContentBlogPost, true
	case "project", "projects":
		return ContentProject, true
	case "experience", "experiences":
		return ContentExperience, true
	case "education", "educations":
		return ContentEducation, true
	case "testimonial", "testimonials":
		return ContentTestimonial, true
	}
	return "", false
}

type BlogPost struct {
	Model
	UserID          string     `gorm:"size:36;not null;index" json:"userId"`
	Title           string     `gorm:"size:200;not null" json:"title" validate:"required,max=200"`
	Slug            string     `gorm:"size:200;uniqueIndex;not null" json:"slug" validate:"required,max=200,slug"`
	Excerpt         string     `gorm:"size:500" json:"excerpt" validate:"max=500"`
	Content         string     `gorm:"type:text;not null" json:"content" validate:"required"`
	CoverImage      string     `json:"coverImage" validate:"omitempty,url"`
	MetaTitle       string     `gorm:"size:200" json:"metaTitle" validate:"max=200"`
	MetaDescription string     `gorm:"size:300" json:"metaDescription" validate:"max=300"`
	CategoryID      *string    `gorm:"size:36;index" json:"categoryId"`
	Category        *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty" validate:"-"`
	Tags            []Tag      `gorm:"many2many:blog_post_tags" json:"tags"`
	Published       bool       `gorm:"not null;index" json:"published"`
	PublishedAt     *time.Time `json:"publishedAt"`
	Featured        bool       `gorm:"not null;index" json:"featured"`
	Visible         bool       `gorm:"not null;index" json:"visible"`
	ViewCount       int64      `gorm:"not null;default:0" json:"viewCount"`
	ReadingTime     int        `gorm:"not null;default:0" json:"readingTime"`
	DisplayOrder    int        `gorm:"not null;default:0" json:"displayOrder"`
}

type ProjectStatus string

const (
	ProjectPlanned    ProjectStatus = "planned"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectArchived   ProjectStatus = "archived"
)

type Project struct {
	Model
	UserID          string                      `gorm:"size:36;not null;index" json:"userId"`
	Title           string                      `gorm:"size:200;not null" json:"title" validate:"required,max=200"`
	Slug            string                      `gorm:"size:200;uniqueIndex;not null" json:"slug" validate:"required,max=200,slug"`
	Description     string                      `gorm:"size:1000;not null" json:"description" validate:"required,max=1000"`
	LongDescription string                      `gorm:"type:text" json:"longDescription"`
	ImageURL        string                      `json:"imageUrl" validate:"omitempty,url"`
	Gallery         datatypes.JSONSlice[string] `gorm:"not null;default:'[]'" json:"gallery"`
	RepositoryURL   string                      `json:"repositoryUrl" validate:"omitempty,url"`
	LiveURL         string                      `json:"liveUrl" validate:"omitempty,url"`
	Status          ProjectStatus               `gorm:"size:20;not null;index" json:"status" validate:"oneof=planned in_progress completed archived"`
	StartDate       *time.Time                  `json:"startDate"`
	EndDate         *time.Time                  `json:"endDate"`
	Tags            []Tag                       `gorm:"many2many:project_tags" json:"tags"`
	Frameworks      []Framework                 `gorm:"many2many:project_frameworks" json:"frameworks"`
	Languages       []ProgrammingLanguage       `gorm:"many2many:project_languages" json:"languages"`
	Published       bool                        `gorm:"not null;index" json:"published"`
	PublishedAt     *time.Time                  `json:"publishedAt"`
	Featured        bool                        `gorm:"not null;index" json:"featured"`
	Visible         bool                        `gorm:"not null;index" json:"visible"`
	DisplayOrder    int                         `gorm:"not null;default:0" json:"displayOrder"`
}

type Experience struct {
	Model
	UserID         string                      `gorm:"size:36;not null;index" json:"userId"`
	Company        string                      `gorm:"size:200;not null" json:"company" validate:"required,max=200"`
	Position       string                      `gorm:"size:200;not null" json:"position" validate:"required,max=200"`
	Location       string                      `gorm:"size:200" json:"location" validate:"max=200"`
	EmploymentType string                      `gorm:"size:50" json:"employmentType" validate:"max=50"`
	Description    string                      `gorm:"type:text" json:"description"`
	Achievements   datatypes.JSONSlice[string] `gorm:"not null;default:'[]'" json:"achievements"`
	CompanyURL     string                      `json:"companyUrl" validate:"omitempty,url"`
	LogoURL        string                      `json:"logoUrl" validate:"omitempty,url"`
	StartDate      time.Time                   `gorm:"not null" json:"startDate"`
	EndDate        *time.Time                  `json:"endDate"`
	Current        bool                        `gorm:"column:is_current;not null" json:"current"`
	Visible        bool                        `gorm:"not null;index" json:"visible"`
	DisplayOrder   int                         `gorm:"not null;default:0" json:"displayOrder"`
}

type Education struct {
	Model
	UserID       string     `gorm:"size:36;not null;index" json:"userId"`
	Institution  string     `gorm:"size:200;not null" json:"institution" validate:"required,max=200"`
	Degree       string     `gorm:"size:200;not null" json:"degree" validate:"required,max=200"`
	FieldOfStudy string     `gorm:"size:200" json:"fieldOfStudy" validate:"max=200"`
	Description  string     `gorm:"type:text" json:"description"`
	Grade        string     `gorm:"size:50" json:"grade" validate:"max=50"`
	LogoURL      string     `json:"logoUrl" validate:"omitempty,url"`
	StartDate    time.Time  `gorm:"not null" json:"startDate"`
	EndDate      *time.Time `json:"endDate"`
	Current      bool       `gorm:"column:is_current;not null" json:"current"`
	Visible      bool       `gorm:"not null;index" json:"visible"`
	DisplayOrder int        `gorm:"not null;default:0" json:"displayOrder"`
}

type Testimonial struct {
	Model
	UserID         string `gorm:"size:36;not null;index" json:"userId"`
	AuthorName     string `gorm:"size:100;not null" json:"authorName" validate:"required,max=100"`
	AuthorPosition string `gorm:"size:100" json:"authorPosition" validate:"max=100"`
	AuthorCompany  string `gorm:"size:100" json:"authorCompany" validate:"max=100"`
	AuthorImage    string `json:"authorImage" validate:"omitempty,url"`
	AuthorEmail    string `gorm:"size:255" json:"authorEmail,omitempty" validate:"omitempty,email"`
	Content        string `gorm:"type:text;not null" json:"content" validate:"required"`
	Rating         int    `gorm:"not null" json:"rating" validate:"min=1,max=5"`
	Featured       bool   `gorm:"not null;index" json:"featured"`
	Visible        bool   `gorm:"not null;index" json:"visible"`
	DisplayOrder   int    `gorm:"not null;default:0" json:"displayOrder"`
}
