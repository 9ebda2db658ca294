package models

// Term is the shape shared by every taxonomy table.
type Term struct {
	Model
	UserID       string `gorm:"size:36;not null;index" json:"userId"`
	Name         string `gorm:"size:100;not null" json:"name" validate:"required,max=100"`
	Slug         string `gorm:"size:100;uniqueIndex;not null" json:"slug" validate:"required,max=100,slug"`
	Description  string `gorm:"size:500" json:"description" validate:"max=500"`
	Color        string `gorm:"size:7" json:"color" validate:"omitempty,hexcolor"`
	Icon         string `gorm:"size:100" json:"icon" validate:"max=100"`
	Visible      bool   `gorm:"not null;index" json:"visible"`
	DisplayOrder int    `gorm:"not null;default:0" json:"displayOrder"`
}

// GetTerm gives generic code access to the shared columns.
func (t *Term) GetTerm() *Term {
	return t
}

type Tag struct {
	Term
}

type Category struct {
	Term
}

type Framework struct {
	Term
	WebsiteURL string `json:"websiteUrl" validate:"omitempty,url"`
}

// ProgrammingLanguage is a taxonomy term, unrelated to LanguageCode.
type ProgrammingLanguage struct {
	Term
}
