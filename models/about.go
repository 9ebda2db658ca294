package models

// AboutItem holds the columns every "about me" section shares.
type AboutItem struct {
	Model
	UserID       string `gorm:"size:36;not null;index" json:"userId"`
	Name         string `gorm:"size:200;not null" json:"name" validate:"required,max=200"`
	Description  string `gorm:"type:text" json:"description"`
	ImageURL     string `json:"imageUrl" validate:"omitempty,url"`
	Visible      bool   `gorm:"not null;index" json:"visible"`
	DisplayOrder int    `gorm:"not null;default:0" json:"displayOrder"`
}

func (a *AboutItem) GetItem() *AboutItem {
	return a
}

type Hobby struct {
	AboutItem
	Icon string `gorm:"size:100" json:"icon"`
}

type Anime struct {
	AboutItem
	Status   string `gorm:"size:20" json:"status" validate:"omitempty,oneof=watching completed planned dropped"`
	Episodes int    `json:"episodes" validate:"min=0"`
	Rating   int    `json:"rating" validate:"min=0,max=10"`
}

type Book struct {
	AboutItem
	Author string `gorm:"size:200" json:"author" validate:"max=200"`
	Status string `gorm:"size:20" json:"status" validate:"omitempty,oneof=reading completed planned dropped"`
	Rating int    `json:"rating" validate:"min=0,max=5"`
}

type Game struct {
	AboutItem
	Platform    string `gorm:"size:100" json:"platform" validate:"max=100"`
	HoursPlayed int    `json:"hoursPlayed" validate:"min=0"`
	Favorite    bool   `gorm:"not null" json:"favorite"`
}

type Music struct {
	AboutItem
	Artist string `gorm:"size:200" json:"artist" validate:"max=200"`
	Genre  string `gorm:"size:100" json:"genre" validate:"max=100"`
	URL    string `json:"url" validate:"omitempty,url"`
}

type Instrument struct {
	AboutItem
	Level        string `gorm:"size:20" json:"level" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	YearsPlaying int    `json:"yearsPlaying" validate:"min=0"`
}

// SpokenLanguage is a human language the owner speaks.
type SpokenLanguage struct {
	AboutItem
	Proficiency string `gorm:"size:20" json:"proficiency" validate:"omitempty,oneof=basic conversational fluent native"`
	Native      bool   `gorm:"not null" json:"native"`
}

type MartialArt struct {
	AboutItem
	Rank            string `gorm:"column:belt_rank;size:50" json:"rank" validate:"max=50"`
	YearsPracticing int    `json:"yearsPracticing" validate:"min=0"`
}
