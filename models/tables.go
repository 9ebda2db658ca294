package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Model is embedded by every table keyed by a generated UUID.
type Model struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *Model) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m Model) GetID() string {
	return m.ID
}

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// CanEdit reports whether the role may manage content.
func (r Role) CanEdit() bool {
	return r == RoleAdmin || r == RoleEditor
}

type User struct {
	Model
	Email             string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Username          string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	PasswordHash      string     `gorm:"not null" json:"-"`
	Name              string     `gorm:"size:100" json:"name"`
	Bio               string     `gorm:"type:text" json:"bio"`
	AvatarURL         string     `json:"avatarUrl"`
	Role              Role       `gorm:"size:20;not null" json:"role"`
	Active            bool       `gorm:"not null" json:"active"`
	Verified          bool       `gorm:"not null" json:"verified"`
	VerificationToken string     `gorm:"size:64;index" json:"-"`
	LastLogin         *time.Time `json:"lastLogin"`
}

// Session backs a refresh token. Only the SHA-256 of the token is stored.
type Session struct {
	Model
	UserID    string    `gorm:"size:36;not null;index" json:"userId"`
	TokenHash string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`
	Active    bool      `gorm:"not null;index" json:"active"`
	UserAgent string    `json:"userAgent"`
	IP        string    `gorm:"size:64" json:"ip"`
}

// Expired reports whether the session can no longer be used at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type Upload struct {
	Model
	UserID       string `gorm:"size:36;not null;index" json:"userId"`
	Filename     string `json:"filename"`
	Key          string `gorm:"column:object_key;size:255;uniqueIndex;not null" json:"key"`
	URL          string `json:"url"`
	ThumbnailKey string `json:"-"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	ContentType  string `gorm:"size:100" json:"contentType"`
	Size         int64  `json:"size"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
}
