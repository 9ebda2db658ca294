package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"folio/models"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// FindByTokenHash returns the session regardless of its state; callers
// decide what inactive or expired means.
func (r *SessionRepository) FindByTokenHash(ctx context.Context, hash string) (*models.Session, error) {
	var s models.Session
	err := r.db.WithContext(ctx).Where("token_hash = ?", hash).Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) FindActiveByUser(ctx context.Context, userID string, now time.Time) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ? AND expires_at > ?", userID, true, now).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

// Deactivate reports false when no active session has hash.
func (r *SessionRepository) Deactivate(ctx context.Context, hash string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Session{}).
		Where("token_hash = ? AND active = ?", hash, true).
		Updates(map[string]any{"active": false, "updated_at": time.Now()})
	return res.RowsAffected > 0, res.Error
}

// DeactivateAllForUser returns how many sessions were still active.
func (r *SessionRepository) DeactivateAllForUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Session{}).
		Where("user_id = ? AND active = ?", userID, true).
		Updates(map[string]any{"active": false, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
