package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"folio/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where(query, args...).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByEmail matches case-insensitively; emails are stored lowercased.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", strings.TrimSpace(username))
}

func (r *UserRepository) FindByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	return r.findOne(ctx, "verification_token = ?", token)
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) update(ctx context.Context, id string, fields map[string]any) (bool, error) {
	fields["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	return res.RowsAffected > 0, res.Error
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.update(ctx, id, map[string]any{"last_login": at})
	return err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) (bool, error) {
	return r.update(ctx, id, map[string]any{"password_hash": hash})
}

func (r *UserRepository) MarkVerified(ctx context.Context, id string) (bool, error) {
	return r.update(ctx, id, map[string]any{"verified": true, "verification_token": ""})
}

func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	return r.update(ctx, id, map[string]any{"active": active})
}

// UpdateProfile changes the editable profile columns.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, fields map[string]any) (*models.User, error) {
	if len(fields) > 0 {
		ok, err := r.update(ctx, id, fields)
		if err != nil || !ok {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}
