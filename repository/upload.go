package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"folio/models"
)

type UploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) Create(ctx context.Context, u *models.Upload) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UploadRepository) FindByID(ctx context.Context, id string) (*models.Upload, error) {
	var u models.Upload
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UploadRepository) List(ctx context.Context, userID string, p Pagination) (*Page[models.Upload], error) {
	p = p.normalized()
	q := r.db.WithContext(ctx).Model(&models.Upload{})
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	items := []models.Upload{}
	err := q.Order("created_at DESC").Limit(p.Limit).Offset((p.Page - 1) * p.Limit).Find(&items).Error
	if err != nil {
		return nil, err
	}
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return &Page[models.Upload]{Items: items, Total: total, Page: p.Page, Limit: p.Limit, TotalPages: pages}, nil
}

func (r *UploadRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Upload{})
	return res.RowsAffected > 0, res.Error
}
