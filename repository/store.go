package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"folio/common"
)

// Scope narrows a query; scopes compose the way gorm's Scopes do.
type Scope = func(*gorm.DB) *gorm.DB

// OrderUpdate moves one row to a new display position.
type OrderUpdate struct {
	ID    string `json:"id" binding:"required"`
	Order int    `json:"order"`
}

type Pagination struct {
	Page  int
	Limit int
	Sort  string
	Desc  bool
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func (p Pagination) normalized() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// Store is the data access shared by every table that has an id, a
// visible flag and a display_order column.
type Store[T any] struct {
	db       *gorm.DB
	table    string
	preloads []string
	sortable map[string]string
	// dependents removes rows that reference the one being deleted. It runs
	// inside the delete transaction.
	dependents func(tx *gorm.DB, id string) error
}

func newStore[T any](db *gorm.DB, table string, sortable map[string]string, preloads ...string) *Store[T] {
	return &Store[T]{db: db, table: table, sortable: sortable, preloads: preloads}
}

func (s *Store[T]) col(name string) string {
	return s.table + "." + name
}

func (s *Store[T]) query(ctx context.Context) *gorm.DB {
	q := s.db.WithContext(ctx).Model(new(T))
	for _, p := range s.preloads {
		q = q.Preload(p)
	}
	return q
}

func (s *Store[T]) defaultOrder(q *gorm.DB) *gorm.DB {
	return q.Order(s.col("display_order") + " ASC").Order(s.col("created_at") + " DESC")
}

func (s *Store[T]) find(ctx context.Context, scopes ...Scope) ([]T, error) {
	var items []T
	err := s.defaultOrder(s.query(ctx).Scopes(scopes...)).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store[T]) first(ctx context.Context, scopes ...Scope) (*T, error) {
	var item T
	err := s.query(ctx).Scopes(scopes...).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store[T]) where(cond string, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(cond, args...)
	}
}

func (s *Store[T]) FindAll(ctx context.Context) ([]T, error) {
	return s.find(ctx)
}

func (s *Store[T]) FindVisible(ctx context.Context) ([]T, error) {
	return s.find(ctx, s.where(s.col("visible")+" = ?", true))
}

// FindVisibleByOwner lists visible rows, restricted to userID when it is set.
func (s *Store[T]) FindVisibleByOwner(ctx context.Context, userID string) ([]T, error) {
	return s.find(ctx, s.where(s.col("visible")+" = ?", true), s.owner(userID))
}

func (s *Store[T]) owner(userID string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if userID == "" {
			return db
		}
		return db.Where(s.col("user_id")+" = ?", userID)
	}
}

// FindByID returns nil, nil when no row has id.
func (s *Store[T]) FindByID(ctx context.Context, id string) (*T, error) {
	return s.first(ctx, s.where(s.col("id")+" = ?", id))
}

func (s *Store[T]) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (s *Store[T]) Create(ctx context.Context, item *T) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

// Update applies fields to the row and stamps updated_at. It returns nil, nil
// when no row has id.
func (s *Store[T]) Update(ctx context.Context, id string, fields map[string]any) (*T, error) {
	if len(fields) > 0 {
		fields["updated_at"] = time.Now()
		res := s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, nil
		}
	}
	return s.FindByID(ctx, id)
}

// Replace overwrites every column of the row except its identity, owner
// and creation time. It returns nil, nil when no row has id.
func (s *Store[T]) Replace(ctx context.Context, id string, item *T) (*T, error) {
	res := s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).
		Select("*").Omit("id", "user_id", "created_at").
		Updates(item)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return s.FindByID(ctx, id)
}

// Delete removes the row and its dependents in one transaction. It reports
// false when no row has id.
func (s *Store[T]) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.dependents != nil {
			if err := s.dependents(tx, id); err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(new(T))
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// Toggle flips a boolean column and returns the updated row, or nil, nil
// when no row has id.
func (s *Store[T]) Toggle(ctx context.Context, id, column string) (*T, error) {
	res := s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(map[string]any{
		column:       gorm.Expr("NOT " + column),
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return s.FindByID(ctx, id)
}

// UpdateOrder applies every position change or none of them. An unknown id
// aborts the batch with common.ErrNotFound. Existence is checked up front
// since drivers disagree on whether an unchanged row counts as affected.
func (s *Store[T]) UpdateOrder(ctx context.Context, updates []OrderUpdate) error {
	ids := make([]string, len(updates))
	for i, u := range updates {
		ids[i] = u.ID
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []string
		if err := tx.Model(new(T)).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
			return err
		}
		if len(existing) != len(ids) {
			known := make(map[string]bool, len(existing))
			for _, id := range existing {
				known[id] = true
			}
			for _, id := range ids {
				if !known[id] {
					return fmt.Errorf("reorder %s: %w", id, common.ErrNotFound)
				}
			}
		}
		for _, u := range updates {
			if err := tx.Model(new(T)).Where("id = ?", u.ID).UpdateColumn("display_order", u.Order).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Search counts and pages through the rows matching scopes.
func (s *Store[T]) Search(ctx context.Context, p Pagination, scopes ...Scope) (*Page[T], error) {
	p = p.normalized()

	var total int64
	if err := s.db.WithContext(ctx).Model(new(T)).Scopes(scopes...).Count(&total).Error; err != nil {
		return nil, err
	}

	q := s.query(ctx).Scopes(scopes...)
	if column, ok := s.sortable[p.Sort]; ok {
		dir := " ASC"
		if p.Desc {
			dir = " DESC"
		}
		q = q.Order(s.col(column) + dir).Order(s.col("id") + " ASC")
	} else {
		q = s.defaultOrder(q)
	}

	items := []T{}
	err := q.Limit(p.Limit).Offset((p.Page - 1) * p.Limit).Find(&items).Error
	if err != nil {
		return nil, err
	}

	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return &Page[T]{Items: items, Total: total, Page: p.Page, Limit: p.Limit, TotalPages: pages}, nil
}

// textSearch matches q case-insensitively against any of columns.
func (s *Store[T]) textSearch(q string, columns ...string) Scope {
	q = strings.TrimSpace(q)
	pattern := "%" + strings.ToLower(q) + "%"
	return func(db *gorm.DB) *gorm.DB {
		if q == "" {
			return db
		}
		conds := make([]string, len(columns))
		args := make([]any, len(columns))
		for i, c := range columns {
			conds[i] = "LOWER(" + s.col(c) + ") LIKE ?"
			args[i] = pattern
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}

func (s *Store[T]) flag(column string, v *bool) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if v == nil {
			return db
		}
		return db.Where(s.col(column)+" = ?", *v)
	}
}

func (s *Store[T]) equals(column, v string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if v == "" {
			return db
		}
		return db.Where(s.col(column)+" = ?", v)
	}
}

// related keeps rows linked to a term with the given slug through a
// many-to-many join table.
func (s *Store[T]) related(joinTable, ownKey, termTable, termKey, slug string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if slug == "" {
			return db
		}
		sub := s.db.Table(joinTable).
			Select(joinTable+"."+ownKey).
			Joins("JOIN "+termTable+" ON "+termTable+".id = "+joinTable+"."+termKey).
			Where(termTable+".slug = ?", slug)
		return db.Where(s.col("id")+" IN (?)", sub)
	}
}

// removeTranslations and removeJoins build Store.dependents.
func removeTranslations(model any) func(tx *gorm.DB, id string) error {
	return func(tx *gorm.DB, id string) error {
		return tx.Where("content_id = ?", id).Delete(model).Error
	}
}

func removeJoins(table, key string) func(tx *gorm.DB, id string) error {
	return func(tx *gorm.DB, id string) error {
		return tx.Exec("DELETE FROM "+table+" WHERE "+key+" = ?", id).Error
	}
}

func chain(fns ...func(tx *gorm.DB, id string) error) func(tx *gorm.DB, id string) error {
	return func(tx *gorm.DB, id string) error {
		for _, fn := range fns {
			if err := fn(tx, id); err != nil {
				return err
			}
		}
		return nil
	}
}
