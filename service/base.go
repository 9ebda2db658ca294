package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"folio/common"
	"folio/repository"
)

// Base is embedded by every service. It owns the logger and the validator
// and turns whatever a repository returns into a *common.Error.
type Base struct {
	log      *slog.Logger
	name     string
	validate *common.Validator
}

func NewBase(log *slog.Logger, name string, v *common.Validator) Base {
	if log == nil {
		log = common.DiscardLogger()
	}
	if v == nil {
		v = common.NewValidator()
	}
	return Base{log: log.With("service", name), name: name, validate: v}
}

// fail converts err for the caller. Errors that are already typed pass
// through; everything unexpected is logged with the operation name and
// hidden behind an internal error.
func (b Base) fail(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}

	var ce *common.Error
	switch {
	case errors.As(err, &ce):
		b.log.DebugContext(ctx, "request rejected", "op", op, "kind", ce.Kind, "error", err)
		return ce
	case errors.Is(err, gorm.ErrDuplicatedKey):
		b.log.InfoContext(ctx, "duplicate key", "op", op, "error", err)
		return common.Conflict("A record with the same key already exists")
	case errors.Is(err, repository.ErrUnsupportedLanguage):
		return common.Validation("Unsupported language", "language")
	case errors.Is(err, repository.ErrUnknownContentType):
		return common.Validation("Unknown content type", "contentType")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		b.log.WarnContext(ctx, "request cancelled", "op", op, "error", err)
		return common.Internal(err)
	}

	b.log.ErrorContext(ctx, "operation failed", "op", op, "error", err)
	return common.Internal(err)
}

func (b Base) notFound(noun string) *common.Error {
	return common.NotFound(noun + " not found")
}

// changes collects the columns an update touches while the same values are
// applied to the in-memory model for validation.
type changes map[string]any

func (c changes) str(column string, dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
		c[column] = *dst
	}
}

func (c changes) flag(column string, dst *bool, v *bool) {
	if v != nil {
		*dst = *v
		c[column] = *v
	}
}

func (c changes) num(column string, dst *int, v *int) {
	if v != nil {
		*dst = *v
		c[column] = *v
	}
}

func (c changes) date(column string, dst **time.Time, v *time.Time) {
	if v != nil {
		t := *v
		if t.IsZero() {
			*dst = nil
			c[column] = nil
			return
		}
		*dst = &t
		c[column] = t
	}
}

// ref sets a nullable foreign key; an empty string clears it.
func (c changes) ref(column string, dst **string, v *string) {
	if v != nil {
		id := strings.TrimSpace(*v)
		if id == "" {
			*dst = nil
			c[column] = nil
			return
		}
		*dst = &id
		c[column] = id
	}
}

func trim(s *string) {
	*s = strings.TrimSpace(*s)
}
