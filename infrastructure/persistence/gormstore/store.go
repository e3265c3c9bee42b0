package gormstore

import (
	"context"
	"errors"
	"strings"

	"ddd-commerce/domain/shared"
	"ddd-commerce/infrastructure/persistence"
	apperrors "ddd-commerce/pkg/errors"

	"gorm.io/gorm"
)

// store the part every repository shares
type store struct {
	db *gorm.DB
}

// getDB returns the transaction from context if available, otherwise the default db
func (s store) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return s.db.WithContext(ctx)
}

// write runs fn in the UoW transaction if there is one, otherwise in its own.
// A write that has started is not interrupted by the caller's cancellation.
func (s store) write(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return fn(tx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var fnErr error
	err := s.db.WithContext(context.WithoutCancel(ctx)).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(tx)
		return fnErr
	})
	if err != nil && fnErr == nil {
		return apperrors.Unavailable(op, err)
	}
	return err
}

// storeErr wraps driver failures; domain and application errors pass through.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	var ae *apperrors.AppError
	if errors.As(err, &de) || errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperrors.Unavailable(op, err)
}

// corrupt stored row that no longer passes value-object validation
func corrupt(op string, err error) error {
	appErr := apperrors.Wrap(err, apperrors.KindInternal, apperrors.CodeInternal, "stored data is invalid")
	appErr.Op = op
	return appErr
}

func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Duplicate entry") ||
		strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "23505")
}

// versionConflict distinguishes "row gone" from "row moved on" after an
// update matched nothing.
func versionConflict(tx *gorm.DB, model any, id string, notFound, conflict func(string) error) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFound(id)
	}
	return conflict(id)
}
