package gormstore

import (
	"context"

	"ddd-commerce/domain/shared"
	"ddd-commerce/infrastructure/persistence"
	"ddd-commerce/infrastructure/persistence/retry"
	apperrors "ddd-commerce/pkg/errors"
	"ddd-commerce/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UnitOfWork implements the Unit of Work pattern with GORM.
// It holds no per-call state and is safe for concurrent use.
type UnitOfWork struct {
	db          *gorm.DB
	retryConfig retry.Config
}

func NewUnitOfWork(db *gorm.DB, retryConfig retry.Config) *UnitOfWork {
	return &UnitOfWork{db: db, retryConfig: retryConfig}
}

// Execute runs fn inside a database transaction:
//  1. Begins a transaction detached from the caller's cancellation
//  2. Injects the transaction into context for repositories to use
//  3. Commits on success, rolls back on error
//  4. Retries the whole attempt on retryable errors (concurrent modification, deadlocks, etc.)
//
// A call made inside another Execute joins the outer transaction.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if persistence.TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	executeOnce := func(ctx context.Context) error {
		detached := context.WithoutCancel(ctx)

		var fnErr error
		err := u.db.WithContext(detached).Transaction(func(tx *gorm.DB) error {
			fnErr = fn(persistence.ContextWithTx(detached, tx))
			return fnErr
		})
		if err != nil && fnErr == nil {
			logger.FromContext(ctx).Warn("Transaction failed", zap.Error(err))
			return apperrors.Unavailable("uow.Commit", err)
		}
		return err
	}

	return retry.ExecuteWithRetry(ctx, u.retryConfig, executeOnce)
}

// Compile-time check that UnitOfWork implements shared.UnitOfWork
var _ shared.UnitOfWork = (*UnitOfWork)(nil)
