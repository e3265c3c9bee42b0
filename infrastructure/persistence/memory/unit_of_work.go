package memory

import (
	"context"
	"sync"

	"ddd-commerce/domain/shared"
	"ddd-commerce/infrastructure/persistence/retry"
	"ddd-commerce/pkg/logger"

	"go.uber.org/zap"
)

type journalKey struct{}

// journal undo log of one unit of work
type journal struct {
	mu    sync.Mutex
	undos []func()
}

func (j *journal) record(undo func()) {
	j.mu.Lock()
	j.undos = append(j.undos, undo)
	j.mu.Unlock()
}

// rollback undoes writes newest first and reports how many it undid
func (j *journal) rollback() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := len(j.undos)
	for i := n - 1; i >= 0; i-- {
		j.undos[i]()
	}
	j.undos = nil
	return n
}

func journalFromContext(ctx context.Context) *journal {
	j, _ := ctx.Value(journalKey{}).(*journal)
	return j
}

// UnitOfWork serialises units of work and restores every write made
// through ctx when fn fails.
type UnitOfWork struct {
	mu          sync.Mutex
	retryConfig retry.Config
}

func NewUnitOfWork(retryConfig retry.Config) *UnitOfWork {
	return &UnitOfWork{retryConfig: retryConfig}
}

func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if journalFromContext(ctx) != nil {
		return fn(ctx)
	}

	return retry.ExecuteWithRetry(ctx, u.retryConfig, func(ctx context.Context) error {
		u.mu.Lock()
		defer u.mu.Unlock()

		j := &journal{}
		txCtx := context.WithValue(context.WithoutCancel(ctx), journalKey{}, j)
		if err := fn(txCtx); err != nil {
			logger.FromContext(ctx).Debug("Unit of work rolled back",
				zap.Int("undone_writes", j.rollback()),
				zap.Error(err))
			return err
		}
		return nil
	})
}

var _ shared.UnitOfWork = (*UnitOfWork)(nil)
