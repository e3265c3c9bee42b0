package shared

import "context"

// UnitOfWork runs fn as one atomic unit: every repository call made with the
// ctx passed to fn either commits together or is rolled back together.
//
// Implementations may re-run fn when it fails with a retryable error (for
// example a concurrent modification), so fn must reload the aggregates it
// mutates instead of capturing them from outside.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}
