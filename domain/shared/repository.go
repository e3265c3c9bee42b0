package shared

import "context"

// Repository is the persistence contract every aggregate repository offers.
//
// Lookups that find nothing return a KindNotFound DomainError, never (nil, nil).
// Update fails with KindConflict when the stored version is not the one the
// aggregate was loaded with, and advances the version on success.
type Repository[T AggregateRoot] interface {
	// NextIdentity generates a new aggregate id
	NextIdentity() string

	Create(ctx context.Context, aggregate T) error

	FindByID(ctx context.Context, id string) (T, error)

	// FindOne returns the first aggregate matching spec
	FindOne(ctx context.Context, spec Specification[T]) (T, error)

	// FindAll returns every aggregate matching spec; a nil spec matches all
	FindAll(ctx context.Context, spec Specification[T]) ([]T, error)

	Update(ctx context.Context, aggregate T) error

	Delete(ctx context.Context, id string) error
}
