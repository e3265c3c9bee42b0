package shared

import (
	"context"
)

// Specification encapsulates a query rule over aggregates of type T.
// In-memory repositories call IsSatisfiedBy; SQL repositories translate
// known specification types into WHERE clauses.
type Specification[T any] interface {
	IsSatisfiedBy(ctx context.Context, candidate T) bool
}

// AndSpecification logical AND of two specifications
type AndSpecification[T any] struct {
	Left  Specification[T]
	Right Specification[T]
}

func (spec AndSpecification[T]) IsSatisfiedBy(ctx context.Context, candidate T) bool {
	return spec.Left.IsSatisfiedBy(ctx, candidate) && spec.Right.IsSatisfiedBy(ctx, candidate)
}

func And[T any](left, right Specification[T]) Specification[T] {
	return AndSpecification[T]{Left: left, Right: right}
}

// OrSpecification logical OR of two specifications
type OrSpecification[T any] struct {
	Left  Specification[T]
	Right Specification[T]
}

func (spec OrSpecification[T]) IsSatisfiedBy(ctx context.Context, candidate T) bool {
	return spec.Left.IsSatisfiedBy(ctx, candidate) || spec.Right.IsSatisfiedBy(ctx, candidate)
}

func Or[T any](left, right Specification[T]) Specification[T] {
	return OrSpecification[T]{Left: left, Right: right}
}

// NotSpecification negates a specification
type NotSpecification[T any] struct {
	Spec Specification[T]
}

func (spec NotSpecification[T]) IsSatisfiedBy(ctx context.Context, candidate T) bool {
	return !spec.Spec.IsSatisfiedBy(ctx, candidate)
}

func Not[T any](inner Specification[T]) Specification[T] {
	return NotSpecification[T]{Spec: inner}
}

// Satisfies treats a nil specification as "match everything".
func Satisfies[T any](ctx context.Context, spec Specification[T], candidate T) bool {
	if spec == nil {
		return true
	}
	return spec.IsSatisfiedBy(ctx, candidate)
}
