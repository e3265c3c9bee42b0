package order

import (
	"context"
	"time"

	"ddd-commerce/domain/shared"
)

// ByCustomerSpecification filters orders by customer (user) ID
type ByCustomerSpecification struct {
	CustomerID string
}

// IsSatisfiedBy returns true if the order belongs to the specified customer
func (spec ByCustomerSpecification) IsSatisfiedBy(ctx context.Context, entity *Order) bool {
	return entity.CustomerID() == spec.CustomerID
}

// ByStatusSpecification filters orders by status
type ByStatusSpecification struct {
	Status Status
}

// IsSatisfiedBy returns true if the order has the specified status
func (spec ByStatusSpecification) IsSatisfiedBy(ctx context.Context, entity *Order) bool {
	return entity.Status() == spec.Status
}

// ByDateRangeSpecification filters orders by creation date range
// Both Start and End are optional - if zero, they are ignored
type ByDateRangeSpecification struct {
	Start time.Time
	End   time.Time
}

// IsSatisfiedBy returns true if the order was created within the date range
func (spec ByDateRangeSpecification) IsSatisfiedBy(ctx context.Context, entity *Order) bool {
	createdAt := entity.CreatedAt()

	// Check start date (if specified)
	if !spec.Start.IsZero() && createdAt.Before(spec.Start) {
		return false
	}

	// Check end date (if specified)
	if !spec.End.IsZero() && createdAt.After(spec.End) {
		return false
	}

	return true
}

// Helper functions for common specifications

// NewByCustomerSpecification creates a specification to filter by customer
func NewByCustomerSpecification(customerID string) shared.Specification[*Order] {
	return ByCustomerSpecification{CustomerID: customerID}
}

// NewByStatusSpecification creates a specification to filter by status
func NewByStatusSpecification(status Status) shared.Specification[*Order] {
	return ByStatusSpecification{Status: status}
}

// NewByDateRangeSpecification creates a specification to filter by date range
func NewByDateRangeSpecification(start, end time.Time) shared.Specification[*Order] {
	return ByDateRangeSpecification{Start: start, End: end}
}