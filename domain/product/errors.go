package product

import (
	"errors"
	"fmt"

	"ddd-commerce/domain/shared"
)

// Sentinels for errors.Is; every error below is a shared.DomainError.
var (
	ErrInvalidProductID  = errors.New("product id cannot be empty")
	ErrInvalidName       = errors.New("product name cannot be empty")
	ErrNonPositiveWeight = errors.New("product weight must be positive")
	ErrNoStock           = errors.New("product must have at least one stock")
	ErrDuplicateLocation = errors.New("stock location already exists")
	ErrStockNotFound     = errors.New("stock not found")
	ErrInvalidQuantity   = errors.New("invalid stock quantity")
	ErrInsufficientStock = errors.New("insufficient stock")
)

func NewProductNotFoundError(productID string) error {
	return shared.NewNotFoundError("product", productID)
}

func NewConcurrentModificationError(productID string) error {
	return shared.NewConcurrentModificationError("product", productID)
}

func newInvalidProductIDError() error {
	return shared.WithSentinel(
		shared.NewInvariantError("product", "id_required", "product id cannot be empty"), ErrInvalidProductID)
}

func newInvalidNameError() error {
	return shared.WithSentinel(
		shared.NewValidationError("product", "name", "product name cannot be empty"), ErrInvalidName)
}

func newNonPositiveWeightError(w shared.Weight) error {
	return shared.WithSentinel(
		shared.NewInvariantError("product", "positive_weight", "product weight must be positive, got: "+w.String()),
		ErrNonPositiveWeight)
}

func newNoStockError() error {
	return shared.WithSentinel(
		shared.NewInvariantError("product", "min_one_stock", "product must have at least one stock"), ErrNoStock)
}

func newDuplicateLocationError(loc shared.Location) error {
	return shared.WithSentinel(
		shared.NewDuplicateError("product", "location", "stock already exists at location "+loc.Key()),
		ErrDuplicateLocation)
}

func newStockNotFoundError(loc shared.Location) error {
	return shared.WithSentinel(
		shared.NewInvariantError("product", "stock_exists", "no stock at location "+loc.Key()), ErrStockNotFound)
}

func newInvalidQuantityError(qty int, reason string) error {
	return shared.WithSentinel(
		shared.NewValidationError("stock", "quantity", fmt.Sprintf("%s, got: %d", reason, qty)), ErrInvalidQuantity)
}

func newInsufficientStockError(loc shared.Location, have, want int) error {
	return shared.WithSentinel(
		shared.NewInvariantError("stock", "non_negative_quantity",
			fmt.Sprintf("cannot take %d from stock at %s, only %d left", want, loc.Key(), have)),
		ErrInsufficientStock)
}
