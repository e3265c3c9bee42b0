package product

import (
	"ddd-commerce/domain/shared"
)

// Stock Entity inside the Product aggregate.
// Identity is the location; a product holds at most one stock per location.
// Stock values handed out by Product are copies, so the only way to change
// a quantity is through the Product methods.
type Stock struct {
	location shared.Location
	quantity int
}

// StockSpec input for creating or rebuilding a stock
type StockSpec struct {
	Location shared.Location
	Quantity int
}

func newStock(spec StockSpec) (Stock, error) {
	if spec.Quantity < 0 {
		return Stock{}, newInvalidQuantityError(spec.Quantity, "stock quantity must not be negative")
	}
	return Stock{location: spec.Location, quantity: spec.Quantity}, nil
}

func (s Stock) increase(n int) (Stock, error) {
	if n <= 0 {
		return s, newInvalidQuantityError(n, "increase amount must be positive")
	}
	return Stock{location: s.location, quantity: s.quantity + n}, nil
}

func (s Stock) decrease(n int) (Stock, error) {
	if n <= 0 {
		return s, newInvalidQuantityError(n, "decrease amount must be positive")
	}
	if n > s.quantity {
		return s, newInsufficientStockError(s.location, s.quantity, n)
	}
	return Stock{location: s.location, quantity: s.quantity - n}, nil
}

func (s Stock) ID() string                { return s.location.Key() }
func (s Stock) Location() shared.Location { return s.location }
func (s Stock) Quantity() int             { return s.quantity }
