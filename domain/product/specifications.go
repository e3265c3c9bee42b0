package product

import (
	"context"
	"strings"

	"ddd-commerce/domain/shared"

	"github.com/shopspring/decimal"
)

// ByNameSpecification exact name match
type ByNameSpecification struct {
	Name string
}

func (spec ByNameSpecification) IsSatisfiedBy(ctx context.Context, entity *Product) bool {
	return entity.Name() == strings.TrimSpace(spec.Name)
}

// ByNameContainsSpecification case-insensitive substring match
type ByNameContainsSpecification struct {
	Fragment string
}

func (spec ByNameContainsSpecification) IsSatisfiedBy(ctx context.Context, entity *Product) bool {
	return strings.Contains(strings.ToLower(entity.Name()), strings.ToLower(spec.Fragment))
}

// InStockSpecification products with at least one unit anywhere
type InStockSpecification struct{}

func (spec InStockSpecification) IsSatisfiedBy(ctx context.Context, entity *Product) bool {
	return entity.TotalQuantity() > 0
}

// PriceAtMostSpecification price in Currency not above Amount
type PriceAtMostSpecification struct {
	Amount   decimal.Decimal
	Currency string
}

func (spec PriceAtMostSpecification) IsSatisfiedBy(ctx context.Context, entity *Product) bool {
	price := entity.Price()
	return price.Currency() == strings.ToUpper(spec.Currency) && price.Amount().LessThanOrEqual(spec.Amount)
}

func NewByNameSpecification(name string) shared.Specification[*Product] {
	return ByNameSpecification{Name: name}
}

func NewByNameContainsSpecification(fragment string) shared.Specification[*Product] {
	return ByNameContainsSpecification{Fragment: fragment}
}

func NewInStockSpecification() shared.Specification[*Product] {
	return InStockSpecification{}
}

func NewPriceAtMostSpecification(amount decimal.Decimal, currency string) shared.Specification[*Product] {
	return PriceAtMostSpecification{Amount: amount, Currency: currency}
}
