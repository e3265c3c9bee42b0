/*
Package product Product aggregate: a catalog item with a price, a unit weight
and its stock across warehouse locations.

Every mutating method works on the live state, then re-checks all aggregate
invariants; if either step fails the previous state is restored before the
error is returned, so a Product is never observable in an invalid state.
*/
package product

import (
	"strings"
	"time"

	"ddd-commerce/domain/shared"
)

// Product aggregate root
type Product struct {
	id        string
	name      string
	price     shared.Price
	weight    shared.Weight
	stocks    []Stock
	version   int
	createdAt time.Time
	updatedAt time.Time
}

// state mutable part of the aggregate, used for rollback
type state struct {
	name   string
	price  shared.Price
	weight shared.Weight
	stocks []Stock
}

// New Create a Product; runs the full invariant check before returning.
func New(id, name string, price shared.Price, weight shared.Weight, stocks []StockSpec) (*Product, error) {
	p := &Product{
		id:     strings.TrimSpace(id),
		name:   strings.TrimSpace(name),
		price:  price,
		weight: weight,
		stocks: make([]Stock, 0, len(stocks)),
	}
	for _, spec := range stocks {
		s, err := newStock(spec)
		if err != nil {
			return nil, err
		}
		p.stocks = append(p.stocks, s)
	}

	if err := p.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	p.createdAt = now
	p.updatedAt = now
	return p, nil
}

// validate checks every aggregate invariant.
func (p *Product) validate() error {
	if p.id == "" {
		return newInvalidProductIDError()
	}
	if p.name == "" {
		return newInvalidNameError()
	}
	if !p.weight.IsPositive() {
		return newNonPositiveWeightError(p.weight)
	}
	if len(p.stocks) == 0 {
		return newNoStockError()
	}
	seen := make(map[string]struct{}, len(p.stocks))
	for _, s := range p.stocks {
		if _, dup := seen[s.ID()]; dup {
			return newDuplicateLocationError(s.location)
		}
		seen[s.ID()] = struct{}{}
		if s.quantity < 0 {
			return newInvalidQuantityError(s.quantity, "stock quantity must not be negative")
		}
	}
	return nil
}

func (p *Product) capture() state {
	stocks := make([]Stock, len(p.stocks))
	copy(stocks, p.stocks)
	return state{name: p.name, price: p.price, weight: p.weight, stocks: stocks}
}

func (p *Product) restore(s state) {
	p.name = s.name
	p.price = s.price
	p.weight = s.weight
	p.stocks = s.stocks
}

// mutate applies change, re-validates, and rolls back on any failure.
func (p *Product) mutate(change func() error) error {
	before := p.capture()
	if err := change(); err != nil {
		p.restore(before)
		return err
	}
	if err := p.validate(); err != nil {
		p.restore(before)
		return err
	}
	p.updatedAt = time.Now()
	return nil
}

func (p *Product) indexOf(loc shared.Location) int {
	for i, s := range p.stocks {
		if s.location.Equals(loc) {
			return i
		}
	}
	return -1
}

// ============================================================================
// Behavior
// ============================================================================

// AddStock adds a stock at a new location.
// The stock is appended first; the uniqueness check then rejects duplicates.
func (p *Product) AddStock(loc shared.Location, quantity int) error {
	return p.mutate(func() error {
		s, err := newStock(StockSpec{Location: loc, Quantity: quantity})
		if err != nil {
			return err
		}
		p.stocks = append(p.stocks, s)
		return nil
	})
}

// RemoveStock drops the stock at loc. The last stock cannot be removed.
func (p *Product) RemoveStock(loc shared.Location) error {
	return p.mutate(func() error {
		i := p.indexOf(loc)
		if i < 0 {
			return newStockNotFoundError(loc)
		}
		p.stocks = append(p.stocks[:i:i], p.stocks[i+1:]...)
		return nil
	})
}

func (p *Product) IncreaseStock(loc shared.Location, n int) error {
	return p.mutate(func() error {
		i := p.indexOf(loc)
		if i < 0 {
			return newStockNotFoundError(loc)
		}
		s, err := p.stocks[i].increase(n)
		if err != nil {
			return err
		}
		p.stocks[i] = s
		return nil
	})
}

// DecreaseStock fails instead of going below zero.
func (p *Product) DecreaseStock(loc shared.Location, n int) error {
	return p.mutate(func() error {
		i := p.indexOf(loc)
		if i < 0 {
			return newStockNotFoundError(loc)
		}
		s, err := p.stocks[i].decrease(n)
		if err != nil {
			return err
		}
		p.stocks[i] = s
		return nil
	})
}

func (p *Product) ChangePrice(price shared.Price) error {
	return p.mutate(func() error {
		p.price = price
		return nil
	})
}

func (p *Product) Rename(name string) error {
	return p.mutate(func() error {
		p.name = strings.TrimSpace(name)
		return nil
	})
}

// TotalQuantity sum over all locations
func (p *Product) TotalQuantity() int {
	total := 0
	for _, s := range p.stocks {
		total += s.quantity
	}
	return total
}

// IncrementVersionForSave is called by the repository after a successful write.
func (p *Product) IncrementVersionForSave() {
	p.version++
}

// ============================================================================
// Getters
// ============================================================================

func (p *Product) ID() string            { return p.id }
func (p *Product) Name() string          { return p.name }
func (p *Product) Price() shared.Price   { return p.price }
func (p *Product) Weight() shared.Weight { return p.weight }
func (p *Product) Version() int          { return p.version }
func (p *Product) CreatedAt() time.Time  { return p.createdAt }
func (p *Product) UpdatedAt() time.Time  { return p.updatedAt }

// Stocks returns a copy
func (p *Product) Stocks() []Stock {
	stocks := make([]Stock, len(p.stocks))
	copy(stocks, p.stocks)
	return stocks
}

// ============================================================================
// ReconstructionDTO - For Repository Layer Use Only
// ============================================================================

type ReconstructionDTO struct {
	ID        string
	Name      string
	Price     shared.Price
	Weight    shared.Weight
	Stocks    []StockSpec
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Product) Snapshot() ReconstructionDTO {
	stocks := make([]StockSpec, len(p.stocks))
	for i, s := range p.stocks {
		stocks[i] = StockSpec{Location: s.location, Quantity: s.quantity}
	}
	return ReconstructionDTO{
		ID:        p.id,
		Name:      p.name,
		Price:     p.price,
		Weight:    p.weight,
		Stocks:    stocks,
		Version:   p.version,
		CreatedAt: p.createdAt,
		UpdatedAt: p.updatedAt,
	}
}

// RebuildFromDTO ⚠️ repository implementations only
func RebuildFromDTO(dto ReconstructionDTO) *Product {
	stocks := make([]Stock, len(dto.Stocks))
	for i, s := range dto.Stocks {
		stocks[i] = Stock{location: s.Location, quantity: s.Quantity}
	}
	return &Product{
		id:        dto.ID,
		name:      dto.Name,
		price:     dto.Price,
		weight:    dto.Weight,
		stocks:    stocks,
		version:   dto.Version,
		createdAt: dto.CreatedAt,
		updatedAt: dto.UpdatedAt,
	}
}

var _ shared.AggregateRoot = (*Product)(nil)
