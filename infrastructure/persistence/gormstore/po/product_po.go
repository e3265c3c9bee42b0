package po

import (
	"time"

	"ddd-commerce/domain/product"
	"ddd-commerce/domain/shared"

	"github.com/shopspring/decimal"
)

// ProductPO Product persistence object
// Note: Only used for database mapping, does not contain any business logic
type ProductPO struct {
	ID            string          `gorm:"primaryKey;size:64"`
	Name          string          `gorm:"size:255;index;not null"`
	PriceAmount   decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	PriceCurrency string          `gorm:"size:3;not null"`
	Weight        decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Version       int             `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (ProductPO) TableName() string {
	return "products"
}

// StockPO one warehouse location of a product; no GORM association
type StockPO struct {
	ProductID   string  `gorm:"primaryKey;size:64"`
	LocationKey string  `gorm:"primaryKey;size:64"`
	Longitude   float64 `gorm:"not null"`
	Latitude    float64 `gorm:"not null"`
	Quantity    int     `gorm:"not null"`
	Position    int     `gorm:"not null"`
}

func (StockPO) TableName() string {
	return "product_stocks"
}

// FromProductDomain Convert domain model to persistence objects
func FromProductDomain(p *product.Product) (*ProductPO, []StockPO) {
	snap := p.Snapshot()
	productPO := &ProductPO{
		ID:            snap.ID,
		Name:          snap.Name,
		PriceAmount:   snap.Price.Amount(),
		PriceCurrency: snap.Price.Currency(),
		Weight:        snap.Weight.Value(),
		Version:       snap.Version,
		CreatedAt:     snap.CreatedAt,
		UpdatedAt:     snap.UpdatedAt,
	}

	stockPOs := make([]StockPO, len(snap.Stocks))
	for i, s := range snap.Stocks {
		stockPOs[i] = StockPO{
			ProductID:   snap.ID,
			LocationKey: s.Location.Key(),
			Longitude:   s.Location.Longitude(),
			Latitude:    s.Location.Latitude(),
			Quantity:    s.Quantity,
			Position:    i,
		}
	}
	return productPO, stockPOs
}

// ToDomain stockPOs must be ordered by Position
func (po *ProductPO) ToDomain(stockPOs []StockPO) (*product.Product, error) {
	price, err := shared.NewPrice(po.PriceAmount, po.PriceCurrency)
	if err != nil {
		return nil, err
	}
	weight, err := shared.NewWeight(po.Weight)
	if err != nil {
		return nil, err
	}

	stocks := make([]product.StockSpec, len(stockPOs))
	for i, s := range stockPOs {
		loc, err := shared.NewLocation(s.Longitude, s.Latitude)
		if err != nil {
			return nil, err
		}
		stocks[i] = product.StockSpec{Location: loc, Quantity: s.Quantity}
	}

	return product.RebuildFromDTO(product.ReconstructionDTO{
		ID:        po.ID,
		Name:      po.Name,
		Price:     price,
		Weight:    weight,
		Stocks:    stocks,
		Version:   po.Version,
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
	}), nil
}
