package po

import (
	"time"

	"ddd-commerce/domain/order"
	"ddd-commerce/domain/shared"

	"github.com/shopspring/decimal"
)

// OrderPO Order persistence object
// Defining GORM associations is prohibited here
type OrderPO struct {
	ID             string          `gorm:"primaryKey;size:64"`
	CustomerID     string          `gorm:"size:64;index;not null"` // Only store ID, no association with User
	Status         string          `gorm:"size:20;index;not null"`
	CancelReason   string          `gorm:"size:255"`
	MaxTotalWeight decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	MaxLineWeight  decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Version        int             `gorm:"not null;default:0"`
	CreatedAt      time.Time       `gorm:"index"`
	UpdatedAt      time.Time
}

func (OrderPO) TableName() string {
	return "orders"
}

// LineItemPO Order line persistence object
type LineItemPO struct {
	ID           string          `gorm:"primaryKey;size:64"`
	OrderID      string          `gorm:"size:64;index;not null"` // Only store ID, no GORM association
	ProductID    string          `gorm:"size:64;not null"`
	ProductName  string          `gorm:"size:255;not null"`
	UnitWeight   decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	UnitCurrency string          `gorm:"size:3;not null"`
	Quantity     int             `gorm:"not null"`
	Position     int             `gorm:"not null"`
}

func (LineItemPO) TableName() string {
	return "order_line_items"
}

// FromOrderDomain Convert domain model to persistence objects
func FromOrderDomain(o *order.Order) (*OrderPO, []LineItemPO) {
	snap := o.Snapshot()
	orderPO := &OrderPO{
		ID:             snap.ID,
		CustomerID:     snap.CustomerID,
		Status:         string(snap.Status),
		CancelReason:   snap.CancelReason,
		MaxTotalWeight: snap.Policy.MaxTotal.Value(),
		MaxLineWeight:  snap.Policy.MaxLine.Value(),
		Version:        snap.Version,
		CreatedAt:      snap.CreatedAt,
		UpdatedAt:      snap.UpdatedAt,
	}

	itemPOs := make([]LineItemPO, len(snap.Items))
	for i, item := range snap.Items {
		itemPOs[i] = LineItemPO{
			ID:           item.ID,
			OrderID:      snap.ID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			UnitWeight:   item.UnitWeight.Value(),
			UnitPrice:    item.UnitPrice.Amount(),
			UnitCurrency: item.UnitPrice.Currency(),
			Quantity:     item.Quantity,
			Position:     i,
		}
	}
	return orderPO, itemPOs
}

// ToDomain itemPOs must be ordered by Position
func (po *OrderPO) ToDomain(itemPOs []LineItemPO) (*order.Order, error) {
	policy, err := order.NewWeightPolicy(po.MaxTotalWeight, po.MaxLineWeight)
	if err != nil {
		return nil, err
	}

	items := make([]order.LineItemReconstructionDTO, len(itemPOs))
	for i, itemPO := range itemPOs {
		weight, err := shared.NewWeight(itemPO.UnitWeight)
		if err != nil {
			return nil, err
		}
		price, err := shared.NewPrice(itemPO.UnitPrice, itemPO.UnitCurrency)
		if err != nil {
			return nil, err
		}
		items[i] = order.LineItemReconstructionDTO{
			ID:          itemPO.ID,
			ProductID:   itemPO.ProductID,
			ProductName: itemPO.ProductName,
			UnitWeight:  weight,
			UnitPrice:   price,
			Quantity:    itemPO.Quantity,
		}
	}

	return order.RebuildFromDTO(order.ReconstructionDTO{
		ID:           po.ID,
		CustomerID:   po.CustomerID,
		Items:        items,
		Policy:       policy,
		Status:       order.Status(po.Status),
		CancelReason: po.CancelReason,
		Version:      po.Version,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}), nil
}
