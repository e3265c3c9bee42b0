package order

import (
	"ddd-commerce/domain/product"
	"ddd-commerce/domain/shared"
)

// ProductRef what an order keeps of a product: its id plus the weight and
// price at the time the line was added. Orders never hold a *product.Product.
type ProductRef struct {
	ID     string
	Name   string
	Weight shared.Weight
	Price  shared.Price
}

// RefOf snapshots a product for use in a line item.
func RefOf(p *product.Product) ProductRef {
	return ProductRef{
		ID:     p.ID(),
		Name:   p.Name(),
		Weight: p.Weight(),
		Price:  p.Price(),
	}
}

// LineSpec input for one line item
type LineSpec struct {
	Product  ProductRef
	Quantity int
}

// LineItem Entity within the Order aggregate, identified by id; one per product.
type LineItem struct {
	id          string
	productID   string
	productName string
	unitWeight  shared.Weight
	unitPrice   shared.Price
	quantity    int
}

// Weight unit weight × quantity
func (item LineItem) Weight() shared.Weight {
	w, err := item.unitWeight.Multiply(item.quantity)
	if err != nil {
		return shared.Weight{}
	}
	return w
}

// Subtotal unit price × quantity
func (item LineItem) Subtotal() shared.Money {
	m, err := item.unitPrice.Times(item.quantity)
	if err != nil {
		return shared.Money{}
	}
	return m
}

func (item LineItem) ID() string                { return item.id }
func (item LineItem) ProductID() string         { return item.productID }
func (item LineItem) ProductName() string       { return item.productName }
func (item LineItem) UnitWeight() shared.Weight { return item.unitWeight }
func (item LineItem) UnitPrice() shared.Price   { return item.unitPrice }
func (item LineItem) Quantity() int             { return item.quantity }

// LineItemReconstructionDTO ⚠️ repository implementations only
type LineItemReconstructionDTO struct {
	ID          string
	ProductID   string
	ProductName string
	UnitWeight  shared.Weight
	UnitPrice   shared.Price
	Quantity    int
}

func (item LineItem) snapshot() LineItemReconstructionDTO {
	return LineItemReconstructionDTO{
		ID:          item.id,
		ProductID:   item.productID,
		ProductName: item.productName,
		UnitWeight:  item.unitWeight,
		UnitPrice:   item.unitPrice,
		Quantity:    item.quantity,
	}
}

func rebuildLineItem(dto LineItemReconstructionDTO) LineItem {
	return LineItem{
		id:          dto.ID,
		productID:   dto.ProductID,
		productName: dto.ProductName,
		unitWeight:  dto.UnitWeight,
		unitPrice:   dto.UnitPrice,
		quantity:    dto.Quantity,
	}
}
