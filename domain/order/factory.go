package order

import (
	"context"

	"ddd-commerce/domain/product"
)

// ProductLookup the read access the factory needs; product.Repository satisfies it.
type ProductLookup interface {
	FindByID(ctx context.Context, id string) (*product.Product, error)
}

// LineRequest a product id and quantity, before the product is resolved
type LineRequest struct {
	ProductID string
	Quantity  int
}

// Factory builds orders from product ids. It loads the referenced products
// so the Order aggregate itself stays free of repositories, then delegates
// to New for the invariant check.
type Factory struct {
	products ProductLookup
	policy   WeightPolicy
}

func NewFactory(products ProductLookup, policy WeightPolicy) *Factory {
	return &Factory{products: products, policy: policy}
}

// Policy the weight policy new orders get
func (f *Factory) Policy() WeightPolicy { return f.policy }

// Create resolves every requested product and builds the order.
func (f *Factory) Create(ctx context.Context, id, customerID string, requests []LineRequest) (*Order, error) {
	lines := make([]LineSpec, 0, len(requests))
	for _, req := range requests {
		line, err := f.ResolveLine(ctx, req)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return New(id, customerID, lines, f.policy)
}

// ResolveLine loads the product for req and snapshots it.
func (f *Factory) ResolveLine(ctx context.Context, req LineRequest) (LineSpec, error) {
	if req.Quantity <= 0 {
		return LineSpec{}, newInvalidQuantityError(req.Quantity)
	}
	p, err := f.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return LineSpec{}, err
	}
	return LineSpec{Product: RefOf(p), Quantity: req.Quantity}, nil
}
