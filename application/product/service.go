/*
Package product Application Layer - catalog and stock use cases.

Every use case follows the same shape: build value objects from the
request, load the aggregate inside a unit of work, call one aggregate
method, persist, and map the result to a response DTO. Failures leave
through apperrors.FromDomain with the operation name and the ids involved.
*/
package product

import (
	"context"

	"ddd-commerce/domain/product"
	"ddd-commerce/domain/shared"
	apperrors "ddd-commerce/pkg/errors"
	"ddd-commerce/pkg/logger"

	"go.uber.org/zap"
)

// ApplicationService Product application service
type ApplicationService struct {
	productRepo product.Repository
	uow         shared.UnitOfWork
}

func NewApplicationService(productRepo product.Repository, uow shared.UnitOfWork) *ApplicationService {
	return &ApplicationService{productRepo: productRepo, uow: uow}
}

// CreateProduct Create product
func (s *ApplicationService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	const op = "product.CreateProduct"

	price, err := shared.NewPrice(req.Price, req.Currency)
	if err != nil {
		return nil, apperrors.FromDomain(op, err, nil)
	}
	weight, err := shared.NewWeight(req.Weight)
	if err != nil {
		return nil, apperrors.FromDomain(op, err, nil)
	}
	stocks, err := toStockSpecs(req.Stocks)
	if err != nil {
		return nil, apperrors.FromDomain(op, err, nil)
	}

	var p *product.Product
	err = s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		p, err = product.New(s.productRepo.NextIdentity(), req.Name, price, weight, stocks)
		if err != nil {
			return err
		}
		return s.productRepo.Create(ctx, p)
	})
	if err != nil {
		return nil, apperrors.FromDomain(op, err, map[string]any{"name": req.Name})
	}

	logger.FromContext(ctx).Info("Product created",
		zap.String("product_id", p.ID()),
		zap.String("name", p.Name()))
	return toProductResponse(p), nil
}

// GetProduct Get product information
func (s *ApplicationService) GetProduct(ctx context.Context, productID string) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, apperrors.FromDomain("product.GetProduct", err, map[string]any{"product_id": productID})
	}
	return toProductResponse(p), nil
}

// FindProductByName exact name lookup
func (s *ApplicationService) FindProductByName(ctx context.Context, name string) (*ProductResponse, error) {
	p, err := s.productRepo.FindOne(ctx, product.NewByNameSpecification(name))
	if err != nil {
		return nil, apperrors.FromDomain("product.FindProductByName", err, map[string]any{"name": name})
	}
	return toProductResponse(p), nil
}

// ListProducts combines the query filters with AND.
func (s *ApplicationService) ListProducts(ctx context.Context, query ListProductsQuery) ([]*ProductResponse, error) {
	var spec shared.Specification[*product.Product]
	and := func(next shared.Specification[*product.Product]) {
		if spec == nil {
			spec = next
			return
		}
		spec = shared.And(spec, next)
	}

	if query.NameContains != "" {
		and(product.NewByNameContainsSpecification(query.NameContains))
	}
	if query.InStock {
		and(product.NewInStockSpecification())
	}
	if query.MaxPrice != nil {
		if query.Currency == "" {
			return nil, apperrors.Validation("currency is required with max_price")
		}
		and(product.NewPriceAtMostSpecification(*query.MaxPrice, query.Currency))
	}

	products, err := s.productRepo.FindAll(ctx, spec)
	if err != nil {
		return nil, apperrors.FromDomain("product.ListProducts", err, nil)
	}
	return toProductResponses(products), nil
}

// modify loads the product, applies change and saves it in one unit of work.
func (s *ApplicationService) modify(ctx context.Context, op, productID string, change func(p *product.Product) error) (*ProductResponse, error) {
	var p *product.Product
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.productRepo.FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if err := change(p); err != nil {
			return err
		}
		return s.productRepo.Update(ctx, p)
	})
	if err != nil {
		return nil, apperrors.FromDomain(op, err, map[string]any{"product_id": productID})
	}
	return toProductResponse(p), nil
}

// AddStock adds a new warehouse location
func (s *ApplicationService) AddStock(ctx context.Context, productID string, req StockRequest) (*ProductResponse, error) {
	const op = "product.AddStock"
	loc, err := shared.NewLocation(req.Longitude, req.Latitude)
	if err != nil {
		return nil, apperrors.FromDomain(op, err, map[string]any{"product_id": productID})
	}
	return s.modify(ctx, op, productID, func(p *product.Product) error {
		return p.AddStock(loc, req.Quantity)
	})
}

// RemoveStock drops a warehouse location; the last one cannot be removed
func (s *ApplicationService) RemoveStock(ctx context.Context, productID string, req LocationRequest) (*ProductResponse, error) {
	const op = "product.RemoveStock"
	loc, err := shared.NewLocation(req.Longitude, req.Latitude)
	if err != nil {
		return nil, apperrors.FromDomain(op, err, map[string]any{"product_id": productID})
	}
	return s.modify(ctx, op, productID, func(p *product.Product) error {
		return p.RemoveStock(loc)
	})
}

// AdjustStock increases or decreases the quantity at one location
func (s *ApplicationService) AdjustStock(ctx context.Context, productID string, req AdjustStockRequest) (*ProductResponse, error) {
	const op = "product.AdjustStock"
	loc, err := shared.NewLocation(req.Longitude, req.Latitude)
	if err != nil {
		return nil, apperrors.FromDomain(op, err, map[string]any{"product_id": productID})
	}
	if req.Delta == 0 {
		return nil, apperrors.FromDomain(op,
			shared.NewValidationError("stock", "delta", "delta must not be zero"),
			map[string]any{"product_id": productID})
	}
	return s.modify(ctx, op, productID, func(p *product.Product) error {
		if req.Delta > 0 {
			return p.IncreaseStock(loc, req.Delta)
		}
		return p.DecreaseStock(loc, -req.Delta)
	})
}

// ChangePrice Change product price
func (s *ApplicationService) ChangePrice(ctx context.Context, productID string, req ChangePriceRequest) (*ProductResponse, error) {
	const op = "product.ChangePrice"
	price, err := shared.NewPrice(req.Price, req.Currency)
	if err != nil {
		return nil, apperrors.FromDomain(op, err, map[string]any{"product_id": productID})
	}
	return s.modify(ctx, op, productID, func(p *product.Product) error {
		return p.ChangePrice(price)
	})
}

// RenameProduct Change product name. Existing orders keep the old name.
func (s *ApplicationService) RenameProduct(ctx context.Context, productID string, req RenameRequest) (*ProductResponse, error) {
	return s.modify(ctx, "product.RenameProduct", productID, func(p *product.Product) error {
		return p.Rename(req.Name)
	})
}

// DeleteProduct removes the product. Orders keep their own copy of its
// name, weight and price, so they are not touched.
func (s *ApplicationService) DeleteProduct(ctx context.Context, productID string) error {
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		return s.productRepo.Delete(ctx, productID)
	})
	return apperrors.FromDomain("product.DeleteProduct", err, map[string]any{"product_id": productID})
}
