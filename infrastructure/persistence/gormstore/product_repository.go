package gormstore

import (
	"context"
	"errors"

	"ddd-commerce/domain/product"
	"ddd-commerce/domain/shared"
	"ddd-commerce/infrastructure/persistence/gormstore/po"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository GORM implementation of product.Repository.
// Stocks live in their own table and are replaced as a whole on Update.
type ProductRepository struct {
	store
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{store{db: db}}
}

func (r *ProductRepository) NextIdentity() string {
	return "product-" + uuid.New().String()
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	productPO, stockPOs := po.FromProductDomain(p)
	return r.write(ctx, "product.Create", func(tx *gorm.DB) error {
		if err := tx.Create(productPO).Error; err != nil {
			if isDuplicateKeyError(err) {
				return shared.NewDuplicateError("product", "id", "product already exists: "+p.ID())
			}
			return storeErr("product.Create", err)
		}
		if len(stockPOs) > 0 {
			if err := tx.Create(&stockPOs).Error; err != nil {
				return storeErr("product.Create", err)
			}
		}
		return nil
	})
}

func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	productPO, stockPOs := po.FromProductDomain(p)
	expectedVersion := p.Version()

	err := r.write(ctx, "product.Update", func(tx *gorm.DB) error {
		// 乐观锁：版本不匹配则不更新任何行
		result := tx.Model(&po.ProductPO{}).
			Where("id = ? AND version = ?", p.ID(), expectedVersion).
			Updates(map[string]any{
				"name":           productPO.Name,
				"price_amount":   productPO.PriceAmount,
				"price_currency": productPO.PriceCurrency,
				"weight":         productPO.Weight,
				"version":        expectedVersion + 1,
				"updated_at":     productPO.UpdatedAt,
			})
		if result.Error != nil {
			return storeErr("product.Update", result.Error)
		}
		if result.RowsAffected == 0 {
			return storeErr("product.Update", versionConflict(tx, &po.ProductPO{}, p.ID(),
				product.NewProductNotFoundError, product.NewConcurrentModificationError))
		}

		if err := tx.Where("product_id = ?", p.ID()).Delete(&po.StockPO{}).Error; err != nil {
			return storeErr("product.Update", err)
		}
		if len(stockPOs) > 0 {
			if err := tx.Create(&stockPOs).Error; err != nil {
				return storeErr("product.Update", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	p.IncrementVersionForSave()
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*product.Product, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var productPO po.ProductPO
	db := r.getDB(ctx)
	if err := db.First(&productPO, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.NewProductNotFoundError(id)
		}
		return nil, storeErr("product.FindByID", err)
	}

	products, err := r.load(db, []po.ProductPO{productPO})
	if err != nil {
		return nil, err
	}
	return products[0], nil
}

func (r *ProductRepository) FindOne(ctx context.Context, spec shared.Specification[*product.Product]) (*product.Product, error) {
	products, err := r.find(ctx, spec, 1)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, product.NewProductNotFoundError("")
	}
	return products[0], nil
}

func (r *ProductRepository) FindAll(ctx context.Context, spec shared.Specification[*product.Product]) ([]*product.Product, error) {
	return r.find(ctx, spec, 0)
}

func (r *ProductRepository) find(ctx context.Context, spec shared.Specification[*product.Product], limit int) ([]*product.Product, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	db := r.getDB(ctx).Order("created_at, id")
	scope, translated := ProductSpecs.Scope(spec)
	if translated {
		db = db.Scopes(scope)
		if limit > 0 {
			db = db.Limit(limit)
		}
	}

	var productPOs []po.ProductPO
	if err := db.Find(&productPOs).Error; err != nil {
		return nil, storeErr("product.FindAll", err)
	}
	products, err := r.load(r.getDB(ctx), productPOs)
	if err != nil {
		return nil, err
	}
	if translated {
		return products, nil
	}
	return filter(ctx, spec, products, limit), nil
}

// load attaches stocks with one query for the whole batch
func (r *ProductRepository) load(db *gorm.DB, productPOs []po.ProductPO) ([]*product.Product, error) {
	if len(productPOs) == 0 {
		return []*product.Product{}, nil
	}
	ids := make([]string, len(productPOs))
	for i, p := range productPOs {
		ids[i] = p.ID
	}

	var stockPOs []po.StockPO
	if err := db.Where("product_id IN ?", ids).Order("product_id, position").Find(&stockPOs).Error; err != nil {
		return nil, storeErr("product.load", err)
	}
	byProduct := make(map[string][]po.StockPO, len(ids))
	for _, s := range stockPOs {
		byProduct[s.ProductID] = append(byProduct[s.ProductID], s)
	}

	products := make([]*product.Product, len(productPOs))
	for i := range productPOs {
		p, err := productPOs[i].ToDomain(byProduct[productPOs[i].ID])
		if err != nil {
			return nil, corrupt("product.load", err)
		}
		products[i] = p
	}
	return products, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.write(ctx, "product.Delete", func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&po.ProductPO{})
		if result.Error != nil {
			return storeErr("product.Delete", result.Error)
		}
		if result.RowsAffected == 0 {
			return product.NewProductNotFoundError(id)
		}
		if err := tx.Where("product_id = ?", id).Delete(&po.StockPO{}).Error; err != nil {
			return storeErr("product.Delete", err)
		}
		return nil
	})
}

// filter in-memory fallback for specifications without a SQL form
func filter[T any](ctx context.Context, spec shared.Specification[T], items []T, limit int) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if shared.Satisfies(ctx, spec, item) {
			out = append(out, item)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

var _ product.Repository = (*ProductRepository)(nil)
