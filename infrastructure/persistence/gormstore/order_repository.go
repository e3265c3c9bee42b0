package gormstore

import (
	"context"
	"errors"

	"ddd-commerce/domain/order"
	"ddd-commerce/domain/shared"
	"ddd-commerce/infrastructure/persistence/gormstore/po"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository GORM implementation of order.Repository
// GORM usage specification: Association features are prohibited to maintain DDD aggregate boundaries
type OrderRepository struct {
	store
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{store{db: db}}
}

func (r *OrderRepository) NextIdentity() string {
	return "order-" + uuid.New().String()
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	orderPO, itemPOs := po.FromOrderDomain(o)
	return r.write(ctx, "order.Create", func(tx *gorm.DB) error {
		if err := tx.Create(orderPO).Error; err != nil {
			if isDuplicateKeyError(err) {
				return shared.NewDuplicateError("order", "id", "order already exists: "+o.ID())
			}
			return storeErr("order.Create", err)
		}
		return r.saveItems(tx, itemPOs)
	})
}

// Update writes the order row under a version check, then replaces its
// line items (simple strategy: delete then insert).
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	orderPO, itemPOs := po.FromOrderDomain(o)
	expectedVersion := o.Version()

	err := r.write(ctx, "order.Update", func(tx *gorm.DB) error {
		result := tx.Model(&po.OrderPO{}).
			Where("id = ? AND version = ?", o.ID(), expectedVersion).
			Updates(map[string]any{
				"customer_id":      orderPO.CustomerID,
				"status":           orderPO.Status,
				"cancel_reason":    orderPO.CancelReason,
				"max_total_weight": orderPO.MaxTotalWeight,
				"max_line_weight":  orderPO.MaxLineWeight,
				"version":          expectedVersion + 1,
				"updated_at":       orderPO.UpdatedAt,
			})
		if result.Error != nil {
			return storeErr("order.Update", result.Error)
		}
		if result.RowsAffected == 0 {
			return storeErr("order.Update", versionConflict(tx, &po.OrderPO{}, o.ID(),
				order.NewOrderNotFoundError, order.NewConcurrentModificationError))
		}

		if err := tx.Where("order_id = ?", o.ID()).Delete(&po.LineItemPO{}).Error; err != nil {
			return storeErr("order.Update", err)
		}
		return r.saveItems(tx, itemPOs)
	})
	if err != nil {
		return err
	}

	o.IncrementVersionForSave()
	return nil
}

func (r *OrderRepository) saveItems(tx *gorm.DB, itemPOs []po.LineItemPO) error {
	if len(itemPOs) == 0 {
		return nil
	}
	if err := tx.Create(&itemPOs).Error; err != nil {
		return storeErr("order.saveItems", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var orderPO po.OrderPO
	db := r.getDB(ctx)
	if err := db.First(&orderPO, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.NewOrderNotFoundError(id)
		}
		return nil, storeErr("order.FindByID", err)
	}

	orders, err := r.load(db, []po.OrderPO{orderPO})
	if err != nil {
		return nil, err
	}
	return orders[0], nil
}

func (r *OrderRepository) FindOne(ctx context.Context, spec shared.Specification[*order.Order]) (*order.Order, error) {
	orders, err := r.find(ctx, spec, 1)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, order.NewOrderNotFoundError("")
	}
	return orders[0], nil
}

func (r *OrderRepository) FindAll(ctx context.Context, spec shared.Specification[*order.Order]) ([]*order.Order, error) {
	return r.find(ctx, spec, 0)
}

func (r *OrderRepository) find(ctx context.Context, spec shared.Specification[*order.Order], limit int) ([]*order.Order, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	db := r.getDB(ctx).Order("created_at DESC, id")
	scope, translated := OrderSpecs.Scope(spec)
	if translated {
		db = db.Scopes(scope)
		if limit > 0 {
			db = db.Limit(limit)
		}
	}

	var orderPOs []po.OrderPO
	if err := db.Find(&orderPOs).Error; err != nil {
		return nil, storeErr("order.FindAll", err)
	}
	orders, err := r.load(r.getDB(ctx), orderPOs)
	if err != nil {
		return nil, err
	}
	if translated {
		return orders, nil
	}
	return filter(ctx, spec, orders, limit), nil
}

// load Batch query order items
func (r *OrderRepository) load(db *gorm.DB, orderPOs []po.OrderPO) ([]*order.Order, error) {
	if len(orderPOs) == 0 {
		return []*order.Order{}, nil
	}
	ids := make([]string, len(orderPOs))
	for i, o := range orderPOs {
		ids[i] = o.ID
	}

	var itemPOs []po.LineItemPO
	if err := db.Where("order_id IN ?", ids).Order("order_id, position").Find(&itemPOs).Error; err != nil {
		return nil, storeErr("order.load", err)
	}
	byOrder := make(map[string][]po.LineItemPO, len(ids))
	for _, item := range itemPOs {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}

	orders := make([]*order.Order, len(orderPOs))
	for i := range orderPOs {
		o, err := orderPOs[i].ToDomain(byOrder[orderPOs[i].ID])
		if err != nil {
			return nil, corrupt("order.load", err)
		}
		orders[i] = o
	}
	return orders, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	return r.write(ctx, "order.Delete", func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&po.OrderPO{})
		if result.Error != nil {
			return storeErr("order.Delete", result.Error)
		}
		if result.RowsAffected == 0 {
			return order.NewOrderNotFoundError(id)
		}
		if err := tx.Where("order_id = ?", id).Delete(&po.LineItemPO{}).Error; err != nil {
			return storeErr("order.Delete", err)
		}
		return nil
	})
}

// Compile-time interface implementation check
var _ order.Repository = (*OrderRepository)(nil)
