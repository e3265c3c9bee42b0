package memory

import (
	"context"

	"ddd-commerce/domain/order"
	"ddd-commerce/domain/product"
	"ddd-commerce/domain/shared"
	"ddd-commerce/domain/user"

	"github.com/google/uuid"
)

// ProductRepository in-memory product.Repository
type ProductRepository struct {
	table table[*product.Product, product.ReconstructionDTO]
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{table: table[*product.Product, product.ReconstructionDTO]{
		rows:      make(map[string]row[product.ReconstructionDTO]),
		entity:    "product",
		snapshot:  (*product.Product).Snapshot,
		rebuild:   product.RebuildFromDTO,
		versionOf: func(d product.ReconstructionDTO) int { return d.Version },
		notFound:  product.NewProductNotFoundError,
		conflict:  product.NewConcurrentModificationError,
	}}
}

func (r *ProductRepository) NextIdentity() string { return "product-" + uuid.New().String() }

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	return r.table.create(ctx, p)
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*product.Product, error) {
	return r.table.findByID(ctx, id)
}

func (r *ProductRepository) FindOne(ctx context.Context, spec shared.Specification[*product.Product]) (*product.Product, error) {
	return r.table.findOne(ctx, spec)
}

func (r *ProductRepository) FindAll(ctx context.Context, spec shared.Specification[*product.Product]) ([]*product.Product, error) {
	return r.table.findAll(ctx, spec, 0)
}

func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	return r.table.update(ctx, p)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.table.delete(ctx, id)
}

// Count number of stored products
func (r *ProductRepository) Count() int { return r.table.count() }

// OrderRepository in-memory order.Repository; FindAll lists newest first
type OrderRepository struct {
	table table[*order.Order, order.ReconstructionDTO]
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{table: table[*order.Order, order.ReconstructionDTO]{
		rows:        make(map[string]row[order.ReconstructionDTO]),
		entity:      "order",
		snapshot:    (*order.Order).Snapshot,
		rebuild:     order.RebuildFromDTO,
		versionOf:   func(d order.ReconstructionDTO) int { return d.Version },
		notFound:    order.NewOrderNotFoundError,
		conflict:    order.NewConcurrentModificationError,
		newestFirst: true,
	}}
}

func (r *OrderRepository) NextIdentity() string { return "order-" + uuid.New().String() }

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	return r.table.create(ctx, o)
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	return r.table.findByID(ctx, id)
}

func (r *OrderRepository) FindOne(ctx context.Context, spec shared.Specification[*order.Order]) (*order.Order, error) {
	return r.table.findOne(ctx, spec)
}

func (r *OrderRepository) FindAll(ctx context.Context, spec shared.Specification[*order.Order]) ([]*order.Order, error) {
	return r.table.findAll(ctx, spec, 0)
}

func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	return r.table.update(ctx, o)
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	return r.table.delete(ctx, id)
}

func (r *OrderRepository) Count() int { return r.table.count() }

// UserRepository in-memory user.Repository; email is unique
type UserRepository struct {
	table table[*user.User, user.ReconstructionDTO]
}

func NewUserRepository() *UserRepository {
	return &UserRepository{table: table[*user.User, user.ReconstructionDTO]{
		rows:      make(map[string]row[user.ReconstructionDTO]),
		entity:    "user",
		snapshot:  (*user.User).Snapshot,
		rebuild:   user.RebuildFromDTO,
		versionOf: func(d user.ReconstructionDTO) int { return d.Version },
		notFound:  user.NewUserNotFoundError,
		conflict:  user.NewConcurrentModificationError,
		uniqueKey: func(d user.ReconstructionDTO) string { return d.Email },
		uniqueErr: user.NewEmailAlreadyExistsError,
	}}
}

func (r *UserRepository) NextIdentity() string { return "user-" + uuid.New().String() }

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	return r.table.create(ctx, u)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	return r.table.findByID(ctx, id)
}

func (r *UserRepository) FindOne(ctx context.Context, spec shared.Specification[*user.User]) (*user.User, error) {
	return r.table.findOne(ctx, spec)
}

func (r *UserRepository) FindAll(ctx context.Context, spec shared.Specification[*user.User]) ([]*user.User, error) {
	return r.table.findAll(ctx, spec, 0)
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	return r.table.update(ctx, u)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.table.delete(ctx, id)
}

func (r *UserRepository) Count() int { return r.table.count() }

var (
	_ product.Repository = (*ProductRepository)(nil)
	_ order.Repository   = (*OrderRepository)(nil)
	_ user.Repository    = (*UserRepository)(nil)
)
