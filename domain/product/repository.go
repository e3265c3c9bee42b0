package product

import "ddd-commerce/domain/shared"

// Repository Product repository interface
type Repository interface {
	shared.Repository[*Product]
}
