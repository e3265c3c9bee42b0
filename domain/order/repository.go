package order

import "ddd-commerce/domain/shared"

// Repository Order repository interface
// Line items are stored and loaded together with their order.
type Repository interface {
	shared.Repository[*Order]
}
