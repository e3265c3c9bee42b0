package user

import (
	"ddd-commerce/domain/shared"
)

// Repository User repository interface
// Email is unique: Create and Update fail with a duplicate error when another
// user already owns the address.
type Repository interface {
	shared.Repository[*User]
}
