package user

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterUserRequest Create user request DTO
type RegisterUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Age      int    `json:"age"`
}

// UpdateUserStatusRequest Update user status request DTO
type UpdateUserStatusRequest struct {
	Active bool `json:"active"`
}

// RenameRequest display name change
type RenameRequest struct {
	Name string `json:"name" binding:"required"`
}

// ChangePasswordRequest both passwords are raw input
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ListUsersQuery Active nil means every user
type ListUsersQuery struct {
	Active *bool `form:"active"`
}

// UserResponse User response DTO; the password hash never leaves the service
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	IsActive  bool      `json:"is_active"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalSpentResponse delivered-order totals, one entry per currency
type TotalSpentResponse struct {
	UserID         string          `json:"user_id"`
	DeliveredCount int             `json:"delivered_count"`
	Totals         []MoneyResponse `json:"totals"`
}

type MoneyResponse struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}
