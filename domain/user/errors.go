/*
Package user 定义用户领域错误。

All errors are shared.DomainError values; the sentinels below are attached
so callers can match the specific rule with errors.Is.
*/
package user

import (
	"errors"
	"fmt"

	"ddd-commerce/domain/shared"
)

var (
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidName        = errors.New("name cannot be empty")
	ErrInvalidAge         = errors.New("age must be between 0 and 150")
	ErrWeakPassword       = errors.New("password does not meet requirements")
	ErrPasswordMismatch   = errors.New("current password does not match")
	ErrUserNotActive      = errors.New("user is not active")
	ErrUserTooYoung       = errors.New("user is too young to place orders")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

func NewUserNotFoundError(userID string) error {
	return shared.NewNotFoundError("user", userID)
}

func NewConcurrentModificationError(userID string) error {
	return shared.NewConcurrentModificationError("user", userID)
}

func NewInvalidEmailError(email string) error {
	return shared.WithSentinel(
		shared.NewValidationError("user", "email", "invalid email format: "+email), ErrInvalidEmail)
}

func NewInvalidNameError() error {
	return shared.WithSentinel(
		shared.NewValidationError("user", "name", "name cannot be empty"), ErrInvalidName)
}

func NewInvalidAgeError(age int) error {
	return shared.WithSentinel(
		shared.NewValidationError("user", "age", fmt.Sprintf("age must be between 0 and 150, got: %d", age)), ErrInvalidAge)
}

func NewWeakPasswordError(reason string) error {
	return shared.WithSentinel(shared.NewValidationError("user", "password", reason), ErrWeakPassword)
}

func NewPasswordMismatchError() error {
	return shared.WithSentinel(
		shared.NewInvariantError("user", "password_match", "current password does not match"), ErrPasswordMismatch)
}

func NewUserNotActiveError(userID string) error {
	return shared.WithSentinel(
		shared.NewInvariantError("user", "active", "user "+userID+" is not active"), ErrUserNotActive)
}

func NewUserTooYoungError(userID string, age int) error {
	return shared.WithSentinel(
		shared.NewInvariantError("user", "min_age", fmt.Sprintf("user %s is %d, must be at least %d to place orders", userID, age, MinOrderAge)),
		ErrUserTooYoung)
}

func NewEmailAlreadyExistsError(email string) error {
	return shared.WithSentinel(
		shared.NewDuplicateError("user", "email", "email already exists: "+email), ErrEmailAlreadyExists)
}
