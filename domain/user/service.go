/*
Domain Service

Domain services handle rules that need a repository lookup and so cannot
live on the aggregate. They only read; persistence stays in the application
layer.
*/
package user

import (
	"context"
	"errors"

	"ddd-commerce/domain/shared"
)

// DomainService User domain service
type DomainService struct {
	userRepository Repository
}

// NewDomainService Create user domain service
func NewDomainService(userRepo Repository) *DomainService {
	return &DomainService{
		userRepository: userRepo,
	}
}

// EnsureEmailAvailable fails with a duplicate error when email belongs to a
// user other than exceptID.
func (s *DomainService) EnsureEmailAvailable(ctx context.Context, email Email, exceptID string) error {
	existing, err := s.userRepository.FindOne(ctx, NewByEmailSpecification(email.Value()))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID() != exceptID {
		return NewEmailAlreadyExistsError(email.Value())
	}
	return nil
}

// CanUserPlaceOrder loads the user and applies User.CanPlaceOrder.
func (s *DomainService) CanUserPlaceOrder(ctx context.Context, userID string) error {
	user, err := s.userRepository.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return user.CanPlaceOrder()
}
