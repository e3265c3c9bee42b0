// Package user Application Layer - user registration and account use cases.
package user

import (
	"context"
	"sort"

	"ddd-commerce/domain/order"
	"ddd-commerce/domain/shared"
	"ddd-commerce/domain/user"
	apperrors "ddd-commerce/pkg/errors"
	"ddd-commerce/pkg/logger"

	"go.uber.org/zap"
)

// ApplicationService User application service - coordinates user-related business processes
type ApplicationService struct {
	userRepo          user.Repository
	orderRepo         order.Repository
	userDomainService *user.DomainService
	uow               shared.UnitOfWork
}

// NewApplicationService Create user application service
func NewApplicationService(
	userRepo user.Repository,
	orderRepo order.Repository,
	uow shared.UnitOfWork,
) *ApplicationService {
	return &ApplicationService{
		userRepo:          userRepo,
		orderRepo:         orderRepo,
		userDomainService: user.NewDomainService(userRepo),
		uow:               uow,
	}
}

// RegisterUser Create user; the email must not be taken
func (s *ApplicationService) RegisterUser(ctx context.Context, req RegisterUserRequest) (*UserResponse, error) {
	const op = "user.RegisterUser"

	email, err := user.NewEmail(req.Email)
	if err != nil {
		return nil, apperrors.FromDomain(op, err, nil)
	}

	var u *user.User
	err = s.uow.Execute(ctx, func(ctx context.Context) error {
		if err := s.userDomainService.EnsureEmailAvailable(ctx, email, ""); err != nil {
			return err
		}

		var err error
		u, err = user.NewUser(s.userRepo.NextIdentity(), req.Name, email.Value(), req.Password, req.Age)
		if err != nil {
			return err
		}
		return s.userRepo.Create(ctx, u)
	})
	if err != nil {
		return nil, apperrors.FromDomain(op, err, map[string]any{"email": email.Value()})
	}

	logger.FromContext(ctx).Info("User registered", zap.String("user_id", u.ID()))
	return toUserResponse(u), nil
}

// GetUser Get user information
func (s *ApplicationService) GetUser(ctx context.Context, userID string) (*UserResponse, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.FromDomain("user.GetUser", err, map[string]any{"user_id": userID})
	}
	return toUserResponse(u), nil
}

// ListUsers optionally filtered by status
func (s *ApplicationService) ListUsers(ctx context.Context, query ListUsersQuery) ([]*UserResponse, error) {
	var spec shared.Specification[*user.User]
	if query.Active != nil {
		spec = user.NewByStatusSpecification(*query.Active)
	}
	users, err := s.userRepo.FindAll(ctx, spec)
	if err != nil {
		return nil, apperrors.FromDomain("user.ListUsers", err, nil)
	}
	responses := make([]*UserResponse, len(users))
	for i, u := range users {
		responses[i] = toUserResponse(u)
	}
	return responses, nil
}

func (s *ApplicationService) modify(ctx context.Context, op, userID string, change func(u *user.User) error) (*UserResponse, error) {
	var u *user.User
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		u, err = s.userRepo.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := change(u); err != nil {
			return err
		}
		return s.userRepo.Update(ctx, u)
	})
	if err != nil {
		return nil, apperrors.FromDomain(op, err, map[string]any{"user_id": userID})
	}
	return toUserResponse(u), nil
}

// UpdateUserStatus Update user status
func (s *ApplicationService) UpdateUserStatus(ctx context.Context, userID string, req UpdateUserStatusRequest) (*UserResponse, error) {
	return s.modify(ctx, "user.UpdateUserStatus", userID, func(u *user.User) error {
		if req.Active {
			u.Activate()
		} else {
			u.Deactivate()
		}
		return nil
	})
}

// RenameUser Change display name
func (s *ApplicationService) RenameUser(ctx context.Context, userID string, req RenameRequest) (*UserResponse, error) {
	return s.modify(ctx, "user.RenameUser", userID, func(u *user.User) error {
		return u.Rename(req.Name)
	})
}

// ChangePassword requires the current password
func (s *ApplicationService) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	_, err := s.modify(ctx, "user.ChangePassword", userID, func(u *user.User) error {
		return u.ChangePassword(req.CurrentPassword, req.NewPassword)
	})
	return err
}

// GetUserTotalSpent sums the user's delivered orders per currency.
// Note: This is a cross-subdomain query, handled at application layer
func (s *ApplicationService) GetUserTotalSpent(ctx context.Context, userID string) (*TotalSpentResponse, error) {
	const op = "user.GetUserTotalSpent"
	details := map[string]any{"user_id": userID}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, apperrors.FromDomain(op, err, details)
	}

	orders, err := s.orderRepo.FindAll(ctx, shared.And(
		order.NewByCustomerSpecification(userID),
		order.NewByStatusSpecification(order.StatusDelivered),
	))
	if err != nil {
		return nil, apperrors.FromDomain(op, err, details)
	}

	totals := make(map[string]shared.Money)
	for _, o := range orders {
		if len(o.Items()) == 0 {
			continue
		}
		price := o.TotalPrice()
		sum, ok := totals[price.Currency()]
		if !ok {
			totals[price.Currency()] = price
			continue
		}
		if sum, err = sum.Add(price); err != nil {
			return nil, apperrors.FromDomain(op, err, details)
		}
		totals[price.Currency()] = sum
	}

	resp := &TotalSpentResponse{UserID: userID, DeliveredCount: len(orders), Totals: make([]MoneyResponse, 0, len(totals))}
	for _, m := range totals {
		resp.Totals = append(resp.Totals, MoneyResponse{Amount: m.Amount(), Currency: m.Currency()})
	}
	sort.Slice(resp.Totals, func(i, j int) bool { return resp.Totals[i].Currency < resp.Totals[j].Currency })
	return resp, nil
}

func toUserResponse(u *user.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID(),
		Name:      u.Name(),
		Email:     u.Email().Value(),
		Age:       u.Age(),
		IsActive:  u.IsActive(),
		Version:   u.Version(),
		CreatedAt: u.CreatedAt(),
		UpdatedAt: u.UpdatedAt(),
	}
}
