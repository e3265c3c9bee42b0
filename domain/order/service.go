package order

import (
	"context"
)

// CustomerChecker tells whether a customer may place orders.
// Used to break the dependency from order to user.
type CustomerChecker interface {
	CanPlaceOrder(ctx context.Context, customerID string) error
}

// DomainService Order domain service
// DDD principle: Domain service can use Repository interfaces to query data but does not call Save for persistence
type DomainService struct {
	customers       CustomerChecker
	orderRepository Repository
}

// NewDomainService Create order domain service
func NewDomainService(customers CustomerChecker, orderRepo Repository) *DomainService {
	return &DomainService{
		customers:       customers,
		orderRepository: orderRepo,
	}
}

// EnsureCustomerCanOrder wraps the customer's rejection into an order error.
func (s *DomainService) EnsureCustomerCanOrder(ctx context.Context, customerID string) error {
	if err := s.customers.CanPlaceOrder(ctx, customerID); err != nil {
		if isNotFound(err) {
			return err
		}
		return NewUserCannotPlaceOrderError(customerID, err)
	}
	return nil
}

// CanProcessOrder loads the order and checks it can be confirmed:
// the customer may still order and the order is pending.
func (s *DomainService) CanProcessOrder(ctx context.Context, orderID string) (*Order, error) {
	order, err := s.orderRepository.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.EnsureCustomerCanOrder(ctx, order.CustomerID()); err != nil {
		return nil, err
	}

	if order.Status() != StatusPending {
		return nil, NewInvalidOrderStateError(order.Status(), StatusConfirmed)
	}

	return order, nil
}
