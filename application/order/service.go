/*
Package order Application Layer - Order Business Process Orchestration

Responsibilities of Application Layer:
1. Receive external requests (usually from Controller)
2. Call domain services for business rule validation
3. Call aggregate root methods to execute business operations
4. Use UoW to manage transactions
5. Return results to caller

Domain failures leave this package translated by apperrors.FromDomain;
anything it does not recognise is returned unchanged.
*/
package order

import (
	"context"

	"ddd-commerce/domain/order"
	"ddd-commerce/domain/product"
	"ddd-commerce/domain/shared"
	"ddd-commerce/domain/user"
	apperrors "ddd-commerce/pkg/errors"
	"ddd-commerce/pkg/logger"

	"go.uber.org/zap"
)

// ApplicationService Order application service - coordinates order-related business processes
type ApplicationService struct {
	orderRepo          order.Repository
	factory            *order.Factory
	orderDomainService *order.DomainService
	uow                shared.UnitOfWork
}

// NewApplicationService Create order application service.
// Product lookups go through the order factory; customer checks through the user domain service.
func NewApplicationService(
	orderRepo order.Repository,
	productRepo product.Repository,
	userRepo user.Repository,
	policy order.WeightPolicy,
	uow shared.UnitOfWork,
) *ApplicationService {
	customers := &customerCheckerAdapter{users: user.NewDomainService(userRepo)}
	return &ApplicationService{
		orderRepo:          orderRepo,
		factory:            order.NewFactory(productRepo, policy),
		orderDomainService: order.NewDomainService(customers, orderRepo),
		uow:                uow,
	}
}

// PlaceOrder Create order for an active adult customer
func (s *ApplicationService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderResponse, error) {
	var o *order.Order

	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		if err := s.orderDomainService.EnsureCustomerCanOrder(ctx, req.CustomerID); err != nil {
			return err
		}

		var err error
		o, err = s.factory.Create(ctx, s.orderRepo.NextIdentity(), req.CustomerID, toLineRequests(req.Items))
		if err != nil {
			return err
		}
		return s.orderRepo.Create(ctx, o)
	})
	if err != nil {
		return nil, apperrors.FromDomain("order.PlaceOrder", err, map[string]any{"customer_id": req.CustomerID})
	}

	logger.FromContext(ctx).Info("Order placed",
		zap.String("order_id", o.ID()),
		zap.String("customer_id", o.CustomerID()),
		zap.Int("lines", len(o.Items())))
	return toOrderResponse(o), nil
}

// GetOrder Get order information
func (s *ApplicationService) GetOrder(ctx context.Context, orderID string) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, apperrors.FromDomain("order.GetOrder", err, map[string]any{"order_id": orderID})
	}
	return toOrderResponse(o), nil
}

// ListOrders newest first, optionally filtered by customer and status
func (s *ApplicationService) ListOrders(ctx context.Context, query ListOrdersQuery) ([]*OrderResponse, error) {
	const op = "order.ListOrders"

	var spec shared.Specification[*order.Order]
	if query.CustomerID != "" {
		spec = order.NewByCustomerSpecification(query.CustomerID)
	}
	if query.Status != "" {
		status, err := order.ParseStatus(query.Status)
		if err != nil {
			return nil, apperrors.FromDomain(op, err, map[string]any{"status": query.Status})
		}
		byStatus := order.NewByStatusSpecification(status)
		if spec == nil {
			spec = byStatus
		} else {
			spec = shared.And(spec, byStatus)
		}
	}

	orders, err := s.orderRepo.FindAll(ctx, spec)
	if err != nil {
		return nil, apperrors.FromDomain(op, err, nil)
	}
	return toOrderResponses(orders), nil
}

// modify loads the order, applies change and saves it in one unit of work.
// The closure reloads on every attempt, so retries see fresh state.
func (s *ApplicationService) modify(ctx context.Context, op, orderID string, details map[string]any, change func(ctx context.Context, o *order.Order) error) (*OrderResponse, error) {
	var o *order.Order
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := change(ctx, o); err != nil {
			return err
		}
		return s.orderRepo.Update(ctx, o)
	})
	if err != nil {
		if details == nil {
			details = make(map[string]any, 1)
		}
		details["order_id"] = orderID
		return nil, apperrors.FromDomain(op, err, details)
	}

	logger.FromContext(ctx).Debug("Order updated",
		zap.String("op", op),
		zap.String("order_id", orderID),
		zap.String("status", string(o.Status())))
	return toOrderResponse(o), nil
}

// AddLineItem resolves the product and adds it to a pending order
func (s *ApplicationService) AddLineItem(ctx context.Context, orderID string, req LineItemRequest) (*OrderResponse, error) {
	return s.modify(ctx, "order.AddLineItem", orderID, map[string]any{"product_id": req.ProductID},
		func(ctx context.Context, o *order.Order) error {
			line, err := s.factory.ResolveLine(ctx, order.LineRequest{ProductID: req.ProductID, Quantity: req.Quantity})
			if err != nil {
				return err
			}
			return o.AddLineItem(line.Product, line.Quantity)
		})
}

// RemoveLineItem Remove a product from a pending order
func (s *ApplicationService) RemoveLineItem(ctx context.Context, orderID, productID string) (*OrderResponse, error) {
	return s.modify(ctx, "order.RemoveLineItem", orderID, map[string]any{"product_id": productID},
		func(_ context.Context, o *order.Order) error {
			return o.RemoveLineItem(productID)
		})
}

// ChangeLineItemQuantity Change quantity of one line of a pending order
func (s *ApplicationService) ChangeLineItemQuantity(ctx context.Context, orderID, productID string, req ChangeQuantityRequest) (*OrderResponse, error) {
	return s.modify(ctx, "order.ChangeLineItemQuantity", orderID,
		map[string]any{"product_id": productID, "quantity": req.Quantity},
		func(_ context.Context, o *order.Order) error {
			return o.ChangeLineItemQuantity(productID, req.Quantity)
		})
}

// UpdateStatus moves the order through its lifecycle. Confirming re-checks
// that the customer may still place orders.
func (s *ApplicationService) UpdateStatus(ctx context.Context, orderID string, req UpdateOrderStatusRequest) (*OrderResponse, error) {
	const op = "order.UpdateStatus"
	target, err := order.ParseStatus(req.Status)
	if err != nil {
		return nil, apperrors.FromDomain(op, err, map[string]any{"order_id": orderID, "status": req.Status})
	}

	return s.modify(ctx, op, orderID, map[string]any{"status": string(target)},
		func(ctx context.Context, o *order.Order) error {
			if target == order.StatusConfirmed && o.Status() == order.StatusPending {
				if err := s.orderDomainService.EnsureCustomerCanOrder(ctx, o.CustomerID()); err != nil {
					return err
				}
			}
			return o.TransitionTo(target, req.Reason)
		})
}

// DeleteOrder Delete order
func (s *ApplicationService) DeleteOrder(ctx context.Context, orderID string) error {
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		return s.orderRepo.Delete(ctx, orderID)
	})
	return apperrors.FromDomain("order.DeleteOrder", err, map[string]any{"order_id": orderID})
}
