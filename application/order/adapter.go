package order

import (
	"context"

	"ddd-commerce/domain/order"
	"ddd-commerce/domain/user"
)

// customerCheckerAdapter 将 user.DomainService 适配为订单领域服务需要的 order.CustomerChecker。
type customerCheckerAdapter struct {
	users *user.DomainService
}

func (a *customerCheckerAdapter) CanPlaceOrder(ctx context.Context, customerID string) error {
	return a.users.CanUserPlaceOrder(ctx, customerID)
}

var _ order.CustomerChecker = (*customerCheckerAdapter)(nil)
