/*
Package order - 订单领域错误定义

设计原则:
1. 所有错误都是 shared.DomainError，上层按 Kind 分类处理
2. 哨兵错误(sentinel errors)支持 errors.Is() 精确判断具体规则
3. 错误构造函数在创建时捕获堆栈
4. 不包含 HTTP 状态码等非领域概念
*/
package order

import (
	"errors"
	"fmt"

	"ddd-commerce/domain/shared"
)

// ============================================================================
// 订单领域哨兵错误 (Sentinel Errors)
// ============================================================================

var (
	// ErrWeightLimitExceeded 订单总重量超过上限
	ErrWeightLimitExceeded = errors.New("total weight exceeds limit")

	// ErrLineWeightLimitExceeded 单个订单项重量超过上限
	ErrLineWeightLimitExceeded = errors.New("line item weight exceeds limit")

	// ErrDuplicateLineItem 同一商品已在订单中
	ErrDuplicateLineItem = errors.New("product already in order")

	// ErrLineItemNotFound 订单项不存在
	ErrLineItemNotFound = errors.New("line item not found")

	// ErrInvalidQuantity 无效的订单项数量
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrCurrencyMismatch 订单项币种不一致
	ErrCurrencyMismatch = errors.New("all line items must share one currency")

	// ErrCannotModifyNonPendingOrder 无法修改非待处理状态的订单
	ErrCannotModifyNonPendingOrder = errors.New("can only modify pending orders")

	// ErrInvalidOrderStateTransition 无效的订单状态转换
	ErrInvalidOrderStateTransition = errors.New("invalid order state transition")

	// ErrCannotConfirmEmptyOrder 空订单不能确认
	ErrCannotConfirmEmptyOrder = errors.New("cannot confirm empty order")

	// ErrInvalidOrder 订单缺少 id 或客户
	ErrInvalidOrder = errors.New("order requires id and customer")

	// ErrUserCannotPlaceOrder 用户无法下单
	ErrUserCannotPlaceOrder = errors.New("user cannot place order")
)

// ============================================================================
// 订单领域错误构造函数
// ============================================================================

// NewOrderNotFoundError 创建订单未找到错误（带堆栈）
func NewOrderNotFoundError(orderID string) error {
	return shared.NewNotFoundError("order", orderID)
}

// NewConcurrentModificationError 创建并发修改错误
func NewConcurrentModificationError(orderID string) error {
	return shared.NewConcurrentModificationError("order", orderID)
}

func newWeightLimitError(total, limit shared.Weight) error {
	return shared.WithSentinel(
		shared.NewInvariantError("order", "max_total_weight",
			fmt.Sprintf("total weight exceeds limit: %s > %s", total, limit)),
		ErrWeightLimitExceeded)
}

func newLineWeightLimitError(productID string, weight, limit shared.Weight) error {
	return shared.WithSentinel(
		shared.NewInvariantError("order", "max_line_weight",
			fmt.Sprintf("line item %s weight exceeds limit: %s > %s", productID, weight, limit)),
		ErrLineWeightLimitExceeded)
}

func newDuplicateLineItemError(productID string) error {
	return shared.WithSentinel(
		shared.NewDuplicateError("order", "product_id", "product "+productID+" is already in the order"),
		ErrDuplicateLineItem)
}

func newLineItemNotFoundError(productID string) error {
	return shared.WithSentinel(
		shared.NewInvariantError("order", "line_item_exists", "no line item for product "+productID),
		ErrLineItemNotFound)
}

func newInvalidQuantityError(qty int) error {
	return shared.WithSentinel(
		shared.NewValidationError("order", "quantity", fmt.Sprintf("quantity must be positive, got: %d", qty)),
		ErrInvalidQuantity)
}

func newCurrencyMismatchError(expected, got string) error {
	return shared.WithSentinel(
		shared.NewInvariantError("order", "single_currency",
			"line item currency "+got+" differs from order currency "+expected),
		ErrCurrencyMismatch)
}

func newCannotModifyError(orderID string, status Status) error {
	return shared.WithSentinel(
		shared.NewInvariantError("order", "pending_only",
			"order "+orderID+" is "+string(status)+", only pending orders can be modified"),
		ErrCannotModifyNonPendingOrder)
}

// NewInvalidOrderStateError 创建无效状态转换错误
func NewInvalidOrderStateError(currentState, targetState Status) error {
	return shared.WithSentinel(
		shared.NewInvariantError("order", "status_transition",
			"cannot transition from "+string(currentState)+" to "+string(targetState)),
		ErrInvalidOrderStateTransition)
}

func newCannotConfirmEmptyOrderError(orderID string) error {
	return shared.WithSentinel(
		shared.NewInvariantError("order", "non_empty_on_confirm", "cannot confirm empty order "+orderID),
		ErrCannotConfirmEmptyOrder)
}

func newInvalidOrderError(field string) error {
	return shared.WithSentinel(
		shared.NewInvariantError("order", field+"_required", "order "+field+" cannot be empty"),
		ErrInvalidOrder)
}

// NewUserCannotPlaceOrderError wraps the user rule that rejected the order.
func NewUserCannotPlaceOrderError(userID string, cause error) error {
	msg := "user " + userID + " cannot place order"
	if cause != nil {
		msg += ": " + cause.Error()
	}
	return shared.WithSentinel(
		shared.NewInvariantError("order", "customer_can_order", msg),
		errors.Join(ErrUserCannotPlaceOrder, cause))
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
