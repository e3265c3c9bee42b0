package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlaceOrderRequest 表示下单入参。Items 可以为空（草稿订单）。
type PlaceOrderRequest struct {
	CustomerID string            `json:"customer_id" binding:"required"`
	Items      []LineItemRequest `json:"items"`
}

// LineItemRequest 表示一个订单行：商品 ID 与数量。
type LineItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// ChangeQuantityRequest 表示修改订单行数量的入参。
type ChangeQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateOrderStatusRequest 表示更新订单状态入参。
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// ListOrdersQuery 条件可选。
type ListOrdersQuery struct {
	CustomerID string `form:"customer_id"`
	Status     string `form:"status"`
}

// OrderResponse 表示订单返回模型。
type OrderResponse struct {
	ID             string              `json:"id"`
	CustomerID     string              `json:"customer_id"`
	Items          []OrderItemResponse `json:"items"`
	TotalWeight    decimal.Decimal     `json:"total_weight"`
	MaxTotalWeight decimal.Decimal     `json:"max_total_weight"`
	TotalPrice     *MoneyResponse      `json:"total_price,omitempty"`
	Status         string              `json:"status"`
	CancelReason   string              `json:"cancel_reason,omitempty"`
	Version        int                 `json:"version"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// OrderItemResponse 表示订单项返回模型。
type OrderItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitWeight  decimal.Decimal `json:"unit_weight"`
	Weight      decimal.Decimal `json:"weight"`
	UnitPrice   MoneyResponse   `json:"unit_price"`
	Subtotal    MoneyResponse   `json:"subtotal"`
}

// MoneyResponse 表示金额返回模型。
type MoneyResponse struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}
