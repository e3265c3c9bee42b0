package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRequest 表示一个仓库位置及其库存。
type StockRequest struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Quantity  int     `json:"quantity" binding:"min=0"`
}

// CreateProductRequest 表示创建商品的入参。
type CreateProductRequest struct {
	Name     string          `json:"name" binding:"required"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency" binding:"required"`
	Weight   decimal.Decimal `json:"weight"`
	Stocks   []StockRequest  `json:"stocks"`
}

// LocationRequest 标识商品的一个库存位置。
type LocationRequest struct {
	Longitude float64 `json:"longitude" form:"longitude"`
	Latitude  float64 `json:"latitude" form:"latitude"`
}

// AdjustStockRequest Delta 为正表示入库，为负表示出库。
type AdjustStockRequest struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Delta     int     `json:"delta"`
}

// ChangePriceRequest 表示改价入参。
type ChangePriceRequest struct {
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency" binding:"required"`
}

// RenameRequest 表示改名入参。
type RenameRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListProductsQuery 所有条件可选，组合为 AND。
type ListProductsQuery struct {
	NameContains string           `form:"name"`
	InStock      bool             `form:"in_stock"`
	MaxPrice     *decimal.Decimal `form:"-"`
	Currency     string           `form:"currency"`
}

// ProductResponse 表示商品返回模型。
type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         MoneyResponse   `json:"price"`
	Weight        decimal.Decimal `json:"weight"`
	Stocks        []StockResponse `json:"stocks"`
	TotalQuantity int             `json:"total_quantity"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// StockResponse 表示库存返回模型。
type StockResponse struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Quantity  int     `json:"quantity"`
}

// MoneyResponse 表示金额返回模型。
type MoneyResponse struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}
