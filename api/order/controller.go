/*
Package order - 订单 API 控制器

职责:
1. 接收 HTTP 请求，解析参数
2. 调用应用服务处理业务逻辑
3. 使用 response 包统一处理响应和错误

错误处理原则:
1. 参数绑定错误: 使用 response.HandleBindError 直接返回 400
2. 业务错误: 使用 response.HandleAppError 按错误分类映射状态码
*/
package order

import (
	"ddd-commerce/api/ctxutil"
	"ddd-commerce/api/response"
	orderapp "ddd-commerce/application/order"

	"github.com/gin-gonic/gin"
)

// Controller 订单控制器
type Controller struct {
	orderService *orderapp.ApplicationService
}

// NewController 创建订单控制器
func NewController(orderService *orderapp.ApplicationService) *Controller {
	return &Controller{orderService: orderService}
}

// RegisterRoutes 注册订单路由
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	orderGroup := router.Group("/orders")
	{
		orderGroup.POST("", c.PlaceOrder)
		orderGroup.GET("", c.ListOrders)
		orderGroup.GET("/:id", c.GetOrder)
		orderGroup.DELETE("/:id", c.DeleteOrder)
		orderGroup.POST("/:id/items", c.AddLineItem)
		orderGroup.PUT("/:id/items/:productId", c.ChangeLineItemQuantity)
		orderGroup.DELETE("/:id/items/:productId", c.RemoveLineItem)
		orderGroup.PUT("/:id/status", c.UpdateOrderStatus)
	}
}

// PlaceOrder 下单
// POST /api/v1/orders
func (c *Controller) PlaceOrder(ctx *gin.Context) {
	var req orderapp.PlaceOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleBindError(ctx, err, "invalid request parameters")
		return
	}

	order, err := c.orderService.PlaceOrder(ctxutil.WithRequestID(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleCreated(ctx, order, "order created successfully")
}

// GetOrder 获取订单信息
// GET /api/v1/orders/:id
//
// 错误链路: 仓储返回 KindNotFound 领域错误 -> 应用层 FromDomain 得到 ORDER_NOT_FOUND
// -> HandleAppError 映射为 404。
func (c *Controller) GetOrder(ctx *gin.Context) {
	order, err := c.orderService.GetOrder(ctxutil.WithRequestID(ctx), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, order, "order retrieved successfully")
}

// ListOrders GET /api/v1/orders?customer_id=&status=
func (c *Controller) ListOrders(ctx *gin.Context) {
	var query orderapp.ListOrdersQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.HandleBindError(ctx, err, "invalid query parameters")
		return
	}

	orders, err := c.orderService.ListOrders(ctxutil.WithRequestID(ctx), query)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleList(ctx, orders, "orders retrieved successfully")
}

// AddLineItem POST /api/v1/orders/:id/items
func (c *Controller) AddLineItem(ctx *gin.Context) {
	var req orderapp.LineItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleBindError(ctx, err, "invalid request parameters")
		return
	}

	order, err := c.orderService.AddLineItem(ctxutil.WithRequestID(ctx), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, order, "line item added successfully")
}

// ChangeLineItemQuantity PUT /api/v1/orders/:id/items/:productId
func (c *Controller) ChangeLineItemQuantity(ctx *gin.Context) {
	var req orderapp.ChangeQuantityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleBindError(ctx, err, "invalid request parameters")
		return
	}

	order, err := c.orderService.ChangeLineItemQuantity(ctxutil.WithRequestID(ctx), ctx.Param("id"), ctx.Param("productId"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, order, "line item updated successfully")
}

// RemoveLineItem DELETE /api/v1/orders/:id/items/:productId
func (c *Controller) RemoveLineItem(ctx *gin.Context) {
	order, err := c.orderService.RemoveLineItem(ctxutil.WithRequestID(ctx), ctx.Param("id"), ctx.Param("productId"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, order, "line item removed successfully")
}

// UpdateOrderStatus 更新订单状态
// PUT /api/v1/orders/:id/status
func (c *Controller) UpdateOrderStatus(ctx *gin.Context) {
	var req orderapp.UpdateOrderStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleBindError(ctx, err, "invalid request parameters")
		return
	}

	order, err := c.orderService.UpdateStatus(ctxutil.WithRequestID(ctx), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, order, "order status updated successfully")
}

// DeleteOrder DELETE /api/v1/orders/:id
func (c *Controller) DeleteOrder(ctx *gin.Context) {
	if err := c.orderService.DeleteOrder(ctxutil.WithRequestID(ctx), ctx.Param("id")); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleNoContent(ctx)
}
