/*
Package product - 商品 API 控制器

参数绑定错误直接返回 400；业务错误交给 response.HandleAppError 按错误分类映射状态码。
*/
package product

import (
	"ddd-commerce/api/ctxutil"
	"ddd-commerce/api/response"
	productapp "ddd-commerce/application/product"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Controller 商品控制器
type Controller struct {
	productService *productapp.ApplicationService
}

// NewController 创建商品控制器
func NewController(productService *productapp.ApplicationService) *Controller {
	return &Controller{productService: productService}
}

// RegisterRoutes 注册商品路由
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	productGroup := router.Group("/products")
	{
		productGroup.POST("", c.CreateProduct)
		productGroup.GET("", c.ListProducts)
		productGroup.GET("/by-name/:name", c.GetProductByName)
		productGroup.GET("/:id", c.GetProduct)
		productGroup.PATCH("/:id", c.RenameProduct)
		productGroup.DELETE("/:id", c.DeleteProduct)
		productGroup.POST("/:id/stocks", c.AddStock)
		productGroup.DELETE("/:id/stocks", c.RemoveStock)
		productGroup.POST("/:id/stocks/adjust", c.AdjustStock)
		productGroup.PUT("/:id/price", c.ChangePrice)
	}
}

// CreateProduct POST /api/v1/products
func (c *Controller) CreateProduct(ctx *gin.Context) {
	var req productapp.CreateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleBindError(ctx, err, "invalid request parameters")
		return
	}

	product, err := c.productService.CreateProduct(ctxutil.WithRequestID(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleCreated(ctx, product, "product created successfully")
}

// GetProduct GET /api/v1/products/:id
func (c *Controller) GetProduct(ctx *gin.Context) {
	product, err := c.productService.GetProduct(ctxutil.WithRequestID(ctx), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, product, "product retrieved successfully")
}

// GetProductByName GET /api/v1/products/by-name/:name
func (c *Controller) GetProductByName(ctx *gin.Context) {
	product, err := c.productService.FindProductByName(ctxutil.WithRequestID(ctx), ctx.Param("name"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, product, "product retrieved successfully")
}

// ListProducts GET /api/v1/products?name=&in_stock=&max_price=&currency=
func (c *Controller) ListProducts(ctx *gin.Context) {
	var query productapp.ListProductsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.HandleBindError(ctx, err, "invalid query parameters")
		return
	}
	if raw := ctx.Query("max_price"); raw != "" {
		maxPrice, err := decimal.NewFromString(raw)
		if err != nil {
			response.HandleBindError(ctx, err, "max_price must be a decimal number")
			return
		}
		query.MaxPrice = &maxPrice
	}

	products, err := c.productService.ListProducts(ctxutil.WithRequestID(ctx), query)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleList(ctx, products, "products retrieved successfully")
}

// AddStock POST /api/v1/products/:id/stocks
func (c *Controller) AddStock(ctx *gin.Context) {
	var req productapp.StockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleBindError(ctx, err, "invalid request parameters")
		return
	}

	product, err := c.productService.AddStock(ctxutil.WithRequestID(ctx), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, product, "stock added successfully")
}

// RemoveStock DELETE /api/v1/products/:id/stocks?longitude=&latitude=
func (c *Controller) RemoveStock(ctx *gin.Context) {
	var req productapp.LocationRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.HandleBindError(ctx, err, "invalid query parameters")
		return
	}

	product, err := c.productService.RemoveStock(ctxutil.WithRequestID(ctx), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, product, "stock removed successfully")
}

// AdjustStock POST /api/v1/products/:id/stocks/adjust
func (c *Controller) AdjustStock(ctx *gin.Context) {
	var req productapp.AdjustStockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleBindError(ctx, err, "invalid request parameters")
		return
	}

	product, err := c.productService.AdjustStock(ctxutil.WithRequestID(ctx), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, product, "stock adjusted successfully")
}

// ChangePrice PUT /api/v1/products/:id/price
func (c *Controller) ChangePrice(ctx *gin.Context) {
	var req productapp.ChangePriceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleBindError(ctx, err, "invalid request parameters")
		return
	}

	product, err := c.productService.ChangePrice(ctxutil.WithRequestID(ctx), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, product, "price changed successfully")
}

// RenameProduct PATCH /api/v1/products/:id
func (c *Controller) RenameProduct(ctx *gin.Context) {
	var req productapp.RenameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleBindError(ctx, err, "invalid request parameters")
		return
	}

	product, err := c.productService.RenameProduct(ctxutil.WithRequestID(ctx), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, product, "product renamed successfully")
}

// DeleteProduct DELETE /api/v1/products/:id
func (c *Controller) DeleteProduct(ctx *gin.Context) {
	if err := c.productService.DeleteProduct(ctxutil.WithRequestID(ctx), ctx.Param("id")); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleNoContent(ctx)
}
