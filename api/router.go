// Package api 装配 HTTP 路由与中间件。
package api

import (
	"net/http"

	"ddd-commerce/api/health"
	"ddd-commerce/api/middleware"
	"ddd-commerce/api/order"
	"ddd-commerce/api/product"
	"ddd-commerce/api/user"
	"ddd-commerce/config"

	"github.com/gin-gonic/gin"
)

// Router Route configuration
type Router struct {
	engine            *gin.Engine
	config            *config.Config
	healthController  *health.Controller
	productController *product.Controller
	orderController   *order.Controller
	userController    *user.Controller
}

// NewRouter Create route configuration
func NewRouter(
	cfg *config.Config,
	healthController *health.Controller,
	productController *product.Controller,
	orderController *order.Controller,
	userController *user.Controller,
) *Router {
	switch {
	case cfg.IsDevelopment():
		gin.SetMode(gin.DebugMode)
	case cfg.App.Env == "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// 顺序有意义: 请求 ID 最先生成，恢复中间件包住其余所有处理
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.RecoveryMiddleware())
	engine.Use(middleware.LoggingMiddleware())
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))
	engine.Use(middleware.RateLimitMiddleware(&cfg.Server.RateLimit))

	return &Router{
		engine:            engine,
		config:            cfg,
		healthController:  healthController,
		productController: productController,
		orderController:   orderController,
		userController:    userController,
	}
}

// SetupRoutes Set up all routes
func (r *Router) SetupRoutes() {
	apiGroup := r.engine.Group("/api/v1")
	{
		r.healthController.RegisterRoutes(apiGroup)
		r.productController.RegisterRoutes(apiGroup)
		r.orderController.RegisterRoutes(apiGroup)
		r.userController.RegisterRoutes(apiGroup)
	}

	r.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    r.config.App.Name,
			"version": r.config.App.Version,
			"env":     r.config.App.Env,
			"health":  "/api/v1/health",
		})
	})
}

// GetEngine Get Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
