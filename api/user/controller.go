package user

import (
	"ddd-commerce/api/ctxutil"
	"ddd-commerce/api/response"
	userapp "ddd-commerce/application/user"

	"github.com/gin-gonic/gin"
)

// Controller User controller
type Controller struct {
	userService *userapp.ApplicationService
}

// NewController Create user controller
func NewController(userService *userapp.ApplicationService) *Controller {
	return &Controller{userService: userService}
}

// RegisterRoutes Register user routes
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	userGroup := router.Group("/users")
	{
		userGroup.POST("", c.RegisterUser)
		userGroup.GET("", c.ListUsers)
		userGroup.GET("/:id", c.GetUser)
		userGroup.PATCH("/:id", c.RenameUser)
		userGroup.PUT("/:id/status", c.UpdateUserStatus)
		userGroup.PUT("/:id/password", c.ChangePassword)
		userGroup.GET("/:id/total-spent", c.GetUserTotalSpent)
	}
}

// RegisterUser Create user
func (c *Controller) RegisterUser(ctx *gin.Context) {
	var req userapp.RegisterUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleBindError(ctx, err, "invalid request parameters")
		return
	}

	user, err := c.userService.RegisterUser(ctxutil.WithRequestID(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleCreated(ctx, user, "user created successfully")
}

// GetUser Get user information
func (c *Controller) GetUser(ctx *gin.Context) {
	user, err := c.userService.GetUser(ctxutil.WithRequestID(ctx), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, user, "user retrieved successfully")
}

// ListUsers GET /api/v1/users?active=
func (c *Controller) ListUsers(ctx *gin.Context) {
	var query userapp.ListUsersQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.HandleBindError(ctx, err, "invalid query parameters")
		return
	}

	users, err := c.userService.ListUsers(ctxutil.WithRequestID(ctx), query)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleList(ctx, users, "users retrieved successfully")
}

// UpdateUserStatus Update user status
func (c *Controller) UpdateUserStatus(ctx *gin.Context) {
	var req userapp.UpdateUserStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleBindError(ctx, err, "invalid request parameters")
		return
	}

	user, err := c.userService.UpdateUserStatus(ctxutil.WithRequestID(ctx), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, user, "user status updated successfully")
}

// RenameUser PATCH /api/v1/users/:id
func (c *Controller) RenameUser(ctx *gin.Context) {
	var req userapp.RenameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleBindError(ctx, err, "invalid request parameters")
		return
	}

	user, err := c.userService.RenameUser(ctxutil.WithRequestID(ctx), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, user, "user renamed successfully")
}

// ChangePassword PUT /api/v1/users/:id/password
func (c *Controller) ChangePassword(ctx *gin.Context) {
	var req userapp.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleBindError(ctx, err, "invalid request parameters")
		return
	}

	if err := c.userService.ChangePassword(ctxutil.WithRequestID(ctx), ctx.Param("id"), req); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleNoContent(ctx)
}

// GetUserTotalSpent Get user total spent
func (c *Controller) GetUserTotalSpent(ctx *gin.Context) {
	spent, err := c.userService.GetUserTotalSpent(ctxutil.WithRequestID(ctx), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, spent, "user total spent retrieved successfully")
}
