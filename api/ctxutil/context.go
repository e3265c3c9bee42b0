// Package ctxutil 把 gin 请求上下文转换为应用层使用的 context.Context。
package ctxutil

import (
	"context"

	"ddd-commerce/api/response"
	"ddd-commerce/infrastructure/persistence"

	"github.com/gin-gonic/gin"
)

// WithRequestID 返回携带请求 ID 的 request context
func WithRequestID(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if persistence.RequestIDFromContext(ctx) != "" {
		return ctx
	}
	return persistence.ContextWithRequestID(ctx, response.GetRequestID(c))
}

func RequestIDFromContext(ctx context.Context) string {
	return persistence.RequestIDFromContext(ctx)
}
