package response

import (
	stdErrors "errors"
	"net/http"
	"runtime"

	"ddd-commerce/domain/shared"
	"ddd-commerce/pkg/errors"
	"ddd-commerce/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const internalMessage = "internal server error"

// kindStatus 错误分类到 HTTP 状态码，只在 API 层使用
var kindStatus = map[errors.Kind]int{
	errors.KindValidation:  http.StatusBadRequest,
	errors.KindDomain:      http.StatusBadRequest,
	errors.KindNotFound:    http.StatusNotFound,
	errors.KindConflict:    http.StatusConflict,
	errors.KindUnavailable: http.StatusServiceUnavailable,
	errors.KindRateLimited: http.StatusTooManyRequests,
	errors.KindInternal:    http.StatusInternalServerError,
}

// StatusFor 未知分类按 500 处理
func StatusFor(kind errors.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// GetRequestID 从 gin context 读取请求 ID
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

func captureStack(skip int) []string {
	var pcs [16]uintptr
	n := runtime.Callers(skip, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := make([]string, 0, 5)
	for range 5 {
		frame, more := frames.Next()
		if frame.Function != "" {
			stack = append(stack, frame.Function)
		}
		if !more {
			break
		}
	}
	return stack
}

// HandleBindError 处理参数绑定等框架层错误，固定返回 400。
func HandleBindError(c *gin.Context, err error, message string) {
	requestID := GetRequestID(c)

	logger.FromContext(c.Request.Context()).Warn(message,
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err))

	c.JSON(http.StatusBadRequest, &Response{
		Success:   false,
		Error:     string(errors.CodeBadRequest),
		Message:   message,
		Code:      http.StatusBadRequest,
		RequestID: requestID,
	})
}

// HandleAppError 按错误分类映射 HTTP 状态码。
// 5xx 记 Error 级别日志并隐藏消息；4xx 只记 Warn。
func HandleAppError(c *gin.Context, err error) {
	requestID := GetRequestID(c)
	appErr := errors.Classify(errors.WithCorrelation(err, requestID))
	status := StatusFor(appErr.Kind)

	log := logger.FromContext(c.Request.Context())
	fields := []zap.Field{
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("error_code", string(appErr.Code)),
		zap.String("op", appErr.Op),
		zap.Int("http_status", status),
	}
	if len(appErr.Context) > 0 {
		fields = append(fields, zap.Any("context", appErr.Context))
	}
	if appErr.Err != nil {
		fields = append(fields, zap.Error(appErr.Err))
	}

	message := appErr.Message
	if status >= http.StatusInternalServerError {
		fields = append(fields, zap.Strings("stack", extractStack(err)))
		log.Error(appErr.Message, fields...)
		if appErr.Kind != errors.KindUnavailable {
			message = internalMessage
		}
	} else {
		log.Warn(appErr.Message, fields...)
	}

	c.JSON(status, &Response{
		Success:   false,
		Error:     string(appErr.Code),
		Message:   message,
		Code:      status,
		RequestID: requestID,
	})
}

// extractStack 优先取领域错误的发生点堆栈，否则取处理点
func extractStack(err error) []string {
	var stacker shared.Stacker
	if stdErrors.As(err, &stacker) {
		if stack := stacker.Stack(); len(stack) > 0 {
			return stack
		}
	}
	return captureStack(4)
}
