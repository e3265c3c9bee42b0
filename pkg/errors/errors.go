/*
Package errors 应用层与基础设施层错误

错误翻译链:

	领域错误 (shared.DomainError)
	  -> FromDomain: 应用层附加操作名和上下文
	  -> Unavailable / WithCorrelation: 基础设施层附加存储故障分类和请求 ID
	  -> Classify: 表现层兜底，未识别的错误视为内部错误

本包不包含任何 HTTP 概念；状态码映射只在 api/response 中进行。
*/
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"ddd-commerce/domain/shared"
)

// Kind 跨层错误分类
type Kind string

const (
	KindValidation  Kind = "validation"
	KindDomain      Kind = "domain"
	KindNotFound    Kind = "not_found"
	KindConflict    Kind = "conflict"
	KindUnavailable Kind = "unavailable"
	KindRateLimited Kind = "rate_limited"
	KindInternal    Kind = "internal"
)

// ErrorCode 错误码
type ErrorCode string

const (
	// 通用错误码
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeValidation       ErrorCode = "VALIDATION_ERROR"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeConcurrentModify ErrorCode = "CONCURRENT_MODIFICATION"
	CodeUnavailable      ErrorCode = "SERVICE_UNAVAILABLE"
	CodeTooManyRequest   ErrorCode = "TOO_MANY_REQUESTS"
)

// AppError 应用错误
type AppError struct {
	Code    ErrorCode `json:"code"`
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`

	// Op 发生错误的用例或适配器操作，如 "order.AddLineItem"
	Op string `json:"op,omitempty"`

	// Context 诊断用的标识符（order_id、product_id 等）
	Context map[string]any `json:"context,omitempty"`

	// RequestID 由基础设施层附加的关联 ID
	RequestID string `json:"request_id,omitempty"`

	Err error `json:"-"`
}

func (e *AppError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.Context[k])
		}
	}
	if e.Err != nil && e.Err.Error() != e.Message {
		fmt.Fprintf(&b, " (%v)", e.Err)
	}
	return b.String()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新错误
func New(kind Kind, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(err error, kind Kind, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// 常用错误构造函数

func Validation(message string) *AppError {
	return New(KindValidation, CodeValidation, message)
}

// TooManyRequests 限流拒绝，与存储不可用区分开
func TooManyRequests(message string) *AppError {
	return New(KindRateLimited, CodeTooManyRequest, message)
}

// ============================================================================
// 翻译链
// ============================================================================

// FromDomain 应用层翻译：识别领域错误，附加操作名与上下文并保留原始错误。
// 已翻译过的 AppError 只补充缺失的 Op 和上下文；无法识别的错误原样返回。
func FromDomain(op string, err error, ctx map[string]any) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Op == "" {
			appErr.Op = op
		}
		appErr.Context = mergeContext(appErr.Context, ctx)
		return err
	}

	var de *shared.DomainError
	if !errors.As(err, &de) {
		return err
	}

	kind, code := classifyDomain(de)
	return &AppError{
		Code:    code,
		Kind:    kind,
		Op:      op,
		Message: de.Message,
		Context: mergeContext(nil, ctx),
		Err:     err,
	}
}

func classifyDomain(de *shared.DomainError) (Kind, ErrorCode) {
	switch de.Kind {
	case shared.KindValidation:
		return KindValidation, CodeValidation
	case shared.KindNotFound:
		return KindNotFound, ruleCode(de.Entity, "not_found")
	case shared.KindConflict:
		return KindConflict, CodeConcurrentModify
	case shared.KindDuplicate, shared.KindInvariant:
		return KindDomain, ruleCode(de.Entity, de.Rule)
	default:
		return KindInternal, CodeInternal
	}
}

// ruleCode ("order", "max_total_weight") -> ORDER_MAX_TOTAL_WEIGHT
func ruleCode(entity, rule string) ErrorCode {
	parts := make([]string, 0, 2)
	for _, p := range []string{entity, rule} {
		if p != "" {
			parts = append(parts, strings.ToUpper(p))
		}
	}
	if len(parts) == 0 {
		return "DOMAIN_ERROR"
	}
	return ErrorCode(strings.Join(parts, "_"))
}

func mergeContext(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		if _, exists := dst[k]; !exists {
			dst[k] = v
		}
	}
	return dst
}

// Unavailable 基础设施层：存储或网络故障。驱动层的原始错误只保留在 Err 中供日志使用，
// 不出现在 Message 里。
func Unavailable(op string, err error) *AppError {
	return &AppError{
		Code:    CodeUnavailable,
		Kind:    KindUnavailable,
		Op:      op,
		Message: "service temporarily unavailable",
		Err:     err,
	}
}

// WithCorrelation 基础设施层：给已识别的错误附加请求 ID；其余错误原样返回。
func WithCorrelation(err error, requestID string) error {
	var appErr *AppError
	if requestID != "" && errors.As(err, &appErr) && appErr.RequestID == "" {
		appErr.RequestID = requestID
	}
	return err
}

// Classify 表现层兜底：总是返回 AppError。未识别的错误成为 KindInternal，
// 原错误保留在 Err 中。
func Classify(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if translated, ok := FromDomain("", err, nil).(*AppError); ok {
		return translated
	}
	return Wrap(err, KindInternal, CodeInternal, "internal server error")
}

// Is 检查是否为特定错误码
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// KindOf 返回错误分类；非 AppError 视为 KindInternal
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return Classify(err).Kind
}
