package response

// RequestIDKey 是 gin context 中保存请求 ID 的键。
const RequestIDKey = "request_id"

// Response 是统一响应结构。
type Response struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"` // 错误码，不是错误详情
	Code      int    `json:"code"`            // HTTP 状态码
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ListResponse 列表响应，附带条目数。
type ListResponse struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Count     int    `json:"count"`
	Message   string `json:"message"`
	Code      int    `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}
