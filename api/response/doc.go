/*
Package response - API 层统一响应处理

设计原则:
1. HTTP 状态码映射放在 API 层，按错误分类 (Kind) 映射，不污染领域层和应用层
2. 错误响应不暴露内部细节（堆栈、驱动错误等）
3. 所有响应携带 RequestID 用于日志追踪
4. 内部错误统一返回 "internal server error"，真实错误只记录日志

响应格式:

	成功: { success: true, data: {...}, message: "...", code: 200, request_id: "..." }
	失败: { success: false, error: "ERROR_CODE", message: "用户可见消息", code: 4xx/5xx, request_id: "..." }
*/
package response
