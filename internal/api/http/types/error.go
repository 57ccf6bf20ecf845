// Package types HTTP 响应结构
package types

import "time"

// ErrorResponse 统一错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Code      string      `json:"code"`                 // 错误码
	Message   string      `json:"message"`              // 错误消息
	Details   interface{} `json:"details,omitempty"`    // 详细信息
	RequestID string      `json:"request_id,omitempty"` // 请求ID
	Timestamp string      `json:"timestamp,omitempty"`  // 时间戳
}

// 错误码
const (
	ErrInvalidArgument   = "INVALID_ARGUMENT"
	ErrNotFound          = "NOT_FOUND"
	ErrPayloadTooLarge   = "PAYLOAD_TOO_LARGE"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"

	ErrStorageIO          = "STORAGE_IO"
	ErrInternal           = "INTERNAL"
	ErrServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// NewErrorResponse 创建错误响应
func NewErrorResponse(code, message string, details interface{}) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// WithRequestID 添加请求ID
func (e *ErrorResponse) WithRequestID(requestID string) *ErrorResponse {
	e.Error.RequestID = requestID
	return e
}
