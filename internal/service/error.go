package service

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode int

const (
	// 系统级错误码
	ErrSystem ErrorCode = iota + 1
	ErrConfig
	ErrDatabase
	ErrValidation
	ErrAuthentication
	ErrAuthorization
	ErrNotFound
	ErrDuplicate
	ErrInvalidInput
	ErrInternal

	// 业务级错误码
	ErrConfirmation ErrorCode = iota + 1000
	ErrExternal
	ErrBusy
	ErrTooLarge
)

// AppError 应用程序错误
type AppError struct {
	Code    ErrorCode              // 错误码
	Message string                 // 错误消息
	Err     error                  // 原始错误
	Context map[string]interface{} // 上下文信息
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现errors.Unwrap接口
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewError 创建新的应用程序错误
func NewError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Context: make(map[string]interface{}),
	}
}

// WithContext 添加上下文信息
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	e.Context[key] = value
	return e
}

// Is 检查错误码是否匹配
func (e *AppError) Is(code ErrorCode) bool {
	return e.Code == code
}

// CodeOf 取出错误码，非 AppError 返回 ErrInternal
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// IsCode 判断错误链中是否包含指定错误码
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// HTTPStatus 错误码对应的 HTTP 状态码
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrValidation, ErrInvalidInput:
		return http.StatusBadRequest
	case ErrAuthentication:
		return http.StatusUnauthorized
	case ErrAuthorization:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrDuplicate, ErrConfirmation:
		return http.StatusConflict
	case ErrBusy:
		return http.StatusTooManyRequests
	case ErrTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler 错误处理服务
type ErrorHandler struct {
	logger *Logger
}

// NewErrorHandler 创建错误处理服务实例
func NewErrorHandler(logger *Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// Handle 记录错误并返回对外的状态码与消息
func (h *ErrorHandler) Handle(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewError(ErrInternal, "Internal Server Error", err)
	}

	status := HTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Error occurred: %v", appErr)
	} else {
		h.logger.Debug("Request rejected: %v", appErr)
	}
	return status, appErr.Message
}
