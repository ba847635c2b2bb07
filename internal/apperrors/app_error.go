package apperrors

import (
	"errors"
	"net/http"
)

// 错误消息 ID，对应 locales 下的翻译
const (
	MsgInvalidBody        = "error.invalid_body"
	MsgURLRequired        = "error.url_required"
	MsgURLInvalid         = "error.url_invalid"
	MsgMissingCode        = "error.missing_code"
	MsgShortURLNotFound   = "error.short_url_not_found"
	MsgURLInfoNotFound    = "error.url_info_not_found"
	MsgLinkNotFound       = "error.link_not_found"
	MsgSettingInvalidCode = "error.setting_invalid_code"
	MsgSettingInvalidID   = "error.setting_invalid_id"
	MsgCodeExhausted      = "error.code_exhausted"
	MsgInternal           = "error.internal"
)

// AppError 自定义错误类型：HTTP 状态码 + i18n 消息 ID，Cause 只记日志不返回给客户端
type AppError struct {
	Code      int
	MessageID string
	Cause     error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.MessageID + ": " + e.Cause.Error()
	}
	return e.MessageID
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode 创建通用业务错误
func WithCode(code int, messageID string) *AppError {
	return &AppError{
		Code:      code,
		MessageID: messageID,
	}
}

// Wrap 创建带底层原因的业务错误
func Wrap(code int, messageID string, cause error) *AppError {
	return &AppError{
		Code:      code,
		MessageID: messageID,
		Cause:     cause,
	}
}

// InvalidRequestError 封装参数校验错误
func InvalidRequestError(messageID string) *AppError {
	return WithCode(http.StatusBadRequest, messageID)
}

// InvalidRequestErrorDefault 默认参数校验错误（请求体无法解析）
func InvalidRequestErrorDefault() *AppError {
	return WithCode(http.StatusBadRequest, MsgInvalidBody)
}

// NotFoundError 封装资源不存在错误
func NotFoundError(messageID string) *AppError {
	return WithCode(http.StatusNotFound, messageID)
}

// SystemError 封装系统内部错误
func SystemError(cause error) *AppError {
	return Wrap(http.StatusInternalServerError, MsgInternal, cause)
}

// SystemErrorDefault 默认系统内部错误
func SystemErrorDefault() *AppError {
	return WithCode(http.StatusInternalServerError, MsgInternal)
}

// StatusOf 取出 err 携带的 HTTP 状态码，非 AppError 一律 500
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// IsNotFound 判断是否为 404 错误
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}
