package response

// Response 通用成功响应结构 {message, data}
type Response[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// ErrorResponse 失败响应结构
type ErrorResponse struct {
	Error string `json:"error"`
}

// OK 构造一个成功的响应
func OK[T any](data T, message string) *Response[T] {
	return &Response[T]{
		Message: message,
		Data:    data,
	}
}

// Error 构造一个失败的响应（message 已本地化）
func Error(message string) *ErrorResponse {
	return &ErrorResponse{Error: message}
}
