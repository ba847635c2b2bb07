package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"guestlink/internal/apperrors"
	"guestlink/internal/i18n"
	"guestlink/response"
)

// GlobalErrorMiddleware 全局错误中间件，把 c.Error 收集的错误渲染成 {"error": "..."}
// AppError 使用自身状态码和本地化信息，其他错误统一 500
func GlobalErrorMiddleware(translator *i18n.Translator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		ctx := c.Request.Context()
		for _, err := range c.Errors {
			var appErr *apperrors.AppError
			if errors.As(err.Err, &appErr) {
				logAppError(logger, c, appErr)
				c.AbortWithStatusJSON(appErr.Code, response.Error(translator.T(ctx, appErr.MessageID)))
				return
			}
		}

		logger.Error("Unhandled request error",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.Error(c.Errors.Last().Err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(translator.T(ctx, apperrors.MsgInternal)))
	}
}

func logAppError(logger *zap.Logger, c *gin.Context, appErr *apperrors.AppError) {
	fields := []zap.Field{
		zap.Int("status", appErr.Code),
		zap.String("message_id", appErr.MessageID),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", c.GetString(RequestIDKey)),
	}
	if appErr.Cause != nil {
		fields = append(fields, zap.Error(appErr.Cause))
	}
	if appErr.Code >= http.StatusInternalServerError {
		logger.Error("Request failed", fields...)
		return
	}
	logger.Debug("Request rejected", fields...)
}
