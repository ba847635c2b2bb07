package handler

import (
	"errors"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"guestlink/internal/apperrors"
)

// bindJSON 绑定请求体，失败时推送 400 错误
// 校验失败的提示依次取字段的 msg_<规则> 标签、msg 标签、fallback
func bindJSON(c *gin.Context, req interface{}, fallback string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		zap.L().Warn("Request body binding failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		_ = c.Error(apperrors.InvalidRequestError(bindErrorMessage(req, err, fallback)))
		return false
	}
	return true
}

func bindErrorMessage(req interface{}, err error, fallback string) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fallback
	}

	t := reflect.TypeOf(req)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for _, e := range validationErrs {
		field, ok := t.FieldByName(e.StructField())
		if !ok {
			continue
		}
		if msg := field.Tag.Get("msg_" + e.Tag()); msg != "" {
			return msg
		}
		if msg := field.Tag.Get("msg"); msg != "" {
			return msg
		}
	}
	return fallback
}
