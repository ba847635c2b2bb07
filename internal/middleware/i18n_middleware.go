package middleware

import (
	"github.com/gin-gonic/gin"

	"guestlink/internal/i18n"
)

// I18nMiddleware 根据 Accept-Language 选择语言，放入请求上下文
func I18nMiddleware(translator *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		localizer := translator.Localizer(c.GetHeader("Accept-Language"))
		c.Request = c.Request.WithContext(i18n.WithLocalizer(c.Request.Context(), localizer))
		c.Next()
	}
}
