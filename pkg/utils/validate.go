package utils

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"guestlink/constant"
)

// ValidateShortCode 校验短码格式，不符合格式的短码不可能被发放过
func ValidateShortCode(shortCode string) error {
	if shortCode == "" {
		return fmt.Errorf("error.missing_code")
	}

	if ContainsWhitespace(shortCode) || len(shortCode) != constant.CodeLength {
		return fmt.Errorf("error.short_url_not_found")
	}

	for _, r := range shortCode {
		if !strings.ContainsRune(constant.CodeAlphabet, r) {
			return fmt.Errorf("error.short_url_not_found")
		}
	}
	return nil
}

// ValidateTargetURL 校验目标地址：带 host 的 http(s) 绝对地址，长度不超过 MaxTargetURLLength
func ValidateTargetURL(targetURL string) error {
	if strings.TrimSpace(targetURL) == "" {
		return fmt.Errorf("error.url_required")
	}

	if len(targetURL) > constant.MaxTargetURLLength {
		return fmt.Errorf("error.url_invalid")
	}

	u, err := url.ParseRequestURI(targetURL)
	if err != nil {
		return fmt.Errorf("error.url_invalid")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("error.url_invalid")
	}
	if u.Host == "" {
		return fmt.Errorf("error.url_invalid")
	}
	return nil
}

func ContainsWhitespace(s string) bool {
	for _, r := range s {
		if unicode.IsSpace(r) {
			return true
		}
	}
	return false
}

// RegisterValidators 向 gin 的校验器注册 httpurl 规则
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return ValidateTargetURL(fl.Field().String()) == nil
	})
}
