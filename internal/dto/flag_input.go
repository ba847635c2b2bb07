package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var errInvalidFlag = errors.New("useLanding must be true, false, 1 or 0")

// FlagInput 客户端提交的确认页开关：支持 JSON 布尔值、数字 1/0，
// 以及字符串 "true"/"false"/"1"/"0"（不区分大小写）
type FlagInput bool

func (f *FlagInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return errInvalidFlag
	}

	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return errInvalidFlag
		}
	} else {
		raw = string(data)
	}

	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		*f = true
	case "false", "0":
		*f = false
	default:
		return errInvalidFlag
	}
	return nil
}

func (f FlagInput) Bool() bool {
	return bool(f)
}
