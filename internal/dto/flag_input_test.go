package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagInputAccepts(t *testing.T) {
	cases := map[string]bool{
		`true`:     true,
		`false`:    false,
		`1`:        true,
		`0`:        false,
		`"true"`:   true,
		`"FALSE"`:  false,
		`" True "`: true,
		`"1"`:      true,
		`"0"`:      false,
	}
	for body, want := range cases {
		var req LinkSettingRequest
		require.NoError(t, json.Unmarshal([]byte(`{"useLanding":`+body+`}`), &req), body)
		require.NotNil(t, req.UseLanding, body)
		assert.Equal(t, want, req.UseLanding.Bool(), body)
	}
}

func TestFlagInputRejects(t *testing.T) {
	for _, body := range []string{`"yes"`, `2`, `""`, `{}`, `[]`, `1.0`, `"on"`} {
		var req LinkSettingRequest
		assert.Error(t, json.Unmarshal([]byte(`{"useLanding":`+body+`}`), &req), body)
	}
}

func TestFlagInputMissingStaysNil(t *testing.T) {
	var req LinkSettingRequest
	require.NoError(t, json.Unmarshal([]byte(`{}`), &req))
	assert.Nil(t, req.UseLanding)

	// 指针字段遇到 null 时 encoding/json 不会调用 UnmarshalJSON
	require.NoError(t, json.Unmarshal([]byte(`{"useLanding":null}`), &req))
	assert.Nil(t, req.UseLanding)
}
