package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateShortCode(t *testing.T) {
	cases := []struct {
		code string
		err  string
	}{
		{"aB3dE9xZ", ""},
		{"", "error.missing_code"},
		{"short", "error.short_url_not_found"},
		{"aB3dE9xZ1", "error.short_url_not_found"},
		{"aB3d E9x", "error.short_url_not_found"},
		{"aB3d-E9x", "error.short_url_not_found"},
	}
	for _, tc := range cases {
		err := ValidateShortCode(tc.code)
		if tc.err == "" {
			assert.NoError(t, err, tc.code)
			continue
		}
		assert.EqualError(t, err, tc.err, tc.code)
	}
}

func TestValidateTargetURL(t *testing.T) {
	assert.NoError(t, ValidateTargetURL("https://example.com"))
	assert.NoError(t, ValidateTargetURL("http://example.com/a?b=c"))

	assert.EqualError(t, ValidateTargetURL(""), "error.url_required")
	assert.EqualError(t, ValidateTargetURL("   "), "error.url_required")
	assert.EqualError(t, ValidateTargetURL("example.com"), "error.url_invalid")
	assert.EqualError(t, ValidateTargetURL("ftp://example.com"), "error.url_invalid")
	assert.EqualError(t, ValidateTargetURL("https://"), "error.url_invalid")
	assert.EqualError(t, ValidateTargetURL("https://example.com/"+strings.Repeat("a", 2048)), "error.url_invalid")
}
