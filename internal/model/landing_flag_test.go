package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLandingFlagValue(t *testing.T) {
	v, err := LandingFlag(true).Value()
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	v, err = LandingFlag(false).Value()
	require.NoError(t, err)
	assert.Equal(t, "false", v)
}

func TestLandingFlagScan(t *testing.T) {
	var f LandingFlag
	require.NoError(t, f.Scan("true"))
	assert.True(t, bool(f))
	require.NoError(t, f.Scan([]byte("false")))
	assert.False(t, bool(f))
	require.NoError(t, f.Scan(nil))
	assert.False(t, bool(f))

	assert.Error(t, f.Scan("TRUE"))
	assert.Error(t, f.Scan("1"))
	assert.Error(t, f.Scan(int64(1)))
}

func TestLandingFlagJSONIsBoolean(t *testing.T) {
	out, err := json.Marshal(GuestURL{UseLanding: true})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"useLanding":true`)
}
