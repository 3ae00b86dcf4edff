package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONTextScan(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{int64(3), `3`},
		{float64(0.5), `0.5`},
		{true, `true`},
		{"[1,2]", `[1,2]`},
		{[]byte(`{"a":1}`), `{"a":1}`},
	}

	for _, tc := range tests {
		var j JSONText
		require.NoError(t, j.Scan(tc.in))
		assert.Equal(t, tc.want, string(j))
	}

	var j JSONText
	require.NoError(t, j.Scan(nil))
	assert.Nil(t, j)
	assert.Error(t, j.Scan(struct{}{}))
}

func TestJSONTextRoundTrip(t *testing.T) {
	var s AppSetting
	require.NoError(t, json.Unmarshal([]byte(`{"key":"k","value":{"on":true}}`), &s))
	assert.Equal(t, `{"on":true}`, string(s.Value))

	v, err := s.Value.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"on":true}`, v)

	empty, err := JSONText(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, empty)
}
