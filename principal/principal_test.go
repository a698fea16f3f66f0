package principal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_WellKnown(t *testing.T) {
	assert.Equal(t, "aaaaa-aa", Management.Text())
	assert.Equal(t, "2vxsx-fae", Anonymous.Text())
	assert.True(t, Anonymous.IsAnonymous())
	assert.False(t, Management.IsAnonymous())
}

func TestFromText_RoundTrip(t *testing.T) {
	tests := [][]byte{
		{},
		{0x04},
		{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x01, 0x01},
		make([]byte, MaxLength),
	}
	for _, raw := range tests {
		p := MustFromBytes(raw)
		parsed, err := FromText(p.Text())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
		assert.Equal(t, raw, parsed.Bytes())
	}
}

func TestFromText_Invalid(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"not base32", "!!!!!-aa"},
		{"too short", "aa"},
		{"bad checksum", "aaaaa-ab"},
		{"uppercase", "AAAAA-AA"},
		{"missing dashes", "2vxsxfae"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromText(tt.text)
			assert.Error(t, err)
		})
	}
}

func TestFromBytes_TooLong(t *testing.T) {
	_, err := FromBytes(make([]byte, MaxLength+1))
	assert.Error(t, err)
	assert.Panics(t, func() { MustFromBytes(make([]byte, MaxLength+1)) })
}

func TestJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Principal{"owner": Anonymous})
	require.NoError(t, err)
	assert.JSONEq(t, `{"owner":"2vxsx-fae"}`, string(data))

	var out map[string]Principal
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, Anonymous, out["owner"])
}
