package spore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		format string
		want   any
	}{
		{"json object", `{"a":1}`, "json", map[string]any{"a": float64(1)}},
		{"json upper case", `[1]`, "JSON", []any{float64(1)}},
		{"json empty", "  ", "json", nil},
		{"yaml", "a: 1\n", "yaml", map[string]any{"a": 1}},
		{"yml", "- x\n", "yml", []any{"x"}},
		{"xml", "<a/>", "xml", Unparsed{Format: "xml", Raw: []byte("<a/>")}},
		{"raw", "hello", "txt", "hello"},
		{"no format", "hello", "", "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.raw), tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte("{"), "json")
	assert.ErrorIs(t, err, ErrResponseDecode)

	_, err = Decode([]byte("a: [1"), "yaml")
	assert.ErrorIs(t, err, ErrResponseDecode)
}
