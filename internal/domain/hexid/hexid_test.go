package hexid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	inputs := []string{
		"PL123abc",
		"https://resolver.example.com:8090",
		"a",
		"playlist id with spaces",
	}

	for _, in := range inputs {
		encoded := Encode(in)

		// Voice channel constraint: lowercase hex only, even length
		assert.Equal(t, strings.ToLower(encoded), encoded)
		assert.Equal(t, 0, len(encoded)%2)
		assert.Regexp(t, "^[0-9a-f]+$", encoded)

		decoded, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, in, decoded)
	}
}

func TestDecode_CaseInsensitive(t *testing.T) {
	encoded := Encode("PLxyz")
	decoded, err := Decode(strings.ToUpper(encoded))
	require.NoError(t, err)
	assert.Equal(t, "PLxyz", decoded)
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{name: "empty", encoded: ""},
		{name: "odd length", encoded: "abc"},
		{name: "non-hex characters", encoded: "zz11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.encoded)
			assert.Error(t, err)
		})
	}
}
