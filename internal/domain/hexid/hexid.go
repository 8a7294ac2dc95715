// Package hexid encodes opaque identifiers for transport through the voice
// channel, which only accepts alphanumeric tokens.
package hexid

import (
	"encoding/hex"
	"strings"

	"github.com/cockroachdb/errors"
)

// Encode hex-encodes s, two lowercase hex digits per byte.
func Encode(s string) string {
	return hex.EncodeToString([]byte(s))
}

// Decode reverses Encode. Input is case-insensitive; odd length or non-hex
// characters are a validation error.
func Decode(encoded string) (string, error) {
	if encoded == "" {
		return "", errors.New("empty identifier")
	}
	raw, err := hex.DecodeString(strings.ToLower(encoded))
	if err != nil {
		return "", errors.Wrap(err, "malformed hex identifier")
	}
	return string(raw), nil
}
