// Package codec holds the textual encodings used at the edges of the tool:
// base64 for signing keys and hex for content keys.
package codec

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/idelchi/gogen/pkg/key"
)

// KeyHexLength is the number of hex characters of a content key.
const KeyHexLength = 64

var (
	// ErrDecode is returned for malformed base64 input.
	ErrDecode = errors.New("invalid base64 input")
	// ErrKeyFormat is returned for content keys that are not 64 hex characters.
	ErrKeyFormat = errors.New("invalid encryption key (must be 64 hex characters)")
)

// EncodeBase64 encodes src with the standard, padded alphabet.
func EncodeBase64(src []byte) string {
	return base64.StdEncoding.EncodeToString(src)
}

// DecodeBase64 decodes standard, padded base64. Surrounding whitespace is ignored.
func DecodeBase64(s string) ([]byte, error) {
	out, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return out, nil
}

// ParseKeyHex decodes a 64-character, case-insensitive hex string into a
// 32-byte key.
func ParseKeyHex(s string) ([]byte, error) {
	if len(s) != KeyHexLength {
		return nil, fmt.Errorf("%w: got %d characters", ErrKeyFormat, len(s))
	}

	for _, r := range s {
		if !isHex(r) {
			return nil, fmt.Errorf("%w: unexpected character %q", ErrKeyFormat, r)
		}
	}

	decoded, err := key.FromHex(strings.ToLower(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyFormat, err)
	}

	return decoded, nil
}

// EncodeKeyHex formats a content key as lowercase hex.
func EncodeKeyHex(key []byte) string {
	return hex.EncodeToString(key)
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
