package compress

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeBase64 decodes an inline manifest payload. It accepts an optional
// "base64:" prefix, embedded whitespace, both the standard and URL alphabets,
// and missing padding.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "base64:")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		case '-':
			return '+'
		case '_':
			return '/'
		}
		return r
	}, s)
	s = strings.TrimRight(s, "=")

	data, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 payload: %w", err)
	}
	return data, nil
}
