package audio

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// EncodeBase64 reads the full WAV payload from r and returns the canonical
// base64 transport string: standard alphabet, no data-URL prefix, no
// whitespace.
func EncodeBase64(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	if len(data) == 0 {
		return "", fmt.Errorf("%w: payload is empty", ErrEncoding)
	}

	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeBase64 decodes a transport string back into raw bytes. It tolerates
// data-URL prefixes ("data:audio/wav;base64,...") and embedded whitespace,
// both of which browsers commonly introduce.
func DecodeBase64(s string) ([]byte, error) {
	if idx := strings.Index(s, ";base64,"); idx >= 0 && strings.HasPrefix(s, "data:") {
		s = s[idx+len(";base64,"):]
	}

	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 audio data: %w", err)
	}

	return data, nil
}
