package codec

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/tidwall/pretty"
)

// EncodeShareLink packs a tree into a URL-safe token: compact JSON,
// base64 with '+' swapped for '-', '/' for '_', and padding stripped.
func EncodeShareLink(t map[string]any) (string, error) {
	data, err := EncodeDelta(t)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(pretty.Ugly(data)), nil
}

// DecodeShareLink unpacks a share-link token. Standard-alphabet and
// padded tokens are accepted too. Malformed tokens fail with
// ErrInvalidShareLink; callers treat that as "no shared overrides".
func DecodeShareLink(token string) (map[string]any, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidShareLink
	}

	s := strings.ReplaceAll(token, "-", "+")
	s = strings.ReplaceAll(s, "_", "/")
	s = strings.TrimRight(s, "=")
	if rem := len(s) % 4; rem != 0 {
		s += strings.Repeat("=", 4-rem)
	}

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShareLink, err)
	}
	m, err := DecodeOverrides(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShareLink, err)
	}
	return m, nil
}
