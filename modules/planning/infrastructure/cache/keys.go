package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
)

// Fingerprint identifies one upstream GET request. Query parameters are encoded in
// sorted key order so equal requests map to equal keys.
func Fingerprint(endpoint string, params url.Values) string {
	raw := "GET " + endpoint
	if q := params.Encode(); q != "" {
		raw += "?" + q
	}
	return digest(raw)
}

// LogicalKey names an aggregate result, such as a whole collection fetched page by page.
// Logical keys never collide with request fingerprints.
func LogicalKey(name string) string {
	return digest("logical:" + name)
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func validKey(key string) bool {
	if key == "" || len(key) > 128 {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
