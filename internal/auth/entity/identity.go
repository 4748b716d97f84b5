package entity

import (
	"encoding/base64"
	"strings"
)

// NormalizeIdentity trims surrounding whitespace and lowercases the address.
func NormalizeIdentity(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// StoreKey is the storage key of a normalized identity: unpadded URL-safe base64 of its UTF-8 bytes.
func StoreKey(identity string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(identity))
}
