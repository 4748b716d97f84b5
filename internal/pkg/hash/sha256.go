package hash

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// SHA256 implements Salted with plain SHA-256 over "salt:plaintext".
type SHA256 struct{}

// NewSHA256 returns a SHA-256 salted hasher.
func NewSHA256() *SHA256 {
	return &SHA256{}
}

// Hash returns the hex-encoded SHA-256 digest of "salt:plaintext".
func (*SHA256) Hash(plaintext, salt string) []byte {
	sum := sha256.Sum256(saltedInput(plaintext, salt))
	result := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(result, sum[:])
	return result
}

// Verify checks whether plaintext and salt hash to hashed.
func (s *SHA256) Verify(hashed, plaintext, salt string) bool {
	return subtle.ConstantTimeCompare([]byte(hashed), s.Hash(plaintext, salt)) == 1
}
