package hash

// Salted hashes a secret together with a per-record salt.
type Salted interface {
	// Hash returns the hex digest of salt and plaintext. It is deterministic.
	Hash(plaintext, salt string) []byte
	// Verify reports whether plaintext and salt produce hashed.
	Verify(hashed, plaintext, salt string) bool
}

func saltedInput(plaintext, salt string) []byte {
	return []byte(salt + ":" + plaintext)
}
