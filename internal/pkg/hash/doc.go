// Package hash provides salted, one-way digests for short secrets.
//
// A digest is computed over the salt and the secret joined as "salt:secret"
// and hex encoded. Only the digest and the salt are ever stored; Verify
// recomputes the digest and compares in constant time.
package hash
