package otp

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
)

const (
	// DefaultDigits is the code width used when none is configured.
	DefaultDigits = 6
	// MinSaltBytes is the smallest accepted salt size.
	MinSaltBytes = 16

	maxDigits = 18
)

// ErrInvalidDigits is returned when the configured width cannot be generated.
var ErrInvalidDigits = errors.New("otp: digits must be between 1 and 18")

// Generator produces codes and salts.
type Generator interface {
	// Digits returns the width of every code Code returns.
	Digits() int
	// Code returns a fresh fixed-width decimal code.
	Code() (string, error)
	// Salt returns a fresh random salt in a stable string encoding.
	Salt() (string, error)
}

// Numeric generates zero-padded decimal codes from a cryptographic source.
type Numeric struct {
	digits    int
	saltBytes int
	upper     *big.Int
	format    string
	random    io.Reader
}

// NewNumeric returns a Numeric generator for the given width.
//
// A width of 0 selects DefaultDigits; saltBytes below MinSaltBytes is raised
// to MinSaltBytes.
func NewNumeric(digits, saltBytes int) (*Numeric, error) {
	if digits == 0 {
		digits = DefaultDigits
	}
	if digits < 1 || digits > maxDigits {
		return nil, ErrInvalidDigits
	}
	if saltBytes < MinSaltBytes {
		saltBytes = MinSaltBytes
	}

	return &Numeric{
		digits:    digits,
		saltBytes: saltBytes,
		upper:     new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil),
		format:    fmt.Sprintf("%%0%dd", digits),
		random:    rand.Reader,
	}, nil
}

// Digits returns the code width.
func (n *Numeric) Digits() int {
	return n.digits
}

// Code returns a uniformly random code in [0, 10^digits), left-zero-padded.
func (n *Numeric) Code() (string, error) {
	v, err := rand.Int(n.random, n.upper)
	if err != nil {
		return "", fmt.Errorf("otp: generate code: %w", err)
	}

	return fmt.Sprintf(n.format, v.Int64()), nil
}

// Salt returns saltBytes random bytes, hex encoded.
func (n *Numeric) Salt() (string, error) {
	b := make([]byte, n.saltBytes)
	if _, err := io.ReadFull(n.random, b); err != nil {
		return "", fmt.Errorf("otp: generate salt: %w", err)
	}

	return hex.EncodeToString(b), nil
}
