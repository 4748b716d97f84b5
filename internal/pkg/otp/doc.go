// Package otp generates one-time numeric codes and their salts.
//
// Codes are drawn uniformly from [0, 10^digits) using crypto/rand and
// rendered zero-padded to a fixed width, so "042517" is as likely as
// "999999". Salts are random bytes rendered as hex.
package otp
