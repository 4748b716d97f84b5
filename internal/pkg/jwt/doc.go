// Package jwt issues and verifies the session tokens handed out after a
// successful one-time-code login.
//
// Tokens are HS512 signed and carry the principal id as the subject plus the
// verified email address.
package jwt
