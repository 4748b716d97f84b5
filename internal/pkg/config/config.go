// Package config exposes typed lookups over dotted configuration keys such as
// "modules.auth.max_attempts".
package config

import (
	"io"
	"time"
)

// DurationConfig reads integer keys as durations in the unit the key name carries.
type DurationConfig interface {
	// GetSecond reads key as a number of seconds. A missing key yields 0.
	GetSecond(key string) time.Duration

	// GetMinute reads key as a number of minutes. A missing key yields 0.
	GetMinute(key string) time.Duration
}

// Config is the read-only view over the service configuration.
//
// Lookups never fail: a missing or unparsable key yields the zero value, and
// callers fall back to their own defaults.
type Config interface {
	io.Closer
	DurationConfig

	GetInt(key string) int
	GetInt32(key string) int32
	GetFloat64(key string) float64
	GetBool(key string) bool
	GetString(key string) string

	// GetBinary decodes a base64 value, such as inline credentials JSON.
	GetBinary(key string) []byte

	// GetArray accepts a YAML sequence or a comma separated string. Blank
	// elements are dropped.
	GetArray(key string) []string
}
