package entity

import "errors"

var (
	// ErrNotifierUnconfigured mean the mail transport has no host, credentials or sender.
	ErrNotifierUnconfigured = errors.New("auth: notifier is not configured")
	// ErrNotifierFailed mean the mail transport was configured but delivery failed.
	ErrNotifierFailed = errors.New("auth: notifier failed to send")
	// ErrAttemptsExhausted mean the record has no attempt left to charge.
	ErrAttemptsExhausted = errors.New("auth: login code attempts exhausted")
)
