// Package mail defines the contracts for sending email messages.
//
// Use cases work with the Mail interface and Message payload. The SMTP
// implementation connects lazily on the first send and keeps the connection
// for later sends, re-dialing when the server drops it.
package mail
