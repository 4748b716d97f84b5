package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound indicates that the requested resource could not be found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates that the request could not be completed due to a conflict.
	ErrConflict = errors.New("resource conflict")
)

// Type classifies errors into high-level buckets used by the application.
type Type int

const (
	// TypeServer represents server-side failures.
	TypeServer Type = iota
	// TypeBusiness represents business rule violations.
	TypeBusiness
	// TypeValidation represents input validation failures.
	TypeValidation
)

var typeNames = [...]string{
	TypeServer:     "ERROR_TYPE_SERVER",
	TypeBusiness:   "ERROR_TYPE_BUSINESS",
	TypeValidation: "ERROR_TYPE_VALIDATION",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "ERROR_TYPE_UNKNOWN"
	}
	return typeNames[t]
}

// Code is a stable identifier callers branch on. It maps to an HTTP status code.
type Code int

const (
	// CodeInternal represents an unexpected storage, transport or collaborator failure.
	CodeInternal Code = iota
	// CodeInvalidInput indicates malformed input (invalid argument).
	CodeInvalidInput
	// CodeNotFound indicates there is no active resource.
	CodeNotFound
	// CodeExpired indicates the resource exists but its deadline has passed.
	CodeExpired
	// CodeTooManyRequest indicates an attempt budget is exhausted.
	CodeTooManyRequest
	// CodeForbidden indicates the presented secret was rejected (permission denied).
	CodeForbidden
	// CodeFailedPrecondition indicates the system is not in a state to serve the request.
	CodeFailedPrecondition
)

// codeInfo is the wire kind and HTTP status of each Code.
var codeInfo = map[Code]struct {
	kind   string
	status int
}{
	CodeInternal:           {"ERROR_CODE_INTERNAL", http.StatusInternalServerError},
	CodeInvalidInput:       {"ERROR_CODE_INVALID_ARGUMENT", http.StatusUnprocessableEntity},
	CodeNotFound:           {"ERROR_CODE_NOT_FOUND", http.StatusNotFound},
	CodeExpired:            {"ERROR_CODE_DEADLINE_EXCEEDED", http.StatusGone},
	CodeTooManyRequest:     {"ERROR_CODE_RESOURCE_EXHAUSTED", http.StatusTooManyRequests},
	CodeForbidden:          {"ERROR_CODE_PERMISSION_DENIED", http.StatusForbidden},
	CodeFailedPrecondition: {"ERROR_CODE_FAILED_PRECONDITION", http.StatusPreconditionFailed},
}

// String returns the wire kind, such as "ERROR_CODE_NOT_FOUND". Unknown codes
// read as internal.
func (c Code) String() string {
	if info, ok := codeInfo[c]; ok {
		return info.kind
	}
	return codeInfo[CodeInternal].kind
}

// Status returns the HTTP status for c. Unknown codes map to 500.
func (c Code) Status() int {
	if info, ok := codeInfo[c]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Error is a structured error used across the application.
//
// It can wrap an underlying error while also carrying a user-facing message,
// a high-level type, and a stable error code. The message is what callers see;
// the wrapped error is only for logs.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}

	if e.msg != "" {
		return e.msg
	}

	return e.code.String()
}

// String is the form written to logs; it carries the wrapped cause.
func (e *Error) String() string {
	return fmt.Sprintf("%s/%s: %s: %v", e.errType, e.code, e.msg, e.err)
}

// Msg returns the user-facing error message, if set.
func (e *Error) Msg() string {
	return e.msg
}

// Type returns the high-level error type.
func (e *Error) Type() Type {
	return e.errType
}

// Code returns the stable error code.
func (e *Error) Code() Code {
	return e.code
}

// Fields returns validation errors (field to message map), if any.
func (e *Error) Fields() map[string]string {
	return e.fields
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.err
}

// StatusCode maps the error code to an HTTP status code.
func (e *Error) StatusCode() int {
	return e.code.Status()
}

// CodeOf returns the code carried by err, or CodeInternal when err is not an *Error.
func CodeOf(err error) Code {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.code
	}
	return CodeInternal
}

func new(err error, msg string, et Type, code Code) error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer creates a server-type error with the provided error.
func NewServer(err error) error {
	return new(err, "Internal server error", TypeServer, CodeInternal)
}

// NewServerMsg creates a server-type error with a caller-facing message.
func NewServerMsg(err error, msg string) error {
	return new(err, msg, TypeServer, CodeInternal)
}

// NewBusiness creates a business-type error with the specified message and code.
func NewBusiness(msg string, code Code) error {
	return new(nil, msg, TypeBusiness, code)
}

// NewInvalidInput creates a validation error for invalid input with a message and underlying error.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return new(err, "Validation error", TypeValidation, CodeInvalidInput)
	}

	if len(kv)%2 != 0 {
		return new(nil, "Invalid request body", TypeValidation, CodeInvalidInput)
	}

	fields := make(map[string]string, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		fields[kv[i]] = kv[i+1]
	}
	return &Error{msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput, fields: fields}
}

// NewInvalidFormat reports an undecodable request body. Callers see it as
// an invalid argument, the same kind as a field that fails validation.
func NewInvalidFormat(msgs ...string) error {
	msg := "Invalid request body"
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	return &Error{
		msg:     msg,
		errType: TypeValidation,
		code:    CodeInvalidInput,
		fields:  map[string]string{"body": msg},
	}
}
