package graft

import (
	"errors"
	"fmt"
)

// Code categorizes errors returned by store operations.
type Code string

const (
	// CodeDuplicateKey indicates a uniqueness violation on a create
	// without replace: the name, edge, tag, or attachment key is already
	// bound.
	CodeDuplicateKey Code = "DUPLICATE_KEY"

	// CodeUnknownHash indicates a blob attachment referencing content the
	// store does not hold.
	CodeUnknownHash Code = "UNKNOWN_HASH"

	// CodeMalformed indicates invalid input: an oversized or non-UTF-8
	// string, an unparsable MIME type, or a syntactically or semantically
	// invalid query.
	CodeMalformed Code = "MALFORMED"

	// CodeNotFound indicates a required reference that is missing, such as
	// a fact naming an atom that does not exist, or fetching an unstored
	// blob. An empty query result is not an error.
	CodeNotFound Code = "NOT_FOUND"

	// CodeIOFailure indicates a transient storage fault. The whole
	// operation is safe to retry.
	CodeIOFailure Code = "IO_FAILURE"

	// CodeConflict indicates an isolation violation detected by the
	// backing store under contention. The whole operation is safe to
	// retry.
	CodeConflict Code = "CONFLICT"
)

// Error is the structured error type for all store operations. Every error
// surfaced by a Conn either is an *Error or wraps one.
//
// No operation partially applies its effect: an Error means the operation
// had no durable effect (except that a blob ingest may leave an
// unreferenced, invisible temp file behind).
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an *Error with a formatted message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsDuplicateKey reports whether err is a uniqueness violation.
// Uses errors.As to handle wrapped errors.
func IsDuplicateKey(err error) bool { return is(err, CodeDuplicateKey) }

// IsUnknownHash reports whether err references unstored blob content.
func IsUnknownHash(err error) bool { return is(err, CodeUnknownHash) }

// IsMalformed reports whether err is a validation or query-syntax error.
func IsMalformed(err error) bool { return is(err, CodeMalformed) }

// IsNotFound reports whether err is a missing required reference.
func IsNotFound(err error) bool { return is(err, CodeNotFound) }

// IsConflict reports whether err is a retryable isolation conflict.
func IsConflict(err error) bool { return is(err, CodeConflict) }
