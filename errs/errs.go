// Package errs provides the single error type used across netdrv.
package errs

import "fmt"

// Error is the base error for all netdrv failures -- channel, auth, driver,
// and transport failures all surface as this type so callers can do a single
// type assertion if they need structured handling.
type Error struct {
	Details string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Details, e.Cause)
	}
	return e.Details
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns an Error with the given message.
func New(msg string) *Error {
	return &Error{Details: msg}
}

// Newf returns an Error with a formatted message.
func Newf(format string, args ...any) *Error {
	return &Error{Details: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error that carries msg plus an underlying cause.
func Wrap(msg string, cause error) *Error {
	return &Error{Details: msg, Cause: cause}
}

// Wrapf returns an Error with a formatted message plus an underlying cause.
func Wrapf(format string, cause error, args ...any) *Error {
	return &Error{Details: fmt.Sprintf(format, args...), Cause: cause}
}
