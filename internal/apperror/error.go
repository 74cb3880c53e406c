// Package apperror classifies failures coming out of the services so the
// menu can log them with a stable code.
package apperror

import "errors"

type Code string

const (
	// CodeValidation marks input the store rejected, such as a role pointing
	// at a missing department.
	CodeValidation Code = "validation"
	// CodeConflict marks a uniqueness violation.
	CodeConflict Code = "conflict"
	// CodeQueryFailure marks a read or write the database could not run.
	CodeQueryFailure Code = "query_failure"
	CodeInternal     Code = "internal"
)

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to a lower-level cause.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// GetCode returns the code of the first *Error in err's chain. Errors from
// outside the services count as internal.
func GetCode(err error) Code {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}
