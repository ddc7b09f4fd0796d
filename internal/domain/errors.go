package domain

import (
	"errors"
	"fmt"
)

// ErrorKind tags an error with its place in the error taxonomy.
type ErrorKind string

const (
	KindInvalidInput        ErrorKind = "InvalidInput"
	KindNotFound            ErrorKind = "NotFound"
	KindInvalidRateData     ErrorKind = "InvalidRateData"
	KindIndexDrift          ErrorKind = "IndexDrift"
	KindConstraintViolation ErrorKind = "ConstraintViolation"
)

// Error is a classified error. Two Errors match under errors.Is when their kinds match.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidInput        = &Error{Kind: KindInvalidInput, Message: string(KindInvalidInput)}
	ErrNotFound            = &Error{Kind: KindNotFound, Message: string(KindNotFound)}
	ErrInvalidRateData     = &Error{Kind: KindInvalidRateData, Message: string(KindInvalidRateData)}
	ErrIndexDrift          = &Error{Kind: KindIndexDrift, Message: string(KindIndexDrift)}
	ErrConstraintViolation = &Error{Kind: KindConstraintViolation, Message: string(KindConstraintViolation)}
)

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func InvalidInput(format string, args ...any) *Error {
	return newError(KindInvalidInput, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func InvalidRateData(format string, args ...any) *Error {
	return newError(KindInvalidRateData, format, args...)
}

func IndexDrift(format string, args ...any) *Error {
	return newError(KindIndexDrift, format, args...)
}

func ConstraintViolation(format string, args ...any) *Error {
	return newError(KindConstraintViolation, format, args...)
}

// RateNotFound is the NotFound error for a missing rate code.
func RateNotFound(code string) *Error {
	return NotFound("rate %q not found", code)
}

// KindOf returns the kind of the outermost classified error in err's chain,
// or "" when err is not classified.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
