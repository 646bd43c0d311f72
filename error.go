package fpromise

import "fmt"

type StatusCode int

const (
	StatusNoFiberContext StatusCode = iota + 1
	StatusAlreadyWaiting
	StatusFunnelClosed
	StatusInvalidArgument
	StatusInvalidAdjustResult
	StatusFiberPanic
)

func (c StatusCode) String() string {
	switch c {
	case StatusNoFiberContext:
		return "no fiber context"
	case StatusAlreadyWaiting:
		return "already waiting"
	case StatusFunnelClosed:
		return "funnel closed"
	case StatusInvalidArgument:
		return "invalid argument"
	case StatusInvalidAdjustResult:
		return "invalid adjust result"
	case StatusFiberPanic:
		return "fiber panic"
	default:
		panic("invalid status code")
	}
}

// Error is the error type returned by all fpromise operations. Two Errors
// match under errors.Is when their status codes are equal, so callers can
// test against the exported sentinel values.
type Error struct {
	code  StatusCode
	cause error
}

func NewError(code StatusCode, cause error) *Error {
	return &Error{
		code:  code,
		cause: cause,
	}
}

func (e *Error) Code() StatusCode {
	return e.code
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.code, e.cause)
	}
	return e.code.String()
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.code == e.code
}

var (
	ErrNoFiberContext      = NewError(StatusNoFiberContext, nil)
	ErrAlreadyWaiting      = NewError(StatusAlreadyWaiting, nil)
	ErrFunnelClosed        = NewError(StatusFunnelClosed, nil)
	ErrInvalidArgument     = NewError(StatusInvalidArgument, nil)
	ErrInvalidAdjustResult = NewError(StatusInvalidAdjustResult, nil)
	ErrFiberPanic          = NewError(StatusFiberPanic, nil)
)

// PanicError carries the value recovered from a panicking fiber body along
// with the stack captured at the panic site. The stack is presentation only.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
