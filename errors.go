package xstd

import (
	"errors"

	"github.com/hupe1980/xstd/alloc"
)

var (
	// ErrInvalidParameter indicates a nil, zero or malformed argument.
	ErrInvalidParameter = alloc.ErrInvalidParameter

	// ErrOutOfMemory indicates that a backing allocation failed.
	ErrOutOfMemory = alloc.ErrOutOfMemory

	// ErrWouldOverflow indicates that a size computation would overflow.
	ErrWouldOverflow = alloc.ErrWouldOverflow

	// ErrRangeError indicates an index out of bounds or a missing key.
	ErrRangeError = alloc.ErrRangeError

	// ErrFailed is the catch-all for failures without a dedicated code.
	ErrFailed = errors.New("failed")
)

// Code classifies an error.
type Code uint8

const (
	OK Code = iota
	Failed
	RangeError
	OutOfMemory
	InvalidParameter
	WouldOverflow
)

var codeNames = [...]string{
	OK:               "OK",
	Failed:           "FAILED",
	RangeError:       "RANGE ERROR",
	OutOfMemory:      "OUT OF MEMORY",
	InvalidParameter: "INVALID PARAMETER",
	WouldOverflow:    "WOULD OVERFLOW",
}

func (c Code) String() string {
	if int(c) < len(codeNames) {
		return codeNames[c]
	}
	return "UNKNOWN"
}

// Err returns the sentinel error for c, or nil for OK.
func (c Code) Err() error {
	switch c {
	case OK:
		return nil
	case RangeError:
		return ErrRangeError
	case OutOfMemory:
		return ErrOutOfMemory
	case InvalidParameter:
		return ErrInvalidParameter
	case WouldOverflow:
		return ErrWouldOverflow
	default:
		return ErrFailed
	}
}

// CodeOf returns the Code of err. nil maps to OK and errors without a
// dedicated code map to Failed.
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, alloc.ErrInvalidParameter):
		return InvalidParameter
	case errors.Is(err, alloc.ErrOutOfMemory):
		return OutOfMemory
	case errors.Is(err, alloc.ErrWouldOverflow):
		return WouldOverflow
	case errors.Is(err, alloc.ErrRangeError):
		return RangeError
	default:
		return Failed
	}
}
