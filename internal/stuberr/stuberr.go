// Package stuberr defines the small, fixed set of status codes the stub
// exchanges with its peer over the wire (rc_req); a failed request is
// converted into a response PDU carrying one of them.
package stuberr

import (
	"errors"
	"fmt"
)

// Code is one of the four outcomes a stub operation can report. The
// numeric values are part of the wire contract (they are written verbatim
// into a PDU header's rc_req field) and must not be renumbered.
type Code int32

const (
	// Success indicates the operation completed normally.
	Success Code = 0
	// TryAgain indicates a receive timed out without completing a PDU;
	// never sent over the wire, only returned internally.
	TryAgain Code = -1
	// InvalidParameter indicates a request used an unsupported access
	// width or an otherwise malformed parameter.
	InvalidParameter Code = -2
	// InvalidState indicates a mapping slot could not be found or
	// allocated, or a hardware resource was used outside its supported
	// access width.
	InvalidState Code = -3
)

func (c Code) String() string {
	switch c {
	case Success:
		return "SUCCESS"
	case TryAgain:
		return "TRY_AGAIN"
	case InvalidParameter:
		return "INVALID_PARAMETER"
	case InvalidState:
		return "INVALID_STATE"
	default:
		return fmt.Sprintf("Code(%d)", int32(c))
	}
}

// Error wraps a Code with an optional underlying cause so callers can use
// errors.Is/errors.As while the dispatcher still only needs the Code to
// build a response PDU.
type Error struct {
	Code  Code
	Cause error
}

func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Cause: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Cause)
	}
	return e.Code.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// CodeOf extracts the wire status code for err, defaulting to
// InvalidState for any error that did not originate from this package —
// an unexpected internal error is as unrecoverable, from the peer's
// point of view, as a hardware resource failure.
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return InvalidState
}
