// Package matching is the marketplace rules engine: vehicle-to-load
// compatibility scoring, the application accept/reject lifecycle and the
// bidding session window rules. It is pure - no I/O, no clock of its own -
// so the same rules can gate an HTTP request and a unit test alike.
package matching

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error so callers can map it to a transport
// status without parsing messages.
type Kind string

const (
	KindValidation Kind = "validation" // malformed or out-of-range input
	KindState      Kind = "state"      // operation invalid for the current lifecycle state
	KindConflict   Kind = "conflict"   // would violate a single-winner / single-session invariant
	KindNotFound   Kind = "not_found"  // referenced entity absent
	KindExternal   Kind = "external"   // a collaborator (API, storage) failed
)

// Error carries a kind plus a human-readable detail.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}

func Statef(format string, args ...any) *Error {
	return &Error{Kind: KindState, Detail: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Detail: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Detail: fmt.Sprintf(format, args...)}
}

func Externalf(format string, args ...any) *Error {
	return &Error{Kind: KindExternal, Detail: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of an engine error, or KindExternal for anything
// that did not originate in this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindExternal
}
