package hooks

import (
	"errors"
	"fmt"
)

var (
	// ErrTypeMismatch reports a point redefined with other types, or a
	// dynamic call whose payload/context does not fit the point.
	ErrTypeMismatch = errors.New("hooks: type mismatch")

	// ErrClone reports a payload the isolation codec cannot round-trip.
	ErrClone = errors.New("hooks: payload clone failed")
)

// HandlerError wraps the failure of one handler. Index is the handler's
// position in the walk that failed.
type HandlerError struct {
	Point string
	Index int
	Err   error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("hooks: %s handler #%d: %v", e.Point, e.Index, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// PanicError is what a recovered handler panic turns into.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }
