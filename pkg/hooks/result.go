package hooks

import (
	"context"
	"reflect"
)

// Handler is one unit of behavior attached to a point. It sees the current
// payload and the call's shared context value hc.
type Handler[P, C any] func(ctx context.Context, payload P, hc C) (Result[P], error)

// Result is a handler's verdict on the payload.
type Result[P any] struct {
	value P
	ok    bool
}

// Keep leaves the payload as it is.
func Keep[P any]() Result[P] { return Result[P]{} }

// Replace hands v to the next handler.
func Replace[P any](v P) Result[P] { return Result[P]{value: v, ok: true} }

// Value returns the replacement and whether there is one.
func (r Result[P]) Value() (P, bool) { return r.value, r.ok }

// Tap adapts an observe-only function.
func Tap[P, C any](fn func(ctx context.Context, payload P, hc C) error) Handler[P, C] {
	return func(ctx context.Context, payload P, hc C) (Result[P], error) {
		return Keep[P](), fn(ctx, payload, hc)
	}
}

// Map adapts a function that always returns the next payload.
func Map[P, C any](fn func(ctx context.Context, payload P, hc C) (P, error)) Handler[P, C] {
	return func(ctx context.Context, payload P, hc C) (Result[P], error) {
		out, err := fn(ctx, payload, hc)
		if err != nil {
			return Keep[P](), err
		}
		return Replace(out), nil
	}
}

// isZero unwraps interface values so that an `any` holding 0 or "" counts as
// zero too.
func isZero[P any](v P) bool {
	rv := reflect.ValueOf(&v).Elem()
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return true
		}
		rv = rv.Elem()
	}
	return rv.IsZero()
}
