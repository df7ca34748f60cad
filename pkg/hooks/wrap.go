package hooks

import "context"

// Wrap returns a constructor that captures a context value and yields fn
// with its argument routed through p first. A hook failure is returned
// without calling fn.
func Wrap[A, R, C any](p *Point[A, C], fn func(ctx context.Context, args A) (R, error), opts ...CallOption) func(hc C) func(ctx context.Context, args A) (R, error) {
	return func(hc C) func(ctx context.Context, args A) (R, error) {
		return func(ctx context.Context, args A) (R, error) {
			out, err := p.Call(ctx, args, hc, opts...)
			if err != nil {
				var zero R
				return zero, err
			}
			return fn(ctx, out)
		}
	}
}

// WrapVariadic is Wrap for variadic functions: the positional arguments
// become the point's []T payload and the result is spread back into fn.
func WrapVariadic[T, R, C any](p *Point[[]T, C], fn func(ctx context.Context, args ...T) (R, error), opts ...CallOption) func(hc C) func(ctx context.Context, args ...T) (R, error) {
	wrapped := Wrap(p, func(ctx context.Context, args []T) (R, error) {
		return fn(ctx, args...)
	}, opts...)
	return func(hc C) func(ctx context.Context, args ...T) (R, error) {
		call := wrapped(hc)
		return func(ctx context.Context, args ...T) (R, error) {
			return call(ctx, args)
		}
	}
}
