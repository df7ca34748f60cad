package hooks

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"
)

// Point is a typed handle on one hook-point name of a Registry.
type Point[P, C any] struct {
	r    *Registry
	name string
}

// Define declares name with payload type P and context type C. Defining a
// name again with the same types yields an equivalent point; other types fail
// with ErrTypeMismatch.
func Define[P, C any](r *Registry, name string) (*Point[P, C], error) {
	if r == nil {
		panic("hooks: nil registry")
	}
	p := &Point[P, C]{r: r, name: name}
	pt, ct := typeOf[P](), typeOf[C]()

	r.mu.Lock()
	defer r.mu.Unlock()
	if def, ok := r.defs[name]; ok {
		if def.payload != pt || def.context != ct {
			return nil, fmt.Errorf("%w: %q defined as (%v, %v), not (%v, %v)",
				ErrTypeMismatch, name, def.payload, def.context, pt, ct)
		}
		return p, nil
	}
	r.defs[name] = &definition{payload: pt, context: ct, call: p.callAny}
	return p, nil
}

// MustDefine is Define that panics on error.
func MustDefine[P, C any](r *Registry, name string) *Point[P, C] {
	p, err := Define[P, C](r, name)
	if err != nil {
		panic(err)
	}
	return p
}

// Name returns the point's name.
func (p *Point[P, C]) Name() string { return p.name }

// Registry returns the registry the point belongs to.
func (p *Point[P, C]) Registry() *Registry { return p.r }

// Register appends h to the point's chain.
func (p *Point[P, C]) Register(h Handler[P, C]) *Registration {
	if h == nil {
		panic("hooks: nil handler for " + p.name)
	}
	return p.r.add(p.name, h)
}

// Bind prepares h for Registry.RegisterMany.
func (p *Point[P, C]) Bind(h Handler[P, C]) Binding {
	if h == nil {
		panic("hooks: nil handler for " + p.name)
	}
	return Binding{r: p.r, register: func() *Registration { return p.r.add(p.name, h) }}
}

// Unregister removes the given registrations, or every handler when none
// are given.
func (p *Point[P, C]) Unregister(regs ...*Registration) { p.r.Unregister(p.name, regs...) }

// Len returns the number of handlers on the point.
func (p *Point[P, C]) Len() int { return p.r.Len(p.name) }

// Call threads payload through the point's handlers and returns the final
// payload. Without handlers the payload comes back untouched. On a handler
// failure the payload produced so far is returned with a *HandlerError.
func (p *Point[P, C]) Call(ctx context.Context, payload P, hc C, opts ...CallOption) (P, error) {
	n := p.r.first(p.name)
	if n == nil {
		return payload, nil
	}
	cfg := newCallConfig(opts)
	start := time.Now()
	info := CallInfo{Point: p.name, Cloned: !cfg.asRef}

	cur := payload
	if !cfg.asRef {
		c, err := DeepClone(p.r.codec, payload)
		if err != nil {
			err = fmt.Errorf("hooks: %s: %w", p.name, err)
			info.Duration, info.Err = time.Since(start), err
			p.r.observe(ctx, info)
			return payload, err
		}
		cur = c
	}

	for ; n != nil; n = p.r.after(n) {
		h := n.handler.(Handler[P, C])
		res, err := invoke(ctx, h, cur, hc)
		info.Handlers++
		if err != nil {
			err = &HandlerError{Point: p.name, Index: info.Handlers - 1, Err: err}
			info.Duration, info.Err = time.Since(start), err
			p.r.observe(ctx, info)
			return cur, err
		}
		if v, ok := res.Value(); ok && (p.r.zeroReplace || !isZero(v)) {
			cur = v
		}
	}

	info.Duration = time.Since(start)
	p.r.observe(ctx, info)
	return cur, nil
}

func (p *Point[P, C]) callAny(ctx context.Context, payload, hc any, opts []CallOption) (any, error) {
	pv, ok := as[P](payload)
	if !ok {
		return payload, fmt.Errorf("%w: %q payload %T, want %v", ErrTypeMismatch, p.name, payload, typeOf[P]())
	}
	cv, ok := as[C](hc)
	if !ok {
		return payload, fmt.Errorf("%w: %q context %T, want %v", ErrTypeMismatch, p.name, hc, typeOf[C]())
	}
	return p.Call(ctx, pv, cv, opts...)
}

func invoke[P, C any](ctx context.Context, h Handler[P, C], payload P, hc C) (res Result[P], err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()
	return h(ctx, payload, hc)
}

func as[T any](v any) (T, bool) {
	var zero T
	if v == nil {
		return zero, true
	}
	t, ok := v.(T)
	return t, ok
}
