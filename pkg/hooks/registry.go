// pkg/hooks/registry.go
package hooks

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"github.com/joeydtaylor/steeze-hooks/pkg/codec"
)

// Registry holds, per point name, the ordered chain of registered handlers.
// A name with no handlers has no chain at all.
type Registry struct {
	mu     sync.Mutex
	chains map[string]*chain
	defs   map[string]*definition

	codec       codec.Codec
	zeroReplace bool
	observers   []Observer
}

// Option configures a Registry.
type Option func(*Registry)

// WithCodec sets the codec used for payload isolation (default codec.JSON).
func WithCodec(c codec.Codec) Option {
	return func(r *Registry) {
		if c != nil {
			r.codec = c
		}
	}
}

// WithZeroReplacement makes Replace(zero) an actual replacement.
func WithZeroReplacement() Option { return func(r *Registry) { r.zeroReplace = true } }

// WithObserver adds observers notified once per call that had handlers.
func WithObserver(obs ...Observer) Option {
	return func(r *Registry) {
		for _, o := range obs {
			if o != nil {
				r.observers = append(r.observers, o)
			}
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		chains: make(map[string]*chain),
		defs:   make(map[string]*definition),
		codec:  codec.JSON,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// definition pins a name to its payload/context types and carries the
// type-erased entry point used by Registry.Call.
type definition struct {
	payload reflect.Type
	context reflect.Type
	call    func(ctx context.Context, payload, hc any, opts []CallOption) (any, error)
}

type node struct {
	handler any // Handler[P, C] of the point's types
	prev    *node
	next    *node
	removed bool
}

// chain is a doubly linked list. Unlinked nodes keep their next pointer so a
// walk parked on a removed node can still move forward.
type chain struct {
	head, tail *node
}

func (c *chain) push(n *node) {
	if c.tail == nil {
		c.head, c.tail = n, n
		return
	}
	n.prev = c.tail
	c.tail.next = n
	c.tail = n
}

func (c *chain) unlink(n *node) {
	n.removed = true
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev = nil
}

// Registration identifies one registered handler instance.
type Registration struct {
	r    *Registry
	name string
	n    *node
}

// Name is the point the handler is registered on.
func (g *Registration) Name() string { return g.name }

// Unregister removes this handler. Calling it more than once is a no-op.
func (g *Registration) Unregister() { g.r.Unregister(g.name, g) }

// Batch is the result of RegisterMany.
type Batch struct {
	regs []*Registration
}

// Registrations returns the batch's registrations in registration order.
func (b *Batch) Registrations() []*Registration { return append([]*Registration(nil), b.regs...) }

// Unregister undoes exactly the batch, in the order it was registered.
func (b *Batch) Unregister() {
	for _, g := range b.regs {
		g.Unregister()
	}
}

// Binding is one point/handler pair waiting for RegisterMany.
type Binding struct {
	r        *Registry
	register func() *Registration
}

// RegisterMany registers the bindings in argument order.
func (r *Registry) RegisterMany(bindings ...Binding) *Batch {
	b := &Batch{regs: make([]*Registration, 0, len(bindings))}
	for _, bd := range bindings {
		if bd.r != r {
			panic("hooks: binding belongs to another registry")
		}
		b.regs = append(b.regs, bd.register())
	}
	return b
}

// Unregister removes the given registrations from name. Without
// registrations it removes every handler of name. Unknown names and
// registrations are ignored.
func (r *Registry) Unregister(name string, regs ...*Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.chains[name]
	if !ok {
		return
	}
	if len(regs) == 0 {
		for n := c.head; n != nil; n = n.next {
			n.removed = true
		}
		delete(r.chains, name)
		return
	}
	for _, g := range regs {
		if g == nil || g.r != r || g.name != name || g.n.removed {
			continue
		}
		c.unlink(g.n)
	}
	if c.head == nil {
		delete(r.chains, name)
	}
}

// Has reports whether name has at least one handler.
func (r *Registry) Has(name string) bool { return r.Len(name) > 0 }

// Len returns the number of handlers registered on name.
func (r *Registry) Len(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chains[name]
	if !ok {
		return 0
	}
	n := 0
	for x := c.head; x != nil; x = x.next {
		n++
	}
	return n
}

// Names returns the sorted names that currently have handlers.
func (r *Registry) Names() []string {
	r.mu.Lock()
	names := make([]string, 0, len(r.chains))
	for name := range r.chains {
		names = append(names, name)
	}
	r.mu.Unlock()
	sort.Strings(names)
	return names
}

// Defined reports whether a point was defined under name.
func (r *Registry) Defined(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.defs[name]
	return ok
}

// Call runs the point defined under name with dynamically typed values. An
// undefined name behaves like a point without handlers. A nil payload or hc
// stands for the zero value of the point's type.
func (r *Registry) Call(ctx context.Context, name string, payload, hc any, opts ...CallOption) (any, error) {
	r.mu.Lock()
	def, ok := r.defs[name]
	r.mu.Unlock()
	if !ok {
		return payload, nil
	}
	return def.call(ctx, payload, hc, opts)
}

func (r *Registry) add(name string, h any) *Registration {
	n := &node{handler: h}
	r.mu.Lock()
	c, ok := r.chains[name]
	if !ok {
		c = &chain{}
		r.chains[name] = c
	}
	c.push(n)
	r.mu.Unlock()
	return &Registration{r: r, name: name, n: n}
}

func (r *Registry) first(name string) *node {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.chains[name]; ok {
		return c.head
	}
	return nil
}

func (r *Registry) after(n *node) *node {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := n.next
	for next != nil && next.removed {
		next = next.next
	}
	return next
}

func (r *Registry) observe(ctx context.Context, info CallInfo) {
	for _, o := range r.observers {
		o.ObserveCall(ctx, info)
	}
}
