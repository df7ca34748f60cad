// Package hooks is an extension-point registry.
//
// Independent code declares typed hook points on a Registry, attaches
// handlers to them, and later calls a point: its handlers run one after
// another in registration order, each one free to replace the payload the
// next handler sees.
//
//	r := hooks.New()
//	double := hooks.MustDefine[int, struct{}](r, "number")
//
//	reg := double.Register(func(_ context.Context, n int, _ struct{}) (hooks.Result[int], error) {
//		return hooks.Replace(n * 2), nil
//	})
//	defer reg.Unregister()
//
//	n, err := double.Call(ctx, 1, struct{}{}) // 2, nil
//
// # Payload isolation
//
// Unless AsRef is passed, the payload is deep-copied through a codec
// round-trip before the first handler runs, so handlers never touch the
// caller's value. Only structural data survives the copy: funcs, channels and
// cyclic graphs fail with ErrClone, unexported fields are dropped, and `any`
// payloads come back as map[string]any / []any / float64. A point with no
// handlers returns the payload as given, uncopied.
//
// # Replacement rule
//
// A handler result replaces the payload only when it carries a non-zero
// value. Keep() and Replace(zero) both mean "no change" unless the registry
// was built with WithZeroReplacement.
//
// # Live chains
//
// A call walks the point's chain node by node while it runs. Handlers
// appended during an in-flight call run later in that same call. Handlers
// removed before their turn do not run. Calls are never aborted between
// handlers; a handler that blocks on ctx must watch ctx itself.
package hooks
