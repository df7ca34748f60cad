package hooks_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLive_HandlerAddedDuringCallRuns(t *testing.T) {
	r := hooks.New()
	p := hooks.MustDefine[int, none](r, "grow")

	var calls []string
	p.Register(func(_ context.Context, n int, _ none) (hooks.Result[int], error) {
		calls = append(calls, "first")
		p.Register(recorder[int](&calls, "late"))
		return hooks.Keep[int](), nil
	})

	_, err := p.Call(context.Background(), 1, none{})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "late"}, calls)
	assert.Equal(t, 2, p.Len())
}

func TestLive_HandlerRemovedBeforeItRunsIsSkipped(t *testing.T) {
	r := hooks.New()
	p := hooks.MustDefine[int, none](r, "shrink")

	var calls []string
	var second *hooks.Registration
	p.Register(func(_ context.Context, n int, _ none) (hooks.Result[int], error) {
		calls = append(calls, "first")
		second.Unregister()
		return hooks.Keep[int](), nil
	})
	second = p.Register(recorder[int](&calls, "second"))
	p.Register(recorder[int](&calls, "third"))

	_, err := p.Call(context.Background(), 1, none{})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "third"}, calls)
}

func TestLive_HandlerRemovingItselfContinuesChain(t *testing.T) {
	r := hooks.New()
	p := hooks.MustDefine[int, none](r, "once")

	var calls []string
	var self *hooks.Registration
	self = p.Register(func(_ context.Context, n int, _ none) (hooks.Result[int], error) {
		calls = append(calls, "once")
		self.Unregister()
		return hooks.Replace(n + 1), nil
	})
	p.Register(recorder[int](&calls, "after"))

	got, err := p.Call(context.Background(), 1, none{})
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.Equal(t, []string{"once", "after"}, calls)

	calls = nil
	got, err = p.Call(context.Background(), 1, none{})
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, []string{"after"}, calls)
}

func TestLive_RemoveAllStopsWalk(t *testing.T) {
	r := hooks.New()
	p := hooks.MustDefine[int, none](r, "wipe")

	var calls []string
	p.Register(func(_ context.Context, n int, _ none) (hooks.Result[int], error) {
		calls = append(calls, "wiper")
		p.Unregister()
		return hooks.Keep[int](), nil
	})
	p.Register(recorder[int](&calls, "never"))

	_, err := p.Call(context.Background(), 1, none{})
	require.NoError(t, err)
	assert.Equal(t, []string{"wiper"}, calls)
	assert.False(t, r.Has("wipe"))
}

func TestLive_RegisterFromAnotherGoroutineWhileBlocked(t *testing.T) {
	r := hooks.New()
	p := hooks.MustDefine[int, none](r, "async")

	entered := make(chan struct{})
	release := make(chan struct{})
	p.Register(func(_ context.Context, n int, _ none) (hooks.Result[int], error) {
		close(entered)
		<-release
		return hooks.Replace(n * 2), nil
	})

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := p.Call(context.Background(), 3, none{})
		done <- result{n, err}
	}()

	<-entered
	p.Register(hooks.Map(func(_ context.Context, n int, _ none) (int, error) { return n + 1, nil }))
	close(release)

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Equal(t, 7, res.n)
	case <-time.After(2 * time.Second):
		t.Fatal("call did not finish")
	}
}

func TestLive_ConcurrentCallsAndRegistrations(t *testing.T) {
	r := hooks.New()
	p := hooks.MustDefine[map[string]int, none](r, "concurrent")
	p.Register(hooks.Map(func(_ context.Context, m map[string]int, _ none) (map[string]int, error) {
		m["seen"]++
		return m, nil
	}))

	in := map[string]int{"seen": 0}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			out, err := p.Call(context.Background(), in, none{})
			assert.NoError(t, err)
			assert.GreaterOrEqual(t, out["seen"], 1)
		}()
		go func() {
			defer wg.Done()
			reg := p.Register(hooks.Tap(func(context.Context, map[string]int, none) error { return nil }))
			reg.Unregister()
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, in["seen"])
	assert.Equal(t, 1, p.Len())
}
