package hooks_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type caseMapper struct {
	apply func(string) string
}

func concat(_ context.Context, parts ...string) (string, error) {
	return strings.Join(parts, " "), nil
}

func TestWrapVariadic_TransformsArgsWithContext(t *testing.T) {
	r := hooks.New()
	p := hooks.MustDefine[[]string, caseMapper](r, "concat")
	p.Register(hooks.Map(func(_ context.Context, args []string, hc caseMapper) ([]string, error) {
		out := make([]string, len(args))
		for i, a := range args {
			out[i] = hc.apply(a)
		}
		return out, nil
	}))

	upper := hooks.WrapVariadic(p, concat)(caseMapper{apply: strings.ToUpper})
	got, err := upper(context.Background(), "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, "HELLO WORLD", got)

	lower := hooks.WrapVariadic(p, concat)(caseMapper{apply: strings.ToLower})
	got, err = lower(context.Background(), "Hello", "World")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
}

func TestWrap_WithoutHandlersCallsThrough(t *testing.T) {
	r := hooks.New()
	p := hooks.MustDefine[[]string, caseMapper](r, "plain")

	got, err := hooks.WrapVariadic(p, concat)(caseMapper{})(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a b", got)
}

func TestWrap_HookFailureSkipsFunction(t *testing.T) {
	r := hooks.New()
	p := hooks.MustDefine[int, none](r, "guarded")
	denied := errors.New("denied")
	p.Register(func(context.Context, int, none) (hooks.Result[int], error) { return hooks.Keep[int](), denied })

	var called bool
	fn := hooks.Wrap(p, func(_ context.Context, n int) (string, error) {
		called = true
		return "ran", nil
	})(none{})

	got, err := fn(context.Background(), 1)
	assert.ErrorIs(t, err, denied)
	assert.Empty(t, got)
	assert.False(t, called)
}

func TestWrap_StructArgsAreIsolated(t *testing.T) {
	type order struct {
		Items []string `json:"items"`
		Total int      `json:"total"`
	}
	r := hooks.New()
	p := hooks.MustDefine[*order, none](r, "order")
	p.Register(func(_ context.Context, o *order, _ none) (hooks.Result[*order], error) {
		o.Items = append(o.Items, "gift")
		o.Total++
		return hooks.Keep[*order](), nil
	})

	var seen *order
	fn := hooks.Wrap(p, func(_ context.Context, o *order) (int, error) {
		seen = o
		return o.Total, nil
	})(none{})

	in := &order{Items: []string{"book"}, Total: 1}
	total, err := fn(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"book", "gift"}, seen.Items)
	assert.Equal(t, []string{"book"}, in.Items)
}
