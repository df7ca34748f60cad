package metrics

import (
	"context"
	"errors"

	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
)

// ObserveCall makes Collectors a hooks.Observer.
func (c *Collectors) ObserveCall(_ context.Context, info hooks.CallInfo) {
	outcome := "ok"
	switch {
	case errors.Is(info.Err, hooks.ErrClone):
		outcome = "clone_error"
	case info.Err != nil:
		outcome = "error"
	}
	c.hookCalls.WithLabelValues(info.Point, outcome).Inc()
	c.hookDuration.WithLabelValues(info.Point).Observe(info.Duration.Seconds())
	c.hookHandlers.WithLabelValues(info.Point).Add(float64(info.Handlers))
}
