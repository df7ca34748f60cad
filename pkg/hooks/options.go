package hooks

import (
	"context"
	"time"
)

// CallOption tunes a single call.
type CallOption func(*callConfig)

type callConfig struct {
	asRef bool
}

// AsRef skips payload isolation: handlers get the caller's value itself.
// Use it for payloads that cannot be copied structurally or when copying is
// too expensive and handlers are trusted.
func AsRef() CallOption { return func(c *callConfig) { c.asRef = true } }

func newCallConfig(opts []CallOption) callConfig {
	var c callConfig
	for _, o := range opts {
		if o != nil {
			o(&c)
		}
	}
	return c
}

// CallInfo describes one finished call of a point that had handlers.
type CallInfo struct {
	Point    string
	Handlers int // handlers that ran, the failing one included
	Cloned   bool
	Duration time.Duration
	Err      error
}

// Observer is notified after each call that had handlers.
type Observer interface {
	ObserveCall(ctx context.Context, info CallInfo)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, info CallInfo)

func (f ObserverFunc) ObserveCall(ctx context.Context, info CallInfo) { f(ctx, info) }
