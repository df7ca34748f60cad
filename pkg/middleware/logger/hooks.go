package logger

import (
	"context"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"go.uber.org/zap"
)

type hookObserver struct {
	l *zap.Logger
}

// NewHookObserver logs every hook call: debug on success, warn on failure.
func NewHookObserver(l *zap.Logger) hooks.Observer {
	if l == nil {
		l = zap.NewNop()
	}
	return hookObserver{l: l}
}

func (o hookObserver) ObserveCall(ctx context.Context, info hooks.CallInfo) {
	fields := []zap.Field{
		zap.String("point", info.Point),
		zap.Int("handlers", info.Handlers),
		zap.Bool("cloned", info.Cloned),
		zap.Duration("lat", info.Duration),
	}
	if id := chimd.GetReqID(ctx); id != "" {
		fields = append(fields, zap.String("requestId", id))
	}
	if info.Err != nil {
		o.l.Warn("hook call failed", append(fields, zap.Error(info.Err))...)
		return
	}
	o.l.Debug("hook call", fields...)
}
