package logger

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func ProvideLoggerMiddleware(c Config) *Middleware {
	return NewMiddleware(New("http-access.log", c), "/hooks/")
}

func ProvideLogger(c Config) *zap.Logger { return New("system.log", c) }

// Module needs a Config in the graph (fx.Supply(logger.DefaultConfig())).
var Module = fx.Options(
	fx.Provide(ProvideLoggerMiddleware),
	fx.Provide(ProvideLogger),
)
