// bundlefx/bundlefx.go
package bundlefx

import (
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/metrics"
	"go.uber.org/fx"
)

// Module provides the auth middleware, the system logger and access-log
// middleware (given a logger.Config), and the prometheus registry.
var Module = fx.Options(
	auth.Module,
	logger.Module,
	metrics.Module,
)
