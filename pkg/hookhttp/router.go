// pkg/hookhttp/router.go
package hookhttp

import (
	"net/http"
	"strings"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"github.com/joeydtaylor/steeze-hooks/pkg/manifest"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/logger"
	hmetrics "github.com/joeydtaylor/steeze-hooks/pkg/middleware/metrics"
	httpx "github.com/joeydtaylor/steeze-hooks/pkg/transport/httpx"
	"github.com/prometheus/client_golang/prometheus"
)

type Deps struct {
	Registry *hooks.Registry
	Auth     *auth.Middleware
	LogMW    *logger.Middleware
	Metrics  *hmetrics.Collectors
	Gatherer prometheus.Gatherer
	Router   httpx.Router // NewChi when nil
}

// BuildRouter exposes the registry's points over HTTP:
//
//	GET  /ping           heartbeat
//	GET  /metrics        prometheus (when a Gatherer is wired)
//	GET  /hooks          points with their handler counts
//	POST /hooks/{point}  run a point on the JSON request body
func BuildRouter(cfg manifest.Config, d Deps) http.Handler {
	if d.Registry == nil {
		panic("hookhttp: nil registry")
	}
	r := d.Router
	if r == nil {
		r = httpx.NewChi()
	}
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))

	if d.Auth != nil {
		r.Use(d.Auth.Middleware())
	}
	if d.LogMW != nil {
		r.Use(d.LogMW.Middleware(d.Auth))
	}
	if d.Metrics != nil {
		r.Use(d.Metrics.Collect(d.Auth))
	}

	if d.Gatherer != nil {
		r.Get("/metrics", hmetrics.Handler(d.Gatherer))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	s := &server{reg: d.Registry, auth: d.Auth, points: indexPoints(cfg)}
	r.Route("/hooks", func(hr httpx.Router) {
		hr.Get("/", http.HandlerFunc(s.list))
		hr.Post("/{point}", http.HandlerFunc(s.call))
	})
	return r.Mux()
}

// NormalizePath collapses point names for the metrics uri label.
func NormalizePath(p string) string {
	if strings.HasPrefix(p, "/hooks/") {
		return "/hooks/{point}"
	}
	return p
}

func indexPoints(cfg manifest.Config) map[string]manifest.Point {
	m := make(map[string]manifest.Point, len(cfg.Points))
	for _, p := range cfg.Points {
		m[p.Name] = p
	}
	return m
}
