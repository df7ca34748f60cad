package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors groups the HTTP and hook collectors registered on one Registerer.
type Collectors struct {
	responseTime              prometheus.Histogram
	totalHttpRequestsFromRole *prometheus.CounterVec
	totalHttpRequestsToUri    *prometheus.CounterVec
	totalHttpRequests         *prometheus.CounterVec

	hookCalls    *prometheus.CounterVec
	hookDuration *prometheus.HistogramVec
	hookHandlers *prometheus.CounterVec

	skip      map[string]struct{}
	normalize func(path string) string
}

// New creates the collectors and registers them on reg. A nil reg
// registers nowhere, which keeps tests independent of the global registry.
func New(reg prometheus.Registerer, opts ...Option) *Collectors {
	c := &Collectors{
		responseTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "response_time",
			Help:    "http response time.",
			Buckets: []float64{0.005, 0.05, 0.5, 1, 5, 10, 30, 60},
		}),
		totalHttpRequestsFromRole: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "total_http_requests_from_role", Help: "http requests from role"},
			[]string{"role"},
		),
		totalHttpRequestsToUri: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "total_http_requests_to_uri", Help: "http requests to uri"},
			[]string{"code", "uri", "method"},
		),
		totalHttpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "total_http_requests", Help: "http requests by code, and method"},
			[]string{"code", "method"},
		),
		hookCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "hook_calls_total", Help: "hook calls by point and outcome"},
			[]string{"point", "outcome"},
		),
		hookDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hook_call_duration_seconds",
			Help:    "hook call latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"point"}),
		hookHandlers: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "hook_handlers_run_total", Help: "handlers run by point"},
			[]string{"point"},
		),
		skip:      map[string]struct{}{"/metrics": {}},
		normalize: func(p string) string { return p },
	}
	for _, o := range opts {
		o(c)
	}
	if reg != nil {
		reg.MustRegister(
			c.responseTime,
			c.totalHttpRequestsFromRole,
			c.totalHttpRequestsToUri,
			c.totalHttpRequests,
			c.hookCalls,
			c.hookDuration,
			c.hookHandlers,
		)
	}
	return c
}
