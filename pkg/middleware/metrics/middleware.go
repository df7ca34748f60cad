package metrics

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/auth"
)

// Collect produces the HTTP middleware that records the counters/histogram.
func (c *Collectors) Collect(ca *auth.Middleware) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			startTime := time.Now()

			defer func() {
				if _, skip := c.skip[r.URL.Path]; skip {
					return
				}
				role := ""
				if ca != nil {
					role = ca.GetUser(r.Context()).Role.Name
				}
				code := strconv.Itoa(ww.Status())
				uri := c.normalize(r.URL.Path) // path only; avoid cardinality explosion

				c.totalHttpRequestsFromRole.WithLabelValues(role).Inc()
				c.totalHttpRequestsToUri.WithLabelValues(code, uri, r.Method).Inc()
				c.totalHttpRequests.WithLabelValues(code, r.Method).Inc()
				c.responseTime.Observe(time.Since(startTime).Seconds())
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
