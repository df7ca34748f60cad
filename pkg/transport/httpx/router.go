// pkg/transport/httpx/router.go
package httpx

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
)

// Router is what the hook surface needs from an HTTP router.
type Router interface {
	Get(path string, h http.Handler)
	Post(path string, h http.Handler)
	// Route mounts a sub-router under prefix; fn registers its routes.
	Route(prefix string, fn func(Router))
	NotFound(h http.HandlerFunc)
	MethodNotAllowed(h http.HandlerFunc)
	Use(mw ...func(http.Handler) http.Handler)
	Routes() []Route
	Mux() http.Handler
}

// Route is one registered method + pattern.
type Route struct {
	Method  string
	Pattern string
}

type chiRouter struct{ r chi.Router }

// NewChi returns a chi/v5 backed Router.
func NewChi() Router { return &chiRouter{r: chi.NewRouter()} }

func (c *chiRouter) Get(path string, h http.Handler)           { c.r.Method(http.MethodGet, path, h) }
func (c *chiRouter) Post(path string, h http.Handler)          { c.r.Method(http.MethodPost, path, h) }
func (c *chiRouter) NotFound(h http.HandlerFunc)               { c.r.NotFound(h) }
func (c *chiRouter) MethodNotAllowed(h http.HandlerFunc)       { c.r.MethodNotAllowed(h) }
func (c *chiRouter) Use(mw ...func(http.Handler) http.Handler) { c.r.Use(mw...) }
func (c *chiRouter) Mux() http.Handler                         { return c.r }

func (c *chiRouter) Route(prefix string, fn func(Router)) {
	c.r.Route(prefix, func(sub chi.Router) { fn(&chiRouter{r: sub}) })
}

// Routes lists every route, sorted by pattern then method.
func (c *chiRouter) Routes() []Route {
	var out []Route
	_ = chi.Walk(c.r, func(method, pattern string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		out = append(out, Route{Method: method, Pattern: pattern})
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pattern != out[j].Pattern {
			return out[i].Pattern < out[j].Pattern
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// URLParam returns a path parameter captured by a chi route.
func URLParam(r *http.Request, key string) string { return chi.URLParam(r, key) }
