package metrics

import "strings"

type Option func(*Collectors)

// WithSkipPaths extends the paths the HTTP middleware ignores (default "/metrics").
func WithSkipPaths(paths ...string) Option {
	return func(c *Collectors) {
		for _, p := range paths {
			if p = strings.TrimSpace(p); p != "" {
				c.skip[p] = struct{}{}
			}
		}
	}
}

// WithPathNormalizer sets how the uri label is derived from a request path,
// e.g. to collapse IDs. The default keeps the path unchanged.
func WithPathNormalizer(fn func(path string) string) Option {
	return func(c *Collectors) {
		if fn != nil {
			c.normalize = fn
		}
	}
}
