package logger

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/auth"
	"go.uber.org/zap"
)

// Middleware writes one access-log line per request.
type Middleware struct {
	access    *zap.Logger
	bodyPaths []string
}

// NewMiddleware logs to access. Request bodies are redacted unless the path
// starts with one of bodyPaths.
func NewMiddleware(access *zap.Logger, bodyPaths ...string) *Middleware {
	if access == nil {
		access = zap.NewNop()
	}
	m := &Middleware{access: access}
	for _, p := range bodyPaths {
		if p = strings.TrimSpace(p); p != "" {
			m.bodyPaths = append(m.bodyPaths, p)
		}
	}
	return m
}

func (m *Middleware) Middleware(ca *auth.Middleware) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimd.NewWrapResponseWriter(w, r.ProtoMajor)

			// Read and RESTORE request body so downstream can consume it
			var body []byte
			if r.Body != nil {
				if b, err := io.ReadAll(r.Body); err == nil {
					body = b
				}
				r.Body.Close()
				r.Body = io.NopCloser(bytes.NewReader(body))
			}

			scheme := "http"
			if r.TLS != nil {
				scheme = "https"
			}

			start := time.Now()
			defer func() {
				var u auth.User
				if ca != nil {
					u = ca.GetUser(r.Context())
				}
				fields := []zap.Field{
					zap.String("requestId", chimd.GetReqID(r.Context())),
					zap.String("httpScheme", scheme),
					zap.Bool("isAuthenticated", u.Username != ""),
					zap.String("username", u.Username),
					zap.String("role", u.Role.Name),
					zap.String("authenticationProvider", u.AuthenticationSource.Provider),
					zap.String("httpProto", r.Proto),
					zap.String("httpMethod", r.Method),
					zap.String("remoteAddr", r.RemoteAddr),
					zap.String("uri", r.URL.Path),
					zap.Duration("lat", time.Since(start)),
					zap.Int("responseSize", ww.BytesWritten()),
					zap.Int("status", ww.Status()),
				}
				// Redact by default; allowlist small JSON bodies only.
				if m.shouldLogBody(r, body) {
					fields = append(fields, zap.ByteString("requestData", body))
				}
				m.access.Info("http request", fields...)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
