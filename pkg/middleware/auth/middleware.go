package auth

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/fx"
)

// Middleware authenticates requests from an HS256 bearer token, or from
// X-Dev-* headers when the dev bypass is on.
type Middleware struct {
	secret    []byte
	issuer    string
	audience  string
	leeway    time.Duration
	adminRole string
	devBypass bool
}

type Option func(*Middleware)

func WithSecret(secret []byte) Option { return func(m *Middleware) { m.secret = secret } }
func WithIssuer(iss string) Option    { return func(m *Middleware) { m.issuer = iss } }
func WithAudience(aud string) Option  { return func(m *Middleware) { m.audience = aud } }
func WithAdminRole(r string) Option   { return func(m *Middleware) { m.adminRole = r } }
func WithDevBypass(on bool) Option    { return func(m *Middleware) { m.devBypass = on } }

func WithLeeway(d time.Duration) Option {
	return func(m *Middleware) {
		if d >= 0 {
			m.leeway = d
		}
	}
}

func New(opts ...Option) *Middleware {
	m := &Middleware{leeway: 60 * time.Second}
	for _, o := range opts {
		o(m)
	}
	return m
}

// ProvideAuthentication wires the middleware from env:
//
//	AUTH_JWT_SECRET, AUTH_JWT_ISSUER, AUTH_JWT_AUDIENCE,
//	AUTH_LEEWAY_SECONDS (default 60), ADMIN_ROLE_NAME,
//	AUTH_DEV_BYPASS=true (never in prod)
func ProvideAuthentication() *Middleware {
	opts := []Option{
		WithSecret([]byte(os.Getenv("AUTH_JWT_SECRET"))),
		WithIssuer(strings.TrimSpace(os.Getenv("AUTH_JWT_ISSUER"))),
		WithAudience(strings.TrimSpace(os.Getenv("AUTH_JWT_AUDIENCE"))),
		WithAdminRole(os.Getenv("ADMIN_ROLE_NAME")),
		WithDevBypass(os.Getenv("AUTH_DEV_BYPASS") == "true"),
	}
	if v := strings.TrimSpace(os.Getenv("AUTH_LEEWAY_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			opts = append(opts, WithLeeway(time.Duration(n)*time.Second))
		}
	}
	return New(opts...)
}

var Module = fx.Options(
	fx.Provide(ProvideAuthentication),
)
