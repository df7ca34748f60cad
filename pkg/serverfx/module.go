package serverfx

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/joeydtaylor/steeze-hooks/pkg/bundlefx"
	"github.com/joeydtaylor/steeze-hooks/pkg/hookhttp"
	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"github.com/joeydtaylor/steeze-hooks/pkg/jsonhook"
	"github.com/joeydtaylor/steeze-hooks/pkg/manifest"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/metrics"
	"github.com/joeydtaylor/steeze-hooks/pkg/relay"
	"github.com/joeydtaylor/steeze-hooks/pkg/transport/httpx"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ---------- Options ----------

type Config struct {
	Service         string // for logs only
	ManifestEnv     string // HOOKD_MANIFEST
	DefaultManifest string // hooks.toml
	ManifestPath    string // wins over ManifestEnv when set
	ListenEnv       string // SERVER_LISTEN_ADDRESS
	DefaultListen   string // :4000
	TLSCertEnv      string // SSL_SERVER_CERTIFICATE
	TLSKeyEnv       string // SSL_SERVER_KEY
	Log             logger.Config
}

type Option func(*Config)

func WithService(s string) Option            { return func(c *Config) { c.Service = s } }
func WithManifestEnv(k string) Option        { return func(c *Config) { c.ManifestEnv = k } }
func WithDefaultManifest(path string) Option { return func(c *Config) { c.DefaultManifest = path } }
func WithManifestPath(path string) Option    { return func(c *Config) { c.ManifestPath = path } }
func WithListenEnv(k string) Option          { return func(c *Config) { c.ListenEnv = k } }
func WithLogConfig(l logger.Config) Option   { return func(c *Config) { c.Log = l } }
func WithTLSCertKeyEnv(cert, key string) Option {
	return func(c *Config) { c.TLSCertEnv, c.TLSKeyEnv = cert, key }
}

func defaultConfig() Config {
	return Config{
		Service:         "hookd",
		ManifestEnv:     "HOOKD_MANIFEST",
		DefaultManifest: "hooks.toml",
		ListenEnv:       "SERVER_LISTEN_ADDRESS",
		DefaultListen:   ":4000",
		TLSCertEnv:      "SSL_SERVER_CERTIFICATE",
		TLSKeyEnv:       "SSL_SERVER_KEY",
		Log:             logger.DefaultConfig(),
	}
}

// ResolveManifest picks the manifest location: explicit path, then env, then default.
func (c Config) ResolveManifest() string {
	if c.ManifestPath != "" {
		return c.ManifestPath
	}
	return envOr(c.ManifestEnv, c.DefaultManifest)
}

// Module returns a complete Fx option set; add app-specific fx.Invoke(...) alongside.
func Module(opts ...Option) fx.Option {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return fx.Options(
		fx.Supply(cfg, cfg.Log),
		bundlefx.Module,
		fx.Provide(httpx.NewChi),
		fx.Provide(provideManifest),
		fx.Provide(providePublisher),
		fx.Provide(provideCollectors),
		fx.Provide(provideRegistry),
		fx.Provide(fx.Annotate(
			provideRouter,
			fx.ResultTags(`name:"app"`),
		)),
		fx.Invoke(registerServer),
	)
}

// ---------- Providers ----------

func provideManifest(cfg Config, zl *zap.Logger) (manifest.Config, error) {
	path := cfg.ResolveManifest()
	man, err := manifest.Load(path)
	if err != nil {
		return manifest.Config{}, err
	}
	zl.Info("manifest loaded", zap.String("path", path), zap.Int("points", len(man.Points)))
	return man, nil
}

func providePublisher(lc fx.Lifecycle, man manifest.Config, zl *zap.Logger) (relay.Publisher, error) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{OnStop: func(context.Context) error { cancel(); return nil }})

	pub, err := relay.NewFromEnv(ctx)
	if err != nil {
		cancel()
		return nil, err
	}
	// Fail-safety: warn if the manifest publishes but no relay is configured.
	if _, noop := pub.(relay.Noop); noop && publishes(man) {
		zl.Warn("relay.publish configured but ELECTRICIAN_TARGET is empty; messages are dropped",
			zap.String("OAUTH_ISSUER_BASE", os.Getenv("OAUTH_ISSUER_BASE")),
		)
	}
	return pub, nil
}

func provideCollectors(reg *prometheus.Registry) *metrics.Collectors {
	return metrics.New(reg, metrics.WithSkipPaths("/ping"), metrics.WithPathNormalizer(hookhttp.NormalizePath))
}

type registryDeps struct {
	fx.In
	Manifest   manifest.Config
	Publisher  relay.Publisher
	Collectors *metrics.Collectors
	Logger     *zap.Logger
}

func provideRegistry(d registryDeps) (*hooks.Registry, *hooks.Batch, error) {
	reg, err := jsonhook.NewRegistry(d.Manifest,
		hooks.WithObserver(d.Collectors, logger.NewHookObserver(d.Logger)),
	)
	if err != nil {
		return nil, nil, err
	}
	batch, err := jsonhook.Install(reg, d.Manifest, jsonhook.Deps{Publisher: d.Publisher, Logger: d.Logger})
	if err != nil {
		return nil, nil, err
	}
	return reg, batch, nil
}

type routerDeps struct {
	fx.In
	Manifest   manifest.Config
	Registry   *hooks.Registry
	Auth       *auth.Middleware
	LogMW      *logger.Middleware
	Collectors *metrics.Collectors
	Prom       *prometheus.Registry
	Router     httpx.Router
}

func provideRouter(d routerDeps) http.Handler {
	return hookhttp.BuildRouter(d.Manifest, hookhttp.Deps{
		Registry: d.Registry,
		Auth:     d.Auth,
		LogMW:    d.LogMW,
		Metrics:  d.Collectors,
		Gatherer: d.Prom,
		Router:   d.Router,
	})
}

// ---------- Lifecycle ----------

type serverDeps struct {
	fx.In
	Logger *zap.Logger
	Batch  *hooks.Batch
	App    http.Handler `name:"app"`
}

func registerServer(lc fx.Lifecycle, sd fx.Shutdowner, cfg Config, d serverDeps) {
	addr := envOr(cfg.ListenEnv, cfg.DefaultListen)
	cert := os.Getenv(cfg.TLSCertEnv)
	key := os.Getenv(cfg.TLSKeyEnv)

	srv := &http.Server{
		Addr:         addr,
		Handler:      d.App,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		TLSConfig:    &tls.Config{MinVersion: tls.VersionTLS13, MaxVersion: tls.VersionTLS13},
	}
	useTLS := fileExists(cert) && fileExists(key)

	serve := func(run func() error) {
		go func() {
			if err := run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				d.Logger.Error("server failed", zap.Error(err))
				_ = sd.Shutdown(fx.ExitCode(1))
			}
		}()
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if useTLS {
				d.Logger.Info("server starting (TLS)",
					zap.String("service", cfg.Service), zap.String("addr", addr), zap.String("cert", cert))
				serve(func() error { return srv.ListenAndServeTLS(cert, key) })
				return nil
			}
			d.Logger.Info("server starting (PLAINTEXT)", zap.String("service", cfg.Service), zap.String("addr", addr))
			srv.TLSConfig = nil
			serve(srv.ListenAndServe)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("server stopping", zap.String("service", cfg.Service))
			err := srv.Shutdown(ctx)
			d.Batch.Unregister()
			_ = d.Logger.Sync()
			return err
		},
	})
}

// ---------- tiny helpers ----------

func publishes(man manifest.Config) bool {
	for _, p := range man.Points {
		for _, h := range p.Handlers {
			if h.Type == manifest.HandlerRelayPublish {
				return true
			}
		}
	}
	return false
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
