// pkg/relay/electrician.go
package relay

// Publish-only Publisher implemented with Electrician builder primitives.
// No builder.* types are stored on the struct.

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/joeydtaylor/electrician/pkg/builder"
	"github.com/joeydtaylor/steeze-hooks/pkg/codec"
)

// envelope is what travels over the wire: the relay carries opaque bytes, so
// topic and headers ride along with the body.
type envelope struct {
	Topic   string            `json:"topic"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    []byte            `json:"body"`
}

type forwardPublisher struct {
	submit func(context.Context, []byte) error
}

// NewFromEnv returns a Publisher powered by Electrician's
// ForwardRelay[[]byte]. It expects:
//
//	ELECTRICIAN_TARGET          = "host:port[,host2:port2]"
//
// Optional features (all off by default):
//
//	ELECTRICIAN_TLS_ENABLE      = "true" | "false"
//	ELECTRICIAN_TLS_CLIENT_CRT  = path (default: keys/tls/client.crt)
//	ELECTRICIAN_TLS_CLIENT_KEY  = path (default: keys/tls/client.key)
//	ELECTRICIAN_TLS_CA          = path (default: keys/tls/ca.crt)
//	ELECTRICIAN_TLS_INSECURE    = "true" | "false"  (dev only; OAuth token client)
//	ELECTRICIAN_COMPRESS        = "snappy" | ""
//	ELECTRICIAN_ENCRYPT         = "aesgcm" | ""
//	ELECTRICIAN_AES256_KEY_HEX  = 64 hex chars (32 bytes)
//	ELECTRICIAN_STATIC_HEADERS  = "k=v,k2=v2"
//
// OAuth2 client credentials (all of issuer, id and secret must be set):
//
//	OAUTH_ISSUER_BASE, OAUTH_JWKS_URL, OAUTH_CLIENT_ID, OAUTH_CLIENT_SECRET,
//	OAUTH_SCOPES = "s1,s2", OAUTH_REFRESH_LEEWAY = "20s"
//
// Without ELECTRICIAN_TARGET it returns Noop.
func NewFromEnv(ctx context.Context) (Publisher, error) {
	env, err := loadForwardEnv()
	if err != nil {
		return nil, err
	}
	if len(env.targets) == 0 {
		return Noop{}, nil
	}

	logger := builder.NewLogger(builder.LoggerWithDevelopment(env.debug))
	wire := builder.NewWire[[]byte](ctx, builder.WireWithLogger[[]byte](logger))

	perf := builder.NewPerformanceOptions(env.snappy, builder.COMPRESS_SNAPPY)
	sec := builder.NewSecurityOptions(env.aesKey != "", builder.ENCRYPTION_AES_GCM)
	tlsCfg := builder.NewTlsClientConfig(
		env.tls,
		env.tlsCrt, env.tlsKey, env.tlsCA,
		tls.VersionTLS13, tls.VersionTLS13,
	)

	// OAuth2 bearer is the only conditional branch.
	var relayStart func(context.Context) error
	if o := env.oauth; o != nil {
		var authOpts = builder.NewForwardRelayAuthenticationOptionsOAuth2(nil)
		if o.jwks != "" {
			authOpts = builder.NewForwardRelayAuthenticationOptionsOAuth2(
				builder.NewForwardRelayOAuth2JWTOptions(o.issuer, o.jwks, []string{}, o.scopes, 300),
			)
		}
		ts := builder.NewForwardRelayRefreshingClientCredentialsSource(
			o.issuer, o.clientID, o.secret, o.scopes, o.leeway, tokenHTTPClient(env.tlsInsecure),
		)
		relay := builder.NewForwardRelay[[]byte](
			ctx,
			builder.ForwardRelayWithLogger[[]byte](logger),
			builder.ForwardRelayWithTarget[[]byte](env.targets...),
			builder.ForwardRelayWithPerformanceOptions[[]byte](perf),
			builder.ForwardRelayWithSecurityOptions[[]byte](sec, env.aesKey),
			builder.ForwardRelayWithTLSConfig[[]byte](tlsCfg),
			builder.ForwardRelayWithStaticHeaders[[]byte](env.headers),
			builder.ForwardRelayWithAuthenticationOptions[[]byte](authOpts),
			builder.ForwardRelayWithOAuthBearer[[]byte](ts),
			builder.ForwardRelayWithInput(wire),
		)
		relayStart = relay.Start
	} else {
		relay := builder.NewForwardRelay[[]byte](
			ctx,
			builder.ForwardRelayWithLogger[[]byte](logger),
			builder.ForwardRelayWithTarget[[]byte](env.targets...),
			builder.ForwardRelayWithPerformanceOptions[[]byte](perf),
			builder.ForwardRelayWithSecurityOptions[[]byte](sec, env.aesKey),
			builder.ForwardRelayWithTLSConfig[[]byte](tlsCfg),
			builder.ForwardRelayWithStaticHeaders[[]byte](env.headers),
			builder.ForwardRelayWithInput(wire),
		)
		relayStart = relay.Start
	}

	if err := wire.Start(ctx); err != nil {
		return nil, fmt.Errorf("relay: wire start: %w", err)
	}
	if err := relayStart(ctx); err != nil {
		return nil, fmt.Errorf("relay: forward relay start: %w", err)
	}
	return &forwardPublisher{
		submit: func(ctx context.Context, b []byte) error { return wire.Submit(ctx, b) },
	}, nil
}

// Publish encodes m as an envelope and submits it to the wire.
func (p *forwardPublisher) Publish(ctx context.Context, m Message) error {
	if m.Topic == "" {
		return ErrMissingTopic
	}
	b, err := codec.JSON.Marshal(envelope{Topic: m.Topic, Headers: m.Headers, Body: m.Body})
	if err != nil {
		return fmt.Errorf("relay: encode: %w", err)
	}
	return p.submit(ctx, b)
}

// tokenHTTPClient fetches OAuth tokens over TLS 1.3.
func tokenHTTPClient(insecure bool) *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion:         tls.VersionTLS13,
				MaxVersion:         tls.VersionTLS13,
				InsecureSkipVerify: insecure, // dev only
			},
		},
	}
}
