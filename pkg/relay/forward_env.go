package relay

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"
)

// forwardEnv is everything NewFromEnv reads, resolved once.
type forwardEnv struct {
	targets []string

	tls                   bool
	tlsCrt, tlsKey, tlsCA string
	tlsInsecure           bool
	snappy                bool
	aesKey                string // raw 32 bytes; empty without ELECTRICIAN_ENCRYPT=aesgcm
	headers               map[string]string
	debug                 bool

	oauth *oauthEnv // nil unless issuer, client id and secret are all set
}

type oauthEnv struct {
	issuer, jwks, clientID, secret string
	scopes                         []string
	leeway                         time.Duration
}

const defaultRefreshLeeway = 20 * time.Second

func loadForwardEnv() (forwardEnv, error) {
	get := func(k string) string { return strings.TrimSpace(os.Getenv(k)) }
	on := func(k string) bool { return strings.EqualFold(get(k), "true") }
	path := func(k, def string) string {
		if v := get(k); v != "" {
			return v
		}
		return def
	}

	e := forwardEnv{
		targets:     fields(get("ELECTRICIAN_TARGET")),
		tls:         on("ELECTRICIAN_TLS_ENABLE"),
		tlsCrt:      path("ELECTRICIAN_TLS_CLIENT_CRT", "keys/tls/client.crt"),
		tlsKey:      path("ELECTRICIAN_TLS_CLIENT_KEY", "keys/tls/client.key"),
		tlsCA:       path("ELECTRICIAN_TLS_CA", "keys/tls/ca.crt"),
		tlsInsecure: on("ELECTRICIAN_TLS_INSECURE"),
		snappy:      strings.EqualFold(get("ELECTRICIAN_COMPRESS"), "snappy"),
		headers:     headerPairs(get("ELECTRICIAN_STATIC_HEADERS")),
		debug:       on("ELECTRICIAN_DEBUG"),
	}

	if strings.EqualFold(get("ELECTRICIAN_ENCRYPT"), "aesgcm") {
		raw, err := hex.DecodeString(get("ELECTRICIAN_AES256_KEY_HEX"))
		if err != nil {
			return e, fmt.Errorf("relay: ELECTRICIAN_AES256_KEY_HEX: %w", err)
		}
		if len(raw) != 32 {
			return e, fmt.Errorf("relay: ELECTRICIAN_AES256_KEY_HEX must be 64 hex chars (32 bytes), got %d bytes", len(raw))
		}
		e.aesKey = string(raw)
	}

	o := oauthEnv{
		issuer:   get("OAUTH_ISSUER_BASE"),
		jwks:     get("OAUTH_JWKS_URL"),
		clientID: get("OAUTH_CLIENT_ID"),
		secret:   get("OAUTH_CLIENT_SECRET"),
		scopes:   fields(get("OAUTH_SCOPES")),
		leeway:   defaultRefreshLeeway,
	}
	if v := get("OAUTH_REFRESH_LEEWAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			o.leeway = d
		}
	}
	if o.issuer != "" && o.clientID != "" && o.secret != "" {
		e.oauth = &o
	}
	return e, nil
}

// fields splits a comma list, dropping blanks.
func fields(s string) []string {
	out := strings.FieldsFunc(s, func(r rune) bool { return r == ',' })
	n := 0
	for _, f := range out {
		if f = strings.TrimSpace(f); f != "" {
			out[n] = f
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return out[:n]
}

// headerPairs parses "k=v,k2=v2"; entries without '=' are skipped.
func headerPairs(s string) map[string]string {
	var out map[string]string
	for _, kv := range fields(s) {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if out == nil {
			out = map[string]string{}
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}
