package relay

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnv_NoTargetIsNoop(t *testing.T) {
	t.Setenv("ELECTRICIAN_TARGET", "")
	p, err := NewFromEnv(context.Background())
	require.NoError(t, err)
	assert.IsType(t, Noop{}, p)
	assert.NoError(t, p.Publish(context.Background(), Message{Topic: "t"}))
	assert.ErrorIs(t, p.Publish(context.Background(), Message{}), ErrMissingTopic)
}

func TestNewFromEnv_BadAESKey(t *testing.T) {
	t.Setenv("ELECTRICIAN_TARGET", "127.0.0.1:1")
	t.Setenv("ELECTRICIAN_ENCRYPT", "aesgcm")
	t.Setenv("ELECTRICIAN_AES256_KEY_HEX", "abcd")
	_, err := NewFromEnv(context.Background())
	assert.Error(t, err)
}

func TestRecorder_CopiesMessages(t *testing.T) {
	var r Recorder
	body := []byte(`{"a":1}`)
	hdrs := map[string]string{"k": "v"}
	require.NoError(t, r.Publish(context.Background(), Message{Topic: "orders", Body: body, Headers: hdrs}))
	require.NoError(t, r.Publish(context.Background(), Message{Topic: "audit", Body: []byte(`{}`)}))
	assert.ErrorIs(t, r.Publish(context.Background(), Message{Body: body}), ErrMissingTopic)

	body[2] = 'X'
	hdrs["k"] = "changed"

	msgs := r.Topic("orders")
	require.Len(t, msgs, 1)
	assert.Equal(t, `{"a":1}`, string(msgs[0].Body))
	assert.Equal(t, "v", msgs[0].Headers["k"])
	assert.Len(t, r.Messages(), 2)
}

func TestLoadForwardEnv(t *testing.T) {
	t.Setenv("ELECTRICIAN_TARGET", " a:1, ,b:2 ")
	t.Setenv("ELECTRICIAN_TLS_ENABLE", "TRUE")
	t.Setenv("ELECTRICIAN_TLS_CA", "")
	t.Setenv("ELECTRICIAN_COMPRESS", "snappy")
	t.Setenv("ELECTRICIAN_ENCRYPT", "")
	t.Setenv("ELECTRICIAN_STATIC_HEADERS", "x=1, y = 2,bad")
	t.Setenv("OAUTH_ISSUER_BASE", "")

	e, err := loadForwardEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"a:1", "b:2"}, e.targets)
	assert.True(t, e.tls)
	assert.Equal(t, "keys/tls/ca.crt", e.tlsCA)
	assert.True(t, e.snappy)
	assert.Empty(t, e.aesKey)
	assert.Equal(t, map[string]string{"x": "1", "y": "2"}, e.headers)
	assert.Nil(t, e.oauth)
}

func TestLoadForwardEnv_OAuthAndKey(t *testing.T) {
	t.Setenv("ELECTRICIAN_ENCRYPT", "AESGCM")
	t.Setenv("ELECTRICIAN_AES256_KEY_HEX", strings.Repeat("ab", 32))
	t.Setenv("OAUTH_ISSUER_BASE", "https://auth.local")
	t.Setenv("OAUTH_CLIENT_ID", "hookd")
	t.Setenv("OAUTH_CLIENT_SECRET", "s3cret")
	t.Setenv("OAUTH_SCOPES", "write:orders,read:orders")
	t.Setenv("OAUTH_REFRESH_LEEWAY", "nope")

	e, err := loadForwardEnv()
	require.NoError(t, err)
	assert.Len(t, e.aesKey, 32)
	require.NotNil(t, e.oauth)
	assert.Equal(t, []string{"write:orders", "read:orders"}, e.oauth.scopes)
	assert.Equal(t, 20*time.Second, e.oauth.leeway)

	t.Setenv("OAUTH_REFRESH_LEEWAY", "5s")
	e, err = loadForwardEnv()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, e.oauth.leeway)
}
