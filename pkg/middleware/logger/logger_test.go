package logger

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddleware_LogsRequestAndRestoresBody(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := NewMiddleware(zap.New(core), "/hooks/")

	var seen string
	h := m.Middleware(auth.New())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		seen = string(b)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/hooks/a", strings.NewReader(`{"x":1}`))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, `{"x":1}`, seen)
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, int64(http.StatusAccepted), fields["status"])
	assert.Equal(t, int64(2), fields["responseSize"])
	assert.Equal(t, "/hooks/a", fields["uri"])
	assert.Equal(t, `{"x":1}`, fields["requestData"])
}

func TestMiddleware_RedactsOtherPaths(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewMiddleware(zap.New(core), "/hooks/").Middleware(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/other", strings.NewReader(`{"secret":1}`))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	_, ok := logs.All()[0].ContextMap()["requestData"]
	assert.False(t, ok)
	assert.Equal(t, false, logs.All()[0].ContextMap()["isAuthenticated"])
}

func TestHookObserver_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	obs := NewHookObserver(zap.New(core))
	ctx := context.WithValue(context.Background(), chimd.RequestIDKey, "req-9")

	obs.ObserveCall(ctx, hooks.CallInfo{Point: "p", Handlers: 2, Cloned: true, Duration: time.Millisecond})
	obs.ObserveCall(ctx, hooks.CallInfo{Point: "p", Handlers: 1, Err: errors.New("bad")})

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.DebugLevel, logs.All()[0].Level)
	assert.Equal(t, "req-9", logs.All()[0].ContextMap()["requestId"])
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
	assert.Equal(t, "bad", logs.All()[1].ContextMap()["error"])
}

func TestNew_WritesRotatedFile(t *testing.T) {
	dir := t.TempDir()
	l := New("test.log", Config{Dir: dir, Level: zap.InfoLevel})
	l.Info("hello")
	_ = l.Sync()

	b, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"hello"`)

	assert.NotNil(t, New("x.log", Config{}))
}

func TestLevelFromVerbosity(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, LevelFromVerbosity(0))
	assert.Equal(t, zapcore.InfoLevel, LevelFromVerbosity(1))
	assert.Equal(t, zapcore.DebugLevel, LevelFromVerbosity(3))
}
