package jsonhook

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"github.com/joeydtaylor/steeze-hooks/pkg/manifest"
	"github.com/joeydtaylor/steeze-hooks/pkg/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var inprocSeq atomic.Int64

func run(t *testing.T, h Handler, doc string) (string, error) {
	t.Helper()
	p, err := Define(hooks.New(), "test")
	require.NoError(t, err)
	p.Register(h)
	out, err := p.Call(context.Background(), Doc(doc), Info{RequestID: "req-1"})
	return string(out), err
}

func TestSet(t *testing.T) {
	out, err := run(t, Set("user.name", `"ada"`), `{"user":{"id":1}}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user":{"id":1,"name":"ada"}}`, out)
}

func TestDefault_OnlyWhenAbsent(t *testing.T) {
	out, err := run(t, Default("currency", `"EUR"`), `{"total":3}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":3,"currency":"EUR"}`, out)

	out, err = run(t, Default("currency", `"EUR"`), `{"currency":"USD"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"currency":"USD"}`, out)
}

func TestDelete(t *testing.T) {
	out, err := run(t, Delete("secret"), `{"secret":"x","keep":true}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"keep":true}`, out)

	out, err = run(t, Delete("missing"), `{"keep":true}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"keep":true}`, out)
}

func TestRename(t *testing.T) {
	out, err := run(t, Rename("mail", "contact.email"), `{"mail":"a@b.c"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"contact":{"email":"a@b.c"}}`, out)

	out, err = run(t, Rename("mail", "email"), `{"name":"x"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"x"}`, out)
}

func TestRequire(t *testing.T) {
	_, err := run(t, Require("id", "items.0"), `{"id":1,"items":["a"]}`)
	require.NoError(t, err)

	_, err = run(t, Require("id", "total"), `{"id":1}`)
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "total")
}

func TestEdit_InvalidDocument(t *testing.T) {
	p, err := Define(hooks.New(), "raw")
	require.NoError(t, err)
	p.Register(Set("a", "1"))

	_, err = p.Call(context.Background(), Doc(`{nope`), Info{}, hooks.AsRef())
	assert.ErrorIs(t, err, ErrInvalidDoc)
}

func TestPublish_SendsDocumentWithIdentity(t *testing.T) {
	rec := &relay.Recorder{}
	p, err := Define(hooks.New(), "pub")
	require.NoError(t, err)
	p.Register(Set("stage", `"sent"`))
	p.Register(Publish(rec, "orders"))

	info := Info{RequestID: "r1", InvocationID: "i1", User: "ada", Headers: map[string]string{"x-tenant": "t1"}}
	out, err := p.Call(context.Background(), Doc(`{"id":7}`), info)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"stage":"sent"}`, string(out))

	msgs := rec.Topic("orders")
	require.Len(t, msgs, 1)
	assert.JSONEq(t, `{"id":7,"stage":"sent"}`, string(msgs[0].Body))
	assert.Equal(t, map[string]string{
		"x-tenant":      "t1",
		"request_id":    "r1",
		"invocation_id": "i1",
		"user":          "ada",
	}, msgs[0].Headers)
	assert.Len(t, info.Headers, 1)
}

func TestLog_WritesDebugLine(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	_, err := run(t, Log(zap.New(core), "checkout"), `{"a":1}`)
	require.NoError(t, err)

	entries := logs.FilterMessage("hook document").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "checkout", ctx["point"])
	assert.Equal(t, "req-1", ctx["request_id"])
}

func TestInproc_Catalog(t *testing.T) {
	name := uniqueInproc("upper")
	h := Set("seen", "true")
	RegisterInproc(name, h)

	got, ok := LookupInproc(name)
	require.True(t, ok)
	require.NotNil(t, got)
	_, ok = LookupInproc(name + "-missing")
	assert.False(t, ok)

	assert.Panics(t, func() { RegisterInproc(name, h) })
	assert.Panics(t, func() { RegisterInproc(uniqueInproc("nil"), nil) })
}

func TestInstall_RegistersManifestInOrder(t *testing.T) {
	stamp := uniqueInproc("stamp")
	RegisterInproc(stamp, Set("stamped", "true"))

	cfg := manifest.Config{Points: []manifest.Point{
		{Name: "order.created", Handlers: []manifest.HandlerSpec{
			{Type: manifest.HandlerJSONRequire, Paths: []string{"id"}},
			{Type: manifest.HandlerJSONDefault, Path: "currency", Value: `"EUR"`},
			{Type: manifest.HandlerInproc, Name: stamp},
			{Type: manifest.HandlerRelayPublish, Topic: "orders"},
		}},
		{Name: "audit", Handlers: []manifest.HandlerSpec{{Type: manifest.HandlerLog}}},
		{Name: "empty"},
	}}
	require.NoError(t, cfg.Validate())

	rec := &relay.Recorder{}
	r, err := NewRegistry(cfg)
	require.NoError(t, err)
	batch, err := Install(r, cfg, Deps{Publisher: rec})
	require.NoError(t, err)
	assert.Len(t, batch.Registrations(), 5)
	assert.Equal(t, 4, r.Len("order.created"))
	assert.True(t, r.Defined("empty"))

	out, err := r.Call(context.Background(), "order.created", Doc(`{"id":1}`), Info{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"currency":"EUR","stamped":true}`, string(out.(Doc)))
	assert.Len(t, rec.Topic("orders"), 1)

	_, err = r.Call(context.Background(), "order.created", Doc(`{}`), Info{})
	assert.ErrorIs(t, err, ErrMissingField)

	batch.Unregister()
	assert.Empty(t, r.Names())
}

func TestInstall_UnknownInprocRegistersNothing(t *testing.T) {
	cfg := manifest.Config{Points: []manifest.Point{
		{Name: "a", Handlers: []manifest.HandlerSpec{{Type: manifest.HandlerLog}}},
		{Name: "b", Handlers: []manifest.HandlerSpec{{Type: manifest.HandlerInproc, Name: uniqueInproc("absent")}}},
	}}
	r := hooks.New()
	_, err := Install(r, cfg, Deps{})
	assert.Error(t, err)
	assert.Empty(t, r.Names())
	assert.False(t, r.Defined("a"), "no point is defined when a handler fails to build")
	assert.False(t, r.Defined("b"))
}

func TestInstall_TypeClash(t *testing.T) {
	r := hooks.New()
	hooks.MustDefine[string, Info](r, "a")
	cfg := manifest.Config{Points: []manifest.Point{
		{Name: "first", Handlers: []manifest.HandlerSpec{{Type: manifest.HandlerLog}}},
		{Name: "a"},
	}}
	_, err := Install(r, cfg, Deps{})
	assert.ErrorIs(t, err, hooks.ErrTypeMismatch)
	assert.True(t, r.Defined("first"))
	assert.Equal(t, 0, r.Len("first"))
}

func TestNewRegistry_BadCodec(t *testing.T) {
	_, err := NewRegistry(manifest.Config{Server: manifest.Server{Codec: "xml"}})
	assert.Error(t, err)
}

func uniqueInproc(prefix string) string {
	return prefix + "-" + strconv.FormatInt(inprocSeq.Add(1), 10)
}
