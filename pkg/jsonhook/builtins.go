package jsonhook

import (
	"context"
	"fmt"

	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"github.com/joeydtaylor/steeze-hooks/pkg/relay"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

// Set writes raw JSON at path.
func Set(path string, raw string) Handler {
	return edit(func(doc Doc) (Doc, error) {
		return sjson.SetRawBytes(doc, path, []byte(raw))
	})
}

// Default writes raw JSON at path only when nothing is there yet.
func Default(path string, raw string) Handler {
	return edit(func(doc Doc) (Doc, error) {
		if gjson.GetBytes(doc, path).Exists() {
			return nil, nil
		}
		return sjson.SetRawBytes(doc, path, []byte(raw))
	})
}

// Delete removes path. A missing path is not an error.
func Delete(path string) Handler {
	return edit(func(doc Doc) (Doc, error) {
		if !gjson.GetBytes(doc, path).Exists() {
			return nil, nil
		}
		return sjson.DeleteBytes(doc, path)
	})
}

// Rename moves the value at from to to. A missing from is not an error.
func Rename(from, to string) Handler {
	return edit(func(doc Doc) (Doc, error) {
		v := gjson.GetBytes(doc, from)
		if !v.Exists() {
			return nil, nil
		}
		out, err := sjson.SetRawBytes(doc, to, []byte(v.Raw))
		if err != nil {
			return nil, err
		}
		return sjson.DeleteBytes(out, from)
	})
}

// Require fails the call with ErrMissingField unless every path exists.
func Require(paths ...string) Handler {
	return hooks.Tap(func(_ context.Context, doc Doc, _ Info) error {
		if !gjson.ValidBytes(doc) {
			return ErrInvalidDoc
		}
		for _, p := range paths {
			if !gjson.GetBytes(doc, p).Exists() {
				return fmt.Errorf("%w: %s", ErrMissingField, p)
			}
		}
		return nil
	})
}

// Publish sends the current document to topic and leaves it unchanged.
func Publish(pub relay.Publisher, topic string) Handler {
	if pub == nil {
		pub = relay.Noop{}
	}
	return hooks.Tap(func(ctx context.Context, doc Doc, info Info) error {
		hdrs := map[string]string{}
		for k, v := range info.Headers {
			hdrs[k] = v
		}
		setIf(hdrs, "request_id", info.RequestID)
		setIf(hdrs, "invocation_id", info.InvocationID)
		setIf(hdrs, "user", info.User)
		return pub.Publish(ctx, relay.Message{Topic: topic, Body: doc, Headers: hdrs})
	})
}

// Log writes one debug line per call reaching it.
func Log(l *zap.Logger, point string) Handler {
	if l == nil {
		l = zap.NewNop()
	}
	return hooks.Tap(func(_ context.Context, doc Doc, info Info) error {
		l.Debug("hook document",
			zap.String("point", point),
			zap.String("request_id", info.RequestID),
			zap.String("invocation_id", info.InvocationID),
			zap.String("user", info.User),
			zap.Int("bytes", len(doc)),
		)
		return nil
	})
}

// edit adapts a document rewrite. A nil result from fn keeps the document.
func edit(fn func(doc Doc) (Doc, error)) Handler {
	return func(_ context.Context, doc Doc, _ Info) (hooks.Result[Doc], error) {
		if !gjson.ValidBytes(doc) {
			return hooks.Keep[Doc](), ErrInvalidDoc
		}
		out, err := fn(doc)
		if err != nil {
			return hooks.Keep[Doc](), err
		}
		if out == nil {
			return hooks.Keep[Doc](), nil
		}
		return hooks.Replace(out), nil
	}
}

func setIf(m map[string]string, k, v string) {
	if v != "" {
		m[k] = v
	}
}
