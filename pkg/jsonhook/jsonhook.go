// Package jsonhook specializes hooks to JSON documents: the payload is a raw
// document, the context carries request identity, and a set of builtin
// handlers edit documents by gjson/sjson path.
package jsonhook

import (
	"encoding/json"
	"errors"

	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
)

// Doc is a raw JSON document flowing through a point.
type Doc = json.RawMessage

// Info is the per-call context shared by every handler of a call.
type Info struct {
	RequestID    string
	InvocationID string
	User         string
	Role         string
	Headers      map[string]string
}

// Handler is a handler over JSON documents.
type Handler = hooks.Handler[Doc, Info]

// Point is a hook point over JSON documents.
type Point = hooks.Point[Doc, Info]

var (
	// ErrMissingField reports a path Require could not find.
	ErrMissingField = errors.New("jsonhook: missing field")
	// ErrInvalidDoc reports a payload that is not a JSON document.
	ErrInvalidDoc = errors.New("jsonhook: invalid JSON document")
)

// Define declares name as a JSON document point on r.
func Define(r *hooks.Registry, name string) (*Point, error) {
	return hooks.Define[Doc, Info](r, name)
}
