package hookhttp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"github.com/joeydtaylor/steeze-hooks/pkg/jsonhook"
	"github.com/joeydtaylor/steeze-hooks/pkg/manifest"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/auth"
	httpx "github.com/joeydtaylor/steeze-hooks/pkg/transport/httpx"
	"github.com/tidwall/gjson"
)

const (
	maxBody = 1 << 20 // 1 MiB

	// Request headers with this prefix are handed to handlers in Info.Headers.
	forwardPrefix = "X-Hook-"
)

type server struct {
	reg    *hooks.Registry
	auth   *auth.Middleware
	points map[string]manifest.Point
}

type pointView struct {
	Name     string `json:"name"`
	Handlers int    `json:"handlers"`
}

func (s *server) list(w http.ResponseWriter, _ *http.Request) {
	seen := map[string]struct{}{}
	var out []pointView
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, pointView{Name: name, Handlers: s.reg.Len(name)})
	}
	for name := range s.points {
		add(name)
	}
	for _, name := range s.reg.Names() {
		add(name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if out == nil {
		out = []pointView{}
	}
	writeValue(w, http.StatusOK, map[string]any{"points": out})
}

func (s *server) call(w http.ResponseWriter, r *http.Request) {
	name := httpx.URLParam(r, "point")
	mp, inManifest := s.points[name]
	if !inManifest && !s.reg.Defined(name) {
		writeError(w, http.StatusNotFound, "unknown point "+strconv.Quote(name))
		return
	}
	if !allow(w, r, s.auth, mp.Guard) {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		if tooLarge := new(http.MaxBytesError); errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "reading body: "+err.Error())
		return
	}
	if !gjson.ValidBytes(body) {
		writeError(w, http.StatusBadRequest, "body must be a JSON document")
		return
	}

	ctx := r.Context()
	if mp.TimeoutMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(mp.TimeoutMS)*time.Millisecond)
		defer cancel()
	}

	info := infoFrom(r)
	w.Header().Set("X-Invocation-Id", info.InvocationID)

	var opts []hooks.CallOption
	if v, _ := strconv.ParseBool(r.URL.Query().Get("ref")); v {
		opts = append(opts, hooks.AsRef())
	}

	out, err := s.reg.Call(ctx, name, jsonhook.Doc(body), info, opts...)
	if err != nil {
		status, msg := classify(ctx, err)
		writeError(w, status, msg)
		return
	}
	doc, ok := out.(jsonhook.Doc)
	if !ok {
		writeError(w, http.StatusInternalServerError, "point returned a non-document payload")
		return
	}
	writeJSON(w, doc, http.StatusOK)
}

func infoFrom(r *http.Request) jsonhook.Info {
	info := jsonhook.Info{
		RequestID:    chimd.GetReqID(r.Context()),
		InvocationID: uuid.NewString(),
	}
	if u, ok := auth.UserFrom(r.Context()); ok {
		info.User = u.Username
		info.Role = u.Role.Name
	}
	for k, vs := range r.Header {
		if len(vs) == 0 || !strings.HasPrefix(k, forwardPrefix) {
			continue
		}
		if info.Headers == nil {
			info.Headers = map[string]string{}
		}
		info.Headers[strings.ToLower(k)] = vs[0]
	}
	return info
}

// classify maps a call failure to a status code and client message.
func classify(ctx context.Context, err error) (int, string) {
	var herr *hooks.HandlerError
	switch {
	case errors.Is(err, hooks.ErrTypeMismatch):
		return http.StatusInternalServerError, "point is not a JSON document point"
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "hook timed out"
	case errors.Is(err, hooks.ErrClone):
		return http.StatusInternalServerError, err.Error()
	case errors.As(err, &herr):
		return http.StatusUnprocessableEntity, herr.Err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
