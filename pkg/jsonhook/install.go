package jsonhook

import (
	"fmt"

	"github.com/joeydtaylor/steeze-hooks/pkg/codec"
	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"github.com/joeydtaylor/steeze-hooks/pkg/manifest"
	"github.com/joeydtaylor/steeze-hooks/pkg/relay"
	"go.uber.org/zap"
)

// Deps are the collaborators manifest handlers may need.
type Deps struct {
	Publisher relay.Publisher
	Logger    *zap.Logger
}

// Install defines every manifest point on r and registers its handlers, in
// manifest order, as a single batch. Handlers are built before any point is
// defined, so a handler that fails to build leaves r untouched. A point name
// already defined on r with other types fails with hooks.ErrTypeMismatch;
// points defined before it stay defined, without handlers.
func Install(r *hooks.Registry, cfg manifest.Config, d Deps) (*hooks.Batch, error) {
	built := make([][]Handler, len(cfg.Points))
	for pi, mp := range cfg.Points {
		for i, spec := range mp.Handlers {
			h, err := Build(spec, mp.Name, d)
			if err != nil {
				return nil, fmt.Errorf("point %s handler %d: %w", mp.Name, i, err)
			}
			built[pi] = append(built[pi], h)
		}
	}

	var bindings []hooks.Binding
	for pi, mp := range cfg.Points {
		p, err := Define(r, mp.Name)
		if err != nil {
			return nil, err
		}
		for _, h := range built[pi] {
			bindings = append(bindings, p.Bind(h))
		}
	}
	return r.RegisterMany(bindings...), nil
}

// Build turns one manifest handler into a Handler.
func Build(spec manifest.HandlerSpec, point string, d Deps) (Handler, error) {
	switch spec.Type {
	case manifest.HandlerInproc:
		h, ok := LookupInproc(spec.Name)
		if !ok {
			return nil, fmt.Errorf("inproc handler %q not registered", spec.Name)
		}
		return h, nil
	case manifest.HandlerJSONSet:
		return Set(spec.Path, spec.Value), nil
	case manifest.HandlerJSONDefault:
		return Default(spec.Path, spec.Value), nil
	case manifest.HandlerJSONDelete:
		return Delete(spec.Path), nil
	case manifest.HandlerJSONRename:
		return Rename(spec.From, spec.To), nil
	case manifest.HandlerJSONRequire:
		paths := spec.Paths
		if len(paths) == 0 && spec.Path != "" {
			paths = []string{spec.Path}
		}
		return Require(paths...), nil
	case manifest.HandlerRelayPublish:
		return Publish(d.Publisher, spec.Topic), nil
	case manifest.HandlerLog:
		return Log(d.Logger, point), nil
	default:
		return nil, fmt.Errorf("unknown handler type %q", spec.Type)
	}
}

// NewRegistry builds a registry configured by the manifest's server block.
func NewRegistry(cfg manifest.Config, opts ...hooks.Option) (*hooks.Registry, error) {
	c, err := codec.ByName(cfg.Server.Codec)
	if err != nil {
		return nil, err
	}
	all := []hooks.Option{hooks.WithCodec(c)}
	if cfg.Server.ZeroReplacement {
		all = append(all, hooks.WithZeroReplacement())
	}
	return hooks.New(append(all, opts...)...), nil
}
