package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// normalize trims names and lowercases handler types.
func (p *Point) normalize() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return errors.New("name is required")
	}
	if strings.ContainsAny(p.Name, "/ \t?#") {
		return fmt.Errorf("name %q must not contain '/', '?', '#' or whitespace", p.Name)
	}
	for i := range p.Handlers {
		h := &p.Handlers[i]
		h.Type = HandlerType(strings.ToLower(strings.TrimSpace(string(h.Type))))
		h.Name = strings.TrimSpace(h.Name)
		h.Path = strings.TrimSpace(h.Path)
		h.From = strings.TrimSpace(h.From)
		h.To = strings.TrimSpace(h.To)
		h.Topic = strings.TrimSpace(h.Topic)
		h.Value = strings.TrimSpace(h.Value)
		if h.Type == HandlerJSONRequire && h.Path != "" {
			h.Paths = append([]string{h.Path}, h.Paths...)
			h.Path = ""
		}
	}
	return nil
}

func (p *Point) validate() error {
	if p.TimeoutMS < 0 {
		return errors.New("timeout_ms must be >= 0")
	}
	for i, h := range p.Handlers {
		if err := h.validate(); err != nil {
			return fmt.Errorf("handler %d (%s): %w", i, h.Type, err)
		}
	}
	return nil
}

// validate fields that are independent of global state.
func (h HandlerSpec) validate() error {
	switch h.Type {
	case HandlerInproc:
		if h.Name == "" {
			return errors.New("name required for inproc")
		}
	case HandlerJSONSet, HandlerJSONDefault:
		if h.Path == "" {
			return errors.New("path required")
		}
		if h.Value == "" || !gjson.Valid(h.Value) {
			return fmt.Errorf("value %q is not valid JSON", h.Value)
		}
	case HandlerJSONDelete:
		if h.Path == "" {
			return errors.New("path required")
		}
	case HandlerJSONRequire:
		if len(h.Paths) == 0 {
			return errors.New("path or paths required")
		}
		for _, p := range h.Paths {
			if strings.TrimSpace(p) == "" {
				return errors.New("paths must not be empty")
			}
		}
	case HandlerJSONRename:
		if h.From == "" || h.To == "" {
			return errors.New("from and to required")
		}
		if h.From == h.To {
			return errors.New("from and to must differ")
		}
	case HandlerRelayPublish:
		if h.Topic == "" {
			return errors.New("topic required")
		}
	case HandlerLog:
	default:
		return fmt.Errorf("unknown handler type %q", h.Type)
	}
	return nil
}
