// manifest/manifest.go
package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joeydtaylor/steeze-hooks/pkg/codec"
)

/* ===========================
   Handler types
   =========================== */

type HandlerType string

const (
	HandlerInproc       HandlerType = "inproc"
	HandlerJSONSet      HandlerType = "json.set"
	HandlerJSONDelete   HandlerType = "json.delete"
	HandlerJSONRequire  HandlerType = "json.require"
	HandlerJSONRename   HandlerType = "json.rename"
	HandlerJSONDefault  HandlerType = "json.default"
	HandlerRelayPublish HandlerType = "relay.publish"
	HandlerLog          HandlerType = "log"
)

/* ===========================
   Top-level config
   =========================== */

// Config is the hook manifest: registry settings plus the points to install.
type Config struct {
	Server Server  `toml:"server" yaml:"server"`
	Points []Point `toml:"point" yaml:"points"`
}

type Server struct {
	// Codec names the payload isolation codec (see codec.ByName). Empty means json.
	Codec string `toml:"codec" yaml:"codec"`
	// ZeroReplacement lets handlers replace a payload with its zero value.
	ZeroReplacement bool `toml:"zero_replacement" yaml:"zero_replacement"`
}

/* ===========================
   Points
   =========================== */

// Point is one hook point and its handler chain, in manifest order.
type Point struct {
	Name      string        `toml:"name" yaml:"name"`
	Guard     Guard         `toml:"guard" yaml:"guard"`
	TimeoutMS int           `toml:"timeout_ms" yaml:"timeout_ms"`
	Tags      []string      `toml:"tags" yaml:"tags"`
	Handlers  []HandlerSpec `toml:"handler" yaml:"handlers"`
}

type Guard struct {
	Roles       []string `toml:"roles" yaml:"roles"`
	Users       []string `toml:"users" yaml:"users"`
	RequireAuth bool     `toml:"require_auth" yaml:"require_auth"`
}

// HandlerSpec describes one handler. Which fields apply depends on Type.
type HandlerSpec struct {
	Type  HandlerType `toml:"type" yaml:"type"`
	Name  string      `toml:"name" yaml:"name"`   // inproc
	Path  string      `toml:"path" yaml:"path"`   // json.set, json.delete, json.default, json.require
	Paths []string    `toml:"paths" yaml:"paths"` // json.require
	Value string      `toml:"value" yaml:"value"` // raw JSON for json.set, json.default
	From  string      `toml:"from" yaml:"from"`   // json.rename
	To    string      `toml:"to" yaml:"to"`       // json.rename
	Topic string      `toml:"topic" yaml:"topic"` // relay.publish
}

// Validate normalizes the manifest in place and reports the first problem.
func (c *Config) Validate() error {
	c.Server.Codec = strings.ToLower(strings.TrimSpace(c.Server.Codec))
	if _, err := codec.ByName(c.Server.Codec); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if len(c.Points) == 0 {
		return errors.New("no points defined")
	}
	seen := make(map[string]int, len(c.Points))
	for i := range c.Points {
		if err := c.Points[i].normalize(); err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
		name := c.Points[i].Name
		if j, dup := seen[name]; dup {
			return fmt.Errorf("point %d: name %q already used by point %d", i, name, j)
		}
		seen[name] = i
		if err := c.Points[i].validate(); err != nil {
			return fmt.Errorf("point %d (%s): %w", i, name, err)
		}
	}
	return nil
}

// Point returns the point named name.
func (c *Config) Point(name string) (Point, bool) {
	for _, p := range c.Points {
		if p.Name == name {
			return p, true
		}
	}
	return Point{}, false
}
