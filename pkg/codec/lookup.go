package codec

import (
	"fmt"
	"strings"
)

var byName = map[string]Codec{
	JSON.Name():       JSON,
	JSONStrict.Name(): JSONStrict,
	Msgpack.Name():    Msgpack,
	YAML.Name():       YAML,
}

// ByName resolves a codec by its Name(). The empty name means JSON.
func ByName(name string) (Codec, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return JSON, nil
	}
	c, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}
	return c, nil
}
