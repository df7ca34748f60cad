package codec

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type yamlCodec struct{}

// YAML round-trips through yaml.v3. Struct fields use yaml tags (lowercased
// field names when untagged).
var YAML Codec = yamlCodec{}

func (yamlCodec) Marshal(v any) ([]byte, error) { return yaml.Marshal(v) }

func (yamlCodec) Unmarshal(data []byte, v any) error {
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("yaml decode: %w", err)
	}
	return nil
}

func (yamlCodec) ContentType() string { return "application/yaml" }
func (yamlCodec) Name() string        { return "yaml" }
