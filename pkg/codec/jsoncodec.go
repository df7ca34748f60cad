// pkg/codec/jsoncodec.go
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Codec is a structural encoder/decoder pair. Hook payload isolation and the
// manifest-driven HTTP surface both go through it.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	ContentType() string
	Name() string
}

var (
	// JSON is the default isolation codec: no HTML escaping, unknown fields ignored.
	JSON Codec = jsonCodec{name: "json"}
	// JSONStrict rejects unknown fields and trailing content on decode.
	JSONStrict Codec = jsonCodec{name: "json-strict", strict: true}
)

var errTrailing = errors.New("json trailing content")

type jsonCodec struct {
	name   string
	strict bool
}

func (c jsonCodec) Name() string      { return c.name }
func (jsonCodec) ContentType() string { return "application/json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

func (c jsonCodec) Unmarshal(data []byte, v any) error {
	if !c.strict {
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("json decode: %w", err)
		}
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return errTrailing
	}
	return nil
}
