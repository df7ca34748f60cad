package codec

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

type msgpackCodec struct{}

// Msgpack round-trips through MessagePack. Cheaper than JSON for large
// payloads; decoded `any` values use map[string]any like JSON does.
var Msgpack Codec = msgpackCodec{}

func (msgpackCodec) Marshal(v any) ([]byte, error) { return msgpack.Marshal(v) }

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("msgpack decode: %w", err)
	}
	return nil
}

func (msgpackCodec) ContentType() string { return "application/msgpack" }
func (msgpackCodec) Name() string        { return "msgpack" }
