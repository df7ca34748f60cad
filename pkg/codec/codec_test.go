package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string `json:"name" msgpack:"name" yaml:"name"`
	N    int    `json:"n" msgpack:"n" yaml:"n"`
}

func TestJSON_NoHTMLEscapeNoNewline(t *testing.T) {
	b, err := JSON.Marshal(map[string]string{"q": "<a&b>"})
	require.NoError(t, err)
	assert.Equal(t, `{"q":"<a&b>"}`, string(b))
}

func TestJSONStrict_RejectsUnknownAndTrailing(t *testing.T) {
	var s sample
	assert.Error(t, JSONStrict.Unmarshal([]byte(`{"name":"x","extra":1}`), &s))
	assert.Error(t, JSONStrict.Unmarshal([]byte(`{"name":"x"} {}`), &s))
	require.NoError(t, JSONStrict.Unmarshal([]byte(`{"name":"x","n":2}`), &s))
	assert.Equal(t, sample{Name: "x", N: 2}, s)
}

func TestJSON_IgnoresUnknown(t *testing.T) {
	var s sample
	require.NoError(t, JSON.Unmarshal([]byte(`{"name":"x","extra":1}`), &s))
	assert.Equal(t, "x", s.Name)
}

func TestRoundTrip_AllCodecs(t *testing.T) {
	for _, c := range []Codec{JSON, JSONStrict, Msgpack, YAML} {
		t.Run(c.Name(), func(t *testing.T) {
			b, err := c.Marshal(sample{Name: "ada", N: 3})
			require.NoError(t, err)
			var out sample
			require.NoError(t, c.Unmarshal(b, &out))
			assert.Equal(t, sample{Name: "ada", N: 3}, out)
			assert.NotEmpty(t, c.ContentType())
		})
	}
}

func TestByName(t *testing.T) {
	c, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	c, err = ByName(" MsgPack ")
	require.NoError(t, err)
	assert.Equal(t, "msgpack", c.Name())

	_, err = ByName("xml")
	assert.Error(t, err)
}
