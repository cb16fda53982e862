package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestRoundTrip(t *testing.T) {
	type payload struct {
		Columns []string   `json:"columns"`
		Rows    [][]string `json:"rows"`
	}
	in := payload{
		Columns: []string{"id", "t1", "t2"},
		Rows:    [][]string{{"i:1", "i:0", "i:5"}, {"i:1", "i:5", "f:8.5"}},
	}

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		data, err := c.Marshal(in)
		require.NoError(t, err)
		var out payload
		require.NoError(t, c.Unmarshal(data, &out))
		assert.Equal(t, in, out, c.Name())
	}
}
