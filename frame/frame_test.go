package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	assert.Equal(t, 0, Compare(nil, nil))
	assert.Equal(t, -1, Compare(nil, int64(0)))
	assert.Equal(t, 0, Compare(int64(5), float64(5)))
	assert.Equal(t, -1, Compare(int64(1), float64(1.5)))
	assert.Equal(t, 1, Compare("b", "a"))
	assert.Equal(t, -1, Compare(false, true))
}

func TestKeysIndex(t *testing.T) {
	k := Keys{Discrete: []string{"id", "track"}, Bounds: [2]string{"t1", "t2"}}
	assert.Equal(t, []string{"id", "track", "t1", "t2"}, k.Index())
	assert.Equal(t, "t1", k.Start())
	assert.Equal(t, "t2", k.End())
}

func TestTableBasics(t *testing.T) {
	tb := FromRecords([]string{"id", "t1", "t2", "v"}, [][]Value{
		{int64(1), int64(0), int64(5), 0.2},
		{int64(1), int64(5), int64(10), nil},
	})
	require.Equal(t, 2, tb.NumRows())
	assert.Equal(t, []string{"id", "t1", "t2", "v"}, tb.Columns())
	assert.Equal(t, int64(5), tb.Value(0, "t2"))
	assert.Nil(t, tb.Value(1, "v"))
	assert.Nil(t, tb.Value(0, "missing"))

	// WithColumn replaces in place or appends.
	tb2 := tb.WithColumn("v", []Value{0.3, 0.4})
	assert.Equal(t, 0.2, tb.Value(0, "v"))
	assert.Equal(t, 0.3, tb2.Value(0, "v"))
	tb3 := tb.WithColumn("extra", []Value{nil, int64(7)})
	assert.Equal(t, []string{"id", "t1", "t2", "v", "extra"}, tb3.Columns())

	// WithoutColumns drops and keeps order.
	tb4 := tb3.WithoutColumns("v", "unknown")
	assert.Equal(t, []string{"id", "t1", "t2", "extra"}, tb4.Columns())

	// Gather reorders rows.
	tb5 := tb.Gather([]int{1, 0})
	assert.Equal(t, int64(5), tb5.Value(0, "t1"))
}

func TestTableRename(t *testing.T) {
	tb := FromRecords([]string{"a", "b"}, [][]Value{{int64(1), int64(2)}})
	out := tb.Rename(map[string]string{"b": "c"})
	assert.Equal(t, []string{"a", "c"}, out.Columns())
	assert.Equal(t, int64(2), out.Value(0, "c"))
	assert.True(t, tb.HasColumn("b"))
}

func TestKeyOfNumericCanonical(t *testing.T) {
	tb := FromRecords([]string{"a"}, [][]Value{{int64(5)}, {float64(5)}})
	k0 := keyOf(tb, 0, []int{0})
	k1 := keyOf(tb, 1, []int{0})
	assert.Equal(t, k0, k1)
}
