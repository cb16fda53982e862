package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemSort(t *testing.T) {
	m := NewMem()
	tb := FromRecords([]string{"id", "t1"}, [][]Value{
		{int64(2), int64(0)},
		{int64(1), int64(5)},
		{int64(1), int64(0)},
	})
	out, err := m.Sort(tb, []string{"id", "t1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]Value{
		{int64(1), int64(0)},
		{int64(1), int64(5)},
		{int64(2), int64(0)},
	}, out.Records())

	// Descending on the second column.
	out, err = m.Sort(tb, []string{"id", "t1"}, []bool{true, false})
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.Value(0, "t1"))

	_, err = m.Sort(tb, []string{"nope"}, nil)
	assert.Error(t, err)
}

func TestMemEquiJoin(t *testing.T) {
	m := NewMem()
	left := FromRecords([]string{"id", "v"}, [][]Value{
		{int64(1), "a"},
		{int64(2), "b"},
		{int64(3), "c"},
	})
	right := FromRecords([]string{"id", "w"}, [][]Value{
		{int64(1), 0.1},
		{int64(1), 0.2},
		{int64(2), 0.3},
	})

	inner, err := m.EquiJoin(left, right, []string{"id"}, JoinInner, "")
	require.NoError(t, err)
	assert.Equal(t, 3, inner.NumRows())
	assert.Equal(t, []string{"id", "v", "w"}, inner.Columns())

	lj, err := m.EquiJoin(left, right, []string{"id"}, JoinLeft, "")
	require.NoError(t, err)
	require.Equal(t, 4, lj.NumRows())
	assert.Nil(t, lj.Value(3, "w"))

	// Collision suffixing.
	right2 := FromRecords([]string{"id", "v"}, [][]Value{{int64(1), "x"}})
	j, err := m.EquiJoin(left, right2, []string{"id"}, JoinLeft, "_init")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "v", "v_init"}, j.Columns())
	assert.Equal(t, "a", j.Value(0, "v"))
	assert.Equal(t, "x", j.Value(0, "v_init"))
}

func TestMemGroupAggregate(t *testing.T) {
	m := NewMem()
	tb := FromRecords([]string{"id", "t"}, [][]Value{
		{int64(1), int64(4)},
		{int64(1), int64(2)},
		{int64(2), nil},
		{int64(2), int64(9)},
	})

	minT, err := m.GroupAggregate(tb, []string{"id"}, "t", AggMin)
	require.NoError(t, err)
	assert.Equal(t, [][]Value{{int64(1), int64(2)}, {int64(2), int64(9)}}, minT.Records())

	maxT, err := m.GroupAggregate(tb, []string{"id"}, "t", AggMax)
	require.NoError(t, err)
	assert.Equal(t, int64(4), maxT.Value(0, "t"))

	cnt, err := m.GroupAggregate(tb, []string{"id"}, "t", AggCount)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cnt.Value(1, "t"))

	sum, err := m.GroupAggregate(tb, []string{"id"}, "t", AggSum)
	require.NoError(t, err)
	assert.Equal(t, 6.0, sum.Value(0, "t"))
}

func TestMemFills(t *testing.T) {
	m := NewMem()
	tb := FromRecords([]string{"a"}, [][]Value{{nil}, {int64(1)}, {nil}, {int64(3)}, {nil}})

	ff, err := m.ForwardFill(tb, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []Value{nil, int64(1), int64(1), int64(3), int64(3)}, ff.Column("a"))

	bf, err := m.BackwardFill(tb, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []Value{int64(1), int64(1), int64(3), int64(3), nil}, bf.Column("a"))

	// Input untouched.
	assert.Nil(t, tb.Value(0, "a"))
}

func TestMemConcatUnionSchema(t *testing.T) {
	m := NewMem()
	a := FromRecords([]string{"id", "x"}, [][]Value{{int64(1), "a"}})
	b := FromRecords([]string{"id", "y"}, [][]Value{{int64(2), 0.5}})
	out, err := m.Concat(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "x", "y"}, out.Columns())
	assert.Nil(t, out.Value(0, "y"))
	assert.Nil(t, out.Value(1, "x"))
	assert.Equal(t, 0.5, out.Value(1, "y"))
}

func TestMemDropDuplicates(t *testing.T) {
	m := NewMem()
	tb := FromRecords([]string{"id", "v"}, [][]Value{
		{int64(1), "a"},
		{int64(1), "b"},
		{int64(2), "c"},
	})
	out, err := m.DropDuplicates(tb, []string{"id"})
	require.NoError(t, err)
	require.Equal(t, 2, out.NumRows())
	assert.Equal(t, "a", out.Value(0, "v"))

	all, err := m.DropDuplicates(tb, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, all.NumRows())
}

func TestMemCastColumn(t *testing.T) {
	m := NewMem()
	tb := FromRecords([]string{"t"}, [][]Value{{1.9}, {nil}, {int64(3)}})
	out, err := m.CastColumn(tb, "t", KindInt)
	require.NoError(t, err)
	assert.Equal(t, []Value{int64(1), nil, int64(3)}, out.Column("t"))
}
