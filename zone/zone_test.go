package zone

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vincent-laurent/crep/frame"
	"github.com/vincent-laurent/crep/testutil"
)

var keys = frame.Keys{Discrete: []string{"id"}, Bounds: [2]string{"t1", "t2"}}

func table(records ...[]frame.Value) *frame.Table {
	return frame.FromRecords([]string{"id", "t1", "t2", "data"}, records)
}

func TestAssign(t *testing.T) {
	tb := table(
		[]frame.Value{int64(1), int64(0), int64(5), 0.1},
		[]frame.Value{int64(1), int64(3), int64(8), 0.2}, // overlaps previous
		[]frame.Value{int64(1), int64(8), int64(12), 0.3},
		[]frame.Value{int64(2), int64(0), int64(4), 0.4},
	)
	zones, err := Assign(frame.NewMem(), tb, keys)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1, 2}, zones)
}

func TestAssignChainedOverlap(t *testing.T) {
	// Three rows pairwise connected through the running max end.
	tb := table(
		[]frame.Value{int64(1), int64(0), int64(10), 0.1},
		[]frame.Value{int64(1), int64(2), int64(4), 0.2},
		[]frame.Value{int64(1), int64(6), int64(12), 0.3},
		[]frame.Value{int64(1), int64(12), int64(15), 0.4},
	)
	zones, err := Assign(frame.NewMem(), tb, keys)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 1}, zones)
}

func TestAssignUnsortedInput(t *testing.T) {
	// Zone assignment is independent of input row order.
	tb := table(
		[]frame.Value{int64(1), int64(8), int64(12), 0.3},
		[]frame.Value{int64(1), int64(0), int64(5), 0.1},
		[]frame.Value{int64(1), int64(3), int64(8), 0.2},
	)
	zones, err := Assign(frame.NewMem(), tb, keys)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 0}, zones)
}

func TestOverlappingAndAdmissible(t *testing.T) {
	store := frame.NewMem()
	tb := table(
		[]frame.Value{int64(1), int64(0), int64(5), 0.1},
		[]frame.Value{int64(1), int64(3), int64(8), 0.2},
		[]frame.Value{int64(1), int64(8), int64(12), 0.3},
	)
	bm, err := Overlapping(store, tb, keys)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, bitmapRows(bm))

	ok, err := Admissible(store, tb, keys)
	require.NoError(t, err)
	assert.False(t, ok)

	sample, err := SampleNonAdmissible(store, tb, keys)
	require.NoError(t, err)
	require.Equal(t, 2, sample.NumRows())
	assert.Equal(t, 0.1, sample.Value(0, "data"))

	clean := table(
		[]frame.Value{int64(1), int64(0), int64(5), 0.1},
		[]frame.Value{int64(1), int64(5), int64(8), 0.2},
	)
	ok, err = Admissible(store, clean, keys)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBuildAdmissible(t *testing.T) {
	store := frame.NewMem()
	tb := table(
		[]frame.Value{int64(1), int64(0), int64(10), 0.1},
		[]frame.Value{int64(1), int64(5), int64(15), 0.2},
		[]frame.Value{int64(1), int64(20), int64(30), 0.3}, // untouched
	)
	out, err := BuildAdmissible(store, tb, keys)
	require.NoError(t, err)

	ok, err := Admissible(store, out, keys)
	require.NoError(t, err)
	assert.True(t, ok, "rebuilt table must be admissible per zone span")

	// Finest partition: [0,5) covered by row 1 only, [5,10) by both,
	// [10,15) by row 2 only, plus the untouched [20,30).
	assert.Equal(t, [][]frame.Value{
		{int64(1), int64(0), int64(5), 0.1},
		{int64(1), int64(5), int64(10), 0.1},
		{int64(1), int64(5), int64(10), 0.2},
		{int64(1), int64(10), int64(15), 0.2},
		{int64(1), int64(20), int64(30), 0.3},
	}, out.Records())
}

func TestBuildAdmissibleIdentity(t *testing.T) {
	store := frame.NewMem()
	tb := table(
		[]frame.Value{int64(1), int64(5), int64(8), 0.2},
		[]frame.Value{int64(1), int64(0), int64(5), 0.1},
	)
	out, err := BuildAdmissible(store, tb, keys)
	require.NoError(t, err)
	require.Equal(t, 2, out.NumRows())
	assert.Equal(t, int64(0), out.Value(0, "t1"))
}

func TestBuildAdmissibleDuplicateIntervals(t *testing.T) {
	store := frame.NewMem()
	// Identical intervals share one zone; the finest partition keeps the
	// bounds and duplicates the payload attachment.
	tb := table(
		[]frame.Value{int64(1), int64(5), int64(8), 0.1},
		[]frame.Value{int64(1), int64(5), int64(8), 0.2},
		[]frame.Value{int64(2), int64(0), int64(4), 0.3},
	)
	out, err := BuildAdmissible(store, tb, keys)
	require.NoError(t, err)
	assert.Equal(t, [][]frame.Value{
		{int64(1), int64(5), int64(8), 0.1},
		{int64(1), int64(5), int64(8), 0.2},
		{int64(2), int64(0), int64(4), 0.3},
	}, out.Records())
}

func TestBuildAdmissibleRandomized(t *testing.T) {
	store := frame.NewMem()
	rng := testutil.NewRNG(1337)
	spec := testutil.IntervalSpec{
		Tracks:   3,
		Segments: 6,
		GapProb:  0.3,
		MaxLen:   8,
		Payload:  []string{"data"},
	}

	// Two independently admissible layers stacked on top of each other give
	// a table with rich partial overlaps per track.
	mixed, err := store.Concat(rng.IntervalTable(keys, spec), rng.IntervalTable(keys, spec))
	require.NoError(t, err)

	out, err := BuildAdmissible(store, mixed, keys)
	require.NoError(t, err)

	// Distinct output intervals of a track never partially overlap; only
	// exact duplicates (payload attachments) repeat an interval.
	distinct, err := store.DropDuplicates(out, keys.Index())
	require.NoError(t, err)
	assert.False(t, testutil.Overlapping(distinct, keys))

	// Coverage is conserved point by point.
	for tr := 0; tr < spec.Tracks; tr++ {
		track := fmt.Sprintf("track-%d", tr)
		for p := 0.5; p < 200; p++ {
			assert.Equal(t,
				testutil.Covered(mixed, keys, track, p),
				testutil.Covered(out, keys, track, p),
				"track %s, point %v", track, p)
		}
	}
}
