// Package zone groups the rows of each track into maximal clusters of
// mutually overlapping intervals and rebuilds overlapping clusters into
// admissible (non-overlapping) partitions.
package zone

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/vincent-laurent/crep/frame"
)

const (
	colRow  = "__row__"
	colZone = "__zone__"
	colSrc  = "__src__"
)

// Assign computes one zone id per row of t. Zone ids are global running
// counters: a new zone opens at every track start and whenever a row's start
// is at or past the running maximum end of the zone being scanned.
//
// The returned slice is aligned with t's row order.
func Assign(store frame.Store, t *frame.Table, keys frame.Keys) ([]int, error) {
	n := t.NumRows()
	zones := make([]int, n)
	if n == 0 {
		return zones, nil
	}
	ids := make([]frame.Value, n)
	for i := range ids {
		ids[i] = int64(i)
	}
	by := append(append([]string(nil), keys.Discrete...), keys.Start())
	sorted, err := store.Sort(t.WithColumn(colRow, ids), by, nil)
	if err != nil {
		return nil, err
	}

	start := sorted.Column(keys.Start())
	end := sorted.Column(keys.End())
	if start == nil || end == nil {
		return nil, fmt.Errorf("zone: table lacks bound columns %q, %q", keys.Start(), keys.End())
	}

	zone := -1
	var maxEnd frame.Value
	for i := 0; i < n; i++ {
		if newTrack(sorted, keys, i) || frame.Compare(start[i], maxEnd) >= 0 {
			zone++
			maxEnd = end[i]
		} else if frame.Compare(end[i], maxEnd) > 0 {
			maxEnd = end[i]
		}
		orig := sorted.Value(i, colRow).(int64)
		zones[orig] = zone
	}
	return zones, nil
}

func newTrack(t *frame.Table, keys frame.Keys, i int) bool {
	if i == 0 {
		return true
	}
	for _, c := range keys.Discrete {
		if !frame.Equal(t.Value(i, c), t.Value(i-1, c)) {
			return true
		}
	}
	return false
}

// Overlapping returns the set of rows whose zone is shared with at least one
// other row.
func Overlapping(store frame.Store, t *frame.Table, keys frame.Keys) (*roaring.Bitmap, error) {
	zones, err := Assign(store, t, keys)
	if err != nil {
		return nil, err
	}
	counts := make(map[int]int, len(zones))
	for _, z := range zones {
		counts[z]++
	}
	bm := roaring.New()
	for i, z := range zones {
		if counts[z] > 1 {
			bm.Add(uint32(i))
		}
	}
	return bm, nil
}

// Admissible reports whether no two rows of the same track overlap.
func Admissible(store frame.Store, t *frame.Table, keys frame.Keys) (bool, error) {
	bm, err := Overlapping(store, t, keys)
	if err != nil {
		return false, err
	}
	return bm.IsEmpty(), nil
}

// SampleNonAdmissible returns only the rows that belong to an overlapping
// zone, in their original order.
func SampleNonAdmissible(store frame.Store, t *frame.Table, keys frame.Keys) (*frame.Table, error) {
	bm, err := Overlapping(store, t, keys)
	if err != nil {
		return nil, err
	}
	return t.Gather(bitmapRows(bm)), nil
}

func bitmapRows(bm *roaring.Bitmap) []int {
	rows := make([]int, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		rows = append(rows, int(it.Next()))
	}
	return rows
}
