// Package continuity detects breaks in per-track interval sequences and
// synthesizes filler segments to make each track gapless.
package continuity

import (
	"fmt"

	"github.com/vincent-laurent/crep/frame"
)

// FillOptions configures Fill.
type FillOptions struct {
	// Limit drops filler segments whose width is not strictly below this
	// bound, to avoid bridging unrelated gaps. Zero or negative disables the
	// limit.
	Limit float64
}

// Discontinuity returns one flag per row of t, true at row i when row i starts
// a new track (the discrete key changed) or when end[i-1] != start[i] within
// the same track. The first row is never flagged.
//
// t must already be sorted by (discrete key, start).
func Discontinuity(t *frame.Table, keys frame.Keys) ([]bool, error) {
	var discrete [][]frame.Value
	for _, c := range keys.Discrete {
		if col := t.Column(c); col != nil {
			discrete = append(discrete, col)
		}
	}
	start := t.Column(keys.Start())
	end := t.Column(keys.End())
	if start == nil || end == nil {
		return nil, fmt.Errorf("continuity: table lacks bound columns %q, %q", keys.Start(), keys.End())
	}

	flags := make([]bool, t.NumRows())
	for i := 1; i < len(flags); i++ {
		for _, col := range discrete {
			if !frame.Equal(col[i], col[i-1]) {
				flags[i] = true
				break
			}
		}
		if !flags[i] && !frame.Equal(end[i-1], start[i]) {
			flags[i] = true
		}
	}
	return flags, nil
}

// trackStart reports whether row i opens a new track.
func trackStart(t *frame.Table, keys frame.Keys, i int) bool {
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

// Fill inserts one filler segment per intra-track discontinuity, spanning from
// the previous row's end to the flagged row's start, with the same discrete
// key and missing payload. The result is sorted by (discrete key, start, end)
// and is gapless per track. Rows of non-positive width are discarded along the
// way.
//
// If t has no discontinuity besides track starts, t is returned unchanged.
func Fill(store frame.Store, t *frame.Table, keys frame.Keys, optFns ...func(*FillOptions)) (*frame.Table, error) {
	opts := FillOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	flags, err := Discontinuity(t, keys)
	if err != nil {
		return nil, err
	}

	var fillerRecs [][]frame.Value
	startIdx := t.ColumnIndex(keys.Start())
	endIdx := t.ColumnIndex(keys.End())
	for i, flagged := range flags {
		if !flagged || trackStart(t, keys, i) {
			continue
		}
		lo := t.Value(i-1, keys.End())
		hi := t.Value(i, keys.Start())
		if frame.Compare(lo, hi) >= 0 {
			// Overlap break, nothing to bridge.
			continue
		}
		if opts.Limit > 0 {
			lof, okLo := frame.Number(lo)
			hif, okHi := frame.Number(hi)
			if okLo && okHi && hif-lof >= opts.Limit {
				continue
			}
		}
		rec := make([]frame.Value, len(t.Columns()))
		for j, c := range t.Columns() {
			switch j {
			case startIdx:
				rec[j] = lo
			case endIdx:
				rec[j] = hi
			default:
				if isDiscrete(keys, c) {
					rec[j] = t.Value(i, c)
				}
			}
		}
		fillerRecs = append(fillerRecs, rec)
	}

	if len(fillerRecs) == 0 {
		if gapless(flags, t, keys) {
			return t, nil
		}
		// Only overlap breaks or over-limit gaps: nothing added, but drop
		// degenerate rows and restore canonical order.
		return finish(store, t, keys)
	}

	combined, err := store.Concat(t, frame.FromRecords(t.Columns(), fillerRecs))
	if err != nil {
		return nil, err
	}
	return finish(store, combined, keys)
}

func gapless(flags []bool, t *frame.Table, keys frame.Keys) bool {
	for i, f := range flags {
		if f && !trackStart(t, keys, i) {
			return false
		}
	}
	return true
}

func finish(store frame.Store, t *frame.Table, keys frame.Keys) (*frame.Table, error) {
	start := t.Column(keys.Start())
	end := t.Column(keys.End())
	var keep []int
	for i := 0; i < t.NumRows(); i++ {
		if frame.Compare(start[i], end[i]) < 0 {
			keep = append(keep, i)
		}
	}
	return store.Sort(t.Gather(keep), keys.Index(), nil)
}

func isDiscrete(keys frame.Keys, col string) bool {
	for _, c := range keys.Discrete {
		if c == col {
			return true
		}
	}
	return false
}
