package crep

import (
	"context"
	"fmt"
	"time"

	"github.com/vincent-laurent/crep/frame"
)

// AggregateConstant collapses runs of rows carrying identical payload and
// contiguous bounds within a track into a single spanning row. The table is
// sorted by (discrete key, start) first; rows separated by a gap or a track
// change never coalesce.
//
// Missing payload values never compare equal, so rows with a missing cell
// always stay separate.
func (e *Engine) AggregateConstant(ctx context.Context, t *frame.Table, keys frame.Keys) (_ *frame.Table, err error) {
	started := time.Now()
	outRows := 0
	defer func() {
		e.logger.LogAggregate(ctx, t.NumRows(), outRows, time.Since(started), err)
		e.metrics.RecordAggregate(time.Since(started), err)
	}()

	if err = checkIndexColumns(t, keys); err != nil {
		return nil, err
	}
	out, err := coalesceRuns(e.store, t, keys)
	if err != nil {
		return nil, err
	}
	outRows = out.NumRows()
	return out, nil
}

// SuppressDuplicates collapses rows made redundant by their neighbours: runs
// of contiguous rows that carry the same payload become one row. It is the
// post-pass applied by Merge under MergeOptions.SuppressDuplicates, exposed
// for tables built elsewhere. Same semantics as AggregateConstant.
func (e *Engine) SuppressDuplicates(ctx context.Context, t *frame.Table, keys frame.Keys) (*frame.Table, error) {
	return e.AggregateConstant(ctx, t, keys)
}

// checkIndexColumns verifies that keys declares two bound columns and that t
// carries every index column.
func checkIndexColumns(t *frame.Table, keys frame.Keys) error {
	if keys.Bounds[0] == "" || keys.Bounds[1] == "" || keys.Bounds[0] == keys.Bounds[1] {
		return fmt.Errorf("%w: exactly two distinct bound columns are required", ErrSchema)
	}
	for _, c := range keys.Index() {
		if !t.HasColumn(c) {
			return &MissingColumnError{Column: c}
		}
	}
	return nil
}

// coalesceRuns merges each maximal run of contiguous same-payload rows into
// one row spanning from the run's first start to its last end.
func coalesceRuns(store frame.Store, t *frame.Table, keys frame.Keys) (*frame.Table, error) {
	sorted, err := store.Sort(t, keys.Index(), nil)
	if err != nil {
		return nil, err
	}
	n := sorted.NumRows()
	if n == 0 {
		return sorted, nil
	}

	cols := sorted.Columns()
	isDiscrete := make(map[string]bool, len(keys.Discrete))
	for _, c := range keys.Discrete {
		isDiscrete[c] = true
	}
	var discrete, payload []int
	for i, c := range cols {
		switch {
		case c == keys.Start() || c == keys.End():
		case isDiscrete[c]:
			discrete = append(discrete, i)
		default:
			payload = append(payload, i)
		}
	}
	si := sorted.ColumnIndex(keys.Start())
	ei := sorted.ColumnIndex(keys.End())

	recs := make([][]frame.Value, 0, n)
	cur := sorted.Record(0)
	for i := 1; i < n; i++ {
		rec := sorted.Record(i)
		if extendsRun(cur, rec, discrete, payload, si, ei) {
			cur[ei] = rec[ei]
			continue
		}
		recs = append(recs, cur)
		cur = rec
	}
	recs = append(recs, cur)
	return frame.FromRecords(cols, recs), nil
}

// extendsRun reports whether rec continues cur's run: same track, rec starts
// exactly where the run currently ends, and every payload cell is non-missing
// and equal.
func extendsRun(cur, rec []frame.Value, discrete, payload []int, si, ei int) bool {
	for _, c := range discrete {
		if !frame.Equal(cur[c], rec[c]) {
			return false
		}
	}
	if !frame.Equal(cur[ei], rec[si]) {
		return false
	}
	for _, c := range payload {
		if cur[c] == nil || rec[c] == nil || !frame.Equal(cur[c], rec[c]) {
			return false
		}
	}
	return true
}
