package crep

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/vincent-laurent/crep/frame"
)

const (
	colBin   = "__bin__"
	colOrder = "__order__"
)

// RegularSegmentation cuts every track into equal-width segments of
// approximately the given length, spanning the track's covered extent. The
// per-track bin count is the nearest integer to extent/length, with ties
// rounding to even; bin edges are rounded to the domain's numeric type when
// the bounds are integers. Bins
// overlapping no original row are dropped. A zero length returns the input
// unchanged.
func (e *Engine) RegularSegmentation(ctx context.Context, t *frame.Table, keys frame.Keys, length float64) (_ *frame.Table, err error) {
	started := time.Now()
	outRows := 0
	defer func() {
		e.logger.LogResample(ctx, length, outRows, time.Since(started), err)
		e.metrics.RecordResample(time.Since(started), err)
	}()

	if err = checkIndexColumns(t, keys); err != nil {
		return nil, err
	}
	if length < 0 || math.IsNaN(length) {
		return nil, fmt.Errorf("%w: segment length must be non-negative", ErrSchema)
	}
	if length == 0 {
		outRows = t.NumRows()
		return t, nil
	}

	extents, err := e.trackExtents(t, keys)
	if err != nil {
		return nil, err
	}
	intDomain := boundKind(t, keys) == frame.KindInt

	var recs [][]frame.Value
	binID := int64(0)
	for i := 0; i < extents.NumRows(); i++ {
		lo, okLo := frame.Number(extents.Value(i, keys.Start()))
		hi, okHi := frame.Number(extents.Value(i, keys.End()))
		if !okLo || !okHi {
			continue
		}
		nb := int(math.RoundToEven((hi - lo) / length))
		if nb < 1 {
			continue
		}
		edges := binEdges(lo, hi, nb, intDomain)
		dv := make([]frame.Value, len(keys.Discrete))
		for j, c := range keys.Discrete {
			dv[j] = extents.Value(i, c)
		}
		for j := 0; j+1 < len(edges); j++ {
			// Integer rounding can collapse an edge pair.
			if frame.Compare(edges[j], edges[j+1]) >= 0 {
				continue
			}
			rec := make([]frame.Value, 0, len(dv)+3)
			rec = append(rec, dv...)
			rec = append(rec, edges[j], edges[j+1], binID)
			binID++
			recs = append(recs, rec)
		}
	}
	bins := frame.FromRecords(append(keys.Index(), colBin), recs)

	covered, err := e.Merge(ctx, bins, t, keys, HowInner)
	if err != nil {
		return nil, err
	}
	keep := make(map[int64]bool, covered.NumRows())
	for _, v := range covered.Column(colBin) {
		if id, ok := v.(int64); ok {
			keep[id] = true
		}
	}
	var rows []int
	for i, v := range bins.Column(colBin) {
		if keep[v.(int64)] {
			rows = append(rows, i)
		}
	}
	out, err := e.store.SelectColumns(bins.Gather(rows), keys.Index())
	if err != nil {
		return nil, err
	}
	outRows = out.NumRows()
	return out, nil
}

// trackExtents computes (min start, max end) per discrete key.
func (e *Engine) trackExtents(t *frame.Table, keys frame.Keys) (*frame.Table, error) {
	lo, err := e.store.GroupAggregate(t, keys.Discrete, keys.Start(), frame.AggMin)
	if err != nil {
		return nil, err
	}
	hi, err := e.store.GroupAggregate(t, keys.Discrete, keys.End(), frame.AggMax)
	if err != nil {
		return nil, err
	}
	return e.store.EquiJoin(lo, hi, keys.Discrete, frame.JoinInner, "_r")
}

// boundKind inspects the first non-missing start value to pick the numeric
// domain of synthesized bin edges.
func boundKind(t *frame.Table, keys frame.Keys) frame.Kind {
	for _, v := range t.Column(keys.Start()) {
		if v != nil {
			return frame.KindOf(v)
		}
	}
	return frame.KindFloat
}

func binEdges(lo, hi float64, nb int, intDomain bool) []frame.Value {
	edges := make([]frame.Value, nb+1)
	for j := 0; j <= nb; j++ {
		v := lo + (hi-lo)*float64(j)/float64(nb)
		switch {
		case j == 0:
			v = lo
		case j == nb:
			v = hi
		}
		if intDomain {
			edges[j] = int64(math.Round(v))
		} else {
			edges[j] = v
		}
	}
	return edges
}

// MergeEvent folds a point-event table into an interval table. Events carry
// their time in the declared start column and must not declare the end
// column. Within each track, event payload is forward-filled onto the
// interval rows whose start is at or after the event time, until superseded
// by a later event. The output contains the interval rows only, extended
// with the event payload columns.
func (e *Engine) MergeEvent(ctx context.Context, intervals, events *frame.Table, keys frame.Keys) (_ *frame.Table, err error) {
	started := time.Now()
	outRows := 0
	defer func() {
		e.logger.LogMergeEvent(ctx, intervals.NumRows(), events.NumRows(), outRows, time.Since(started), err)
		e.metrics.RecordMerge(How("event"), time.Since(started), err)
	}()

	if err = checkIndexColumns(intervals, keys); err != nil {
		return nil, err
	}
	if events.HasColumn(keys.End()) {
		return nil, fmt.Errorf("%w: event table declares the end column %q; point events carry their time in %q only",
			ErrSchema, keys.End(), keys.Start())
	}
	for _, c := range append(append([]string(nil), keys.Discrete...), keys.Start()) {
		if !events.HasColumn(c) {
			return nil, &MissingColumnError{Column: c}
		}
	}

	var evCols []string
	for _, c := range events.Columns() {
		if c == keys.Start() || isDiscreteCol(keys, c) {
			continue
		}
		if intervals.HasColumn(c) {
			return nil, &ColumnCollisionError{Column: c}
		}
		evCols = append(evCols, c)
	}
	if len(evCols) == 0 {
		outRows = intervals.NumRows()
		return intervals, nil
	}

	zeros := make([]frame.Value, events.NumRows())
	for i := range zeros {
		zeros[i] = int64(0)
	}
	ones := make([]frame.Value, intervals.NumRows())
	for i := range ones {
		ones[i] = int64(1)
	}
	combined, err := e.store.Concat(events.WithColumn(colOrder, zeros), intervals.WithColumn(colOrder, ones))
	if err != nil {
		return nil, err
	}
	sorted, err := e.store.Sort(combined, append(append([]string(nil), keys.Discrete...), keys.Start(), colOrder), nil)
	if err != nil {
		return nil, err
	}

	cols := sorted.Columns()
	evIdx := make([]int, len(evCols))
	for i, c := range evCols {
		evIdx[i] = sorted.ColumnIndex(c)
	}
	di := make([]int, len(keys.Discrete))
	for i, c := range keys.Discrete {
		di[i] = sorted.ColumnIndex(c)
	}
	oi := sorted.ColumnIndex(colOrder)

	// Walk the unified stream: events update the carried state, interval rows
	// take a copy of it. State resets at every track change.
	var recs [][]frame.Value
	var state, prevKey []frame.Value
	for i := 0; i < sorted.NumRows(); i++ {
		rec := sorted.Record(i)
		key := make([]frame.Value, len(di))
		for j, c := range di {
			key[j] = rec[c]
		}
		if prevKey == nil || compareTuples(prevKey, key) != 0 {
			state = nil
			prevKey = key
		}
		if frame.Equal(rec[oi], int64(0)) {
			state = make([]frame.Value, len(evIdx))
			for j, c := range evIdx {
				state[j] = rec[c]
			}
			continue
		}
		for j, c := range evIdx {
			if state != nil {
				rec[c] = state[j]
			} else {
				rec[c] = nil
			}
		}
		recs = append(recs, rec)
	}

	out, err := e.store.SelectColumns(
		frame.FromRecords(cols, recs),
		append(intervals.Columns(), evCols...),
	)
	if err != nil {
		return nil, err
	}
	outRows = out.NumRows()
	return out, nil
}

func isDiscreteCol(keys frame.Keys, col string) bool {
	for _, c := range keys.Discrete {
		if c == col {
			return true
		}
	}
	return false
}
