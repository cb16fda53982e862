package crep

import (
	"context"
	"fmt"
	"time"

	"github.com/vincent-laurent/crep/frame"
	"github.com/vincent-laurent/crep/zone"
)

const colCover = "__cov__"

// UnbalancedMerge overlays override intervals onto an admissible base table.
// Wherever the override covers, its rows win: shared payload columns take the
// override value and base-only payload is attached underneath. Base segments
// outside the override footprint pass through, cut at override boundaries.
// The override table may overlap itself; it is re-admissibilized first.
//
// Per track, the union of output intervals equals the union of base and
// override coverage.
func (e *Engine) UnbalancedMerge(ctx context.Context, base, override *frame.Table, keys frame.Keys) (_ *frame.Table, err error) {
	started := time.Now()
	outRows := 0
	defer func() {
		e.logger.LogOverlay(ctx, base.NumRows(), override.NumRows(), outRows, time.Since(started), err)
		e.metrics.RecordOverlay(time.Since(started), err)
	}()

	if err = checkIndexColumns(base, keys); err != nil {
		return nil, err
	}
	if err = checkIndexColumns(override, keys); err != nil {
		return nil, err
	}

	ok, err := zone.Admissible(e.store, base, keys)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: base table has overlapping rows", ErrNotAdmissible)
	}

	part, err := zone.BuildAdmissible(e.store, override, keys)
	if err != nil {
		return nil, err
	}

	// The override footprint, cut at base breakpoints. Base-only payload
	// rides along; where a base column shares the override's name the merge
	// attaches it suffixed, and that copy is stripped so the override wins.
	footprint, err := e.Merge(ctx, part, base, keys, HowLeft)
	if err != nil {
		return nil, err
	}
	var shadowed []string
	for _, c := range base.Columns() {
		if c == keys.Start() || c == keys.End() || isDiscreteCol(keys, c) {
			continue
		}
		if part.HasColumn(c) {
			shadowed = append(shadowed, c+"_r")
		}
	}
	footprint = footprint.WithoutColumns(shadowed...)

	// Base segments outside the footprint, cut at override boundaries. The
	// marker column tags override coverage so covered cuts can be dropped.
	cover, err := e.store.SelectColumns(part, keys.Index())
	if err != nil {
		return nil, err
	}
	marks := make([]frame.Value, cover.NumRows())
	for i := range marks {
		marks[i] = int64(1)
	}
	cut, err := e.Merge(ctx, base, cover.WithColumn(colCover, marks), keys, HowLeft)
	if err != nil {
		return nil, err
	}
	var keep []int
	for i, v := range cut.Column(colCover) {
		if v == nil {
			keep = append(keep, i)
		}
	}
	remainder := cut.Gather(keep).WithoutColumns(colCover)

	out, err := e.store.Concat(footprint, remainder)
	if err != nil {
		return nil, err
	}
	if out, err = e.store.Sort(out, keys.Index(), nil); err != nil {
		return nil, err
	}
	outRows = out.NumRows()
	return out, nil
}
