package crep

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/emirpasic/gods/v2/sets/treeset"

	"github.com/vincent-laurent/crep/frame"
)

// Surrogate columns carrying the source-row identifier of each side during a
// merge. They never appear in the output.
const (
	colLeftIdx  = "__lidx__"
	colRightIdx = "__ridx__"
)

// MergeOptions tunes a single Merge call.
type MergeOptions struct {
	// SuppressDuplicates coalesces adjacent output rows of a track that carry
	// identical payload and contiguous bounds into one spanning row.
	SuppressDuplicates bool
}

// Merge joins two interval tables keyed by (discrete key, half-open interval).
//
// Both sides are cut at the union of their breakpoints per track, so the
// output is a partition in which every row is covered by at most one source
// row per side. how selects which coverage patterns survive: left and right
// require coverage on the named side, inner on both, outer on either. Payload
// columns from both sides are carried over; right-side payload whose name
// already appears on the left is attached under the "_r" suffix.
//
// When one side declares fewer discrete key columns than the other, its rows
// are broadcast against the richer side's distinct key combinations first.
// Each side should be admissible; overlapping rows within one side yield
// unspecified coverage. Tables lacking both bound columns are event-indexed
// and rejected, see MergeEvent.
func (e *Engine) Merge(ctx context.Context, left, right *frame.Table, keys frame.Keys, how How, optFns ...func(*MergeOptions)) (_ *frame.Table, err error) {
	started := time.Now()
	outRows := 0
	defer func() {
		e.logger.LogMerge(ctx, how, left.NumRows(), right.NumRows(), outRows, time.Since(started), err)
		e.metrics.RecordMerge(how, time.Since(started), err)
	}()

	var opts MergeOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}

	if err = checkMergeArgs(left, right, keys, how); err != nil {
		return nil, err
	}
	leftEvent, rightEvent := isEvent(left, keys), isEvent(right, keys)
	switch {
	case leftEvent && rightEvent:
		return nil, fmt.Errorf("%w: both inputs are event-indexed", ErrUnsupported)
	case leftEvent:
		return nil, &EventIndexedError{Side: "left"}
	case rightEvent:
		return nil, &EventIndexedError{Side: "right"}
	}

	left, right, err = e.broadcastKeys(left, right, keys)
	if err != nil {
		return nil, err
	}

	leftIDs, leftIdx, err := e.indexSide(left, keys, colLeftIdx)
	if err != nil {
		return nil, err
	}
	rightIDs, rightIdx, err := e.indexSide(right, keys, colRightIdx)
	if err != nil {
		return nil, err
	}

	tracks := buildTracks(leftIdx, rightIdx, keys)

	perTrack := make([][][]frame.Value, len(tracks))
	err = forEachTrack(ctx, e.parallelism, len(tracks), func(i int) error {
		perTrack[i] = sweepTrack(tracks[i], how)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var recs [][]frame.Value
	for _, r := range perTrack {
		recs = append(recs, r...)
	}
	skeleton := frame.FromRecords(append(keys.Index(), colLeftIdx, colRightIdx), recs)

	out, err := e.attachPayload(skeleton, leftIDs, rightIDs, keys)
	if err != nil {
		return nil, err
	}
	if opts.SuppressDuplicates {
		out, err = coalesceRuns(e.store, out, keys)
		if err != nil {
			return nil, err
		}
	}
	outRows = out.NumRows()
	return out, nil
}

// broadcastKeys equalizes the discrete key sets of the two sides. The side
// missing key columns is inner-joined against the distinct combinations of
// the full key set consistent with both sides.
func (e *Engine) broadcastKeys(left, right *frame.Table, keys frame.Keys) (*frame.Table, *frame.Table, error) {
	if len(keys.Discrete) == 0 {
		return left, right, nil
	}
	dl, dr := discreteIn(left, keys), discreteIn(right, keys)
	if len(dl) == len(keys.Discrete) && len(dr) == len(keys.Discrete) {
		return left, right, nil
	}

	universe, err := e.keyUniverse(left, right, dl, dr)
	if err != nil {
		return nil, nil, err
	}
	if len(dl) < len(keys.Discrete) {
		if left, err = e.store.EquiJoin(universe, left, dl, frame.JoinInner, "_r"); err != nil {
			return nil, nil, err
		}
	}
	if len(dr) < len(keys.Discrete) {
		if right, err = e.store.EquiJoin(universe, right, dr, frame.JoinInner, "_r"); err != nil {
			return nil, nil, err
		}
	}
	return left, right, nil
}

// keyUniverse builds the distinct combinations of the full discrete key set
// consistent with both sides' observed keys. Joining on the shared columns
// keeps only combinations both sides can participate in; with no shared
// columns the sets combine as a cross product.
func (e *Engine) keyUniverse(left, right *frame.Table, dl, dr []string) (*frame.Table, error) {
	lk, err := e.distinctKeys(left, dl)
	if err != nil {
		return nil, err
	}
	rk, err := e.distinctKeys(right, dr)
	if err != nil {
		return nil, err
	}
	switch {
	case lk == nil:
		return rk, nil
	case rk == nil:
		return lk, nil
	}
	return e.store.EquiJoin(lk, rk, intersect(dl, dr), frame.JoinInner, "_r")
}

func (e *Engine) distinctKeys(t *frame.Table, cols []string) (*frame.Table, error) {
	if len(cols) == 0 {
		return nil, nil
	}
	sel, err := e.store.SelectColumns(dropMissingIndex(t, cols), cols)
	if err != nil {
		return nil, err
	}
	return e.store.DropDuplicates(sel, nil)
}

func intersect(a, b []string) []string {
	set := make(map[string]bool, len(b))
	for _, c := range b {
		set[c] = true
	}
	out := make([]string, 0, len(a))
	for _, c := range a {
		if set[c] {
			out = append(out, c)
		}
	}
	return out
}

// indexSide numbers the side's rows with a surrogate identifier and reduces
// it to its distinct (discrete key, interval) combinations, sorted by
// (discrete key, start). withID is the full table carrying the surrogate,
// used later to resolve surrogates back to payload.
func (e *Engine) indexSide(t *frame.Table, keys frame.Keys, idxCol string) (withID, index *frame.Table, err error) {
	ids := make([]frame.Value, t.NumRows())
	for i := range ids {
		ids[i] = int64(i)
	}
	withID = t.WithColumn(idxCol, ids)

	sel, err := e.store.SelectColumns(withID, append(keys.Index(), idxCol))
	if err != nil {
		return nil, nil, err
	}
	distinct, err := e.store.DropDuplicates(dropMissingIndex(sel, keys.Index()), keys.Index())
	if err != nil {
		return nil, nil, err
	}
	index, err = e.store.Sort(distinct, keys.Index(), nil)
	if err != nil {
		return nil, nil, err
	}
	return withID, index, nil
}

// mergeSeg is one distinct source interval of a track. src is the surrogate
// identifier of the source row.
type mergeSeg struct {
	start, end frame.Value
	src        frame.Value
}

// mergeTrack pairs both sides' segments of one discrete key.
type mergeTrack struct {
	discrete    []frame.Value
	left, right []mergeSeg
}

// buildTracks groups both index tables by discrete key. Tracks come out
// sorted by key and segments sorted by start, inherited from the index sort.
func buildTracks(leftIdx, rightIdx *frame.Table, keys frame.Keys) []*mergeTrack {
	byKey := make(map[string]*mergeTrack)
	var tracks []*mergeTrack

	add := func(t *frame.Table, idxCol string, right bool) {
		for i := 0; i < t.NumRows(); i++ {
			dv := make([]frame.Value, len(keys.Discrete))
			for j, c := range keys.Discrete {
				dv[j] = t.Value(i, c)
			}
			k := trackKey(dv)
			tr := byKey[k]
			if tr == nil {
				tr = &mergeTrack{discrete: dv}
				byKey[k] = tr
				tracks = append(tracks, tr)
			}
			seg := mergeSeg{
				start: t.Value(i, keys.Start()),
				end:   t.Value(i, keys.End()),
				src:   t.Value(i, idxCol),
			}
			if right {
				tr.right = append(tr.right, seg)
			} else {
				tr.left = append(tr.left, seg)
			}
		}
	}
	add(leftIdx, colLeftIdx, false)
	add(rightIdx, colRightIdx, true)

	sort.SliceStable(tracks, func(i, j int) bool {
		return compareTuples(tracks[i].discrete, tracks[j].discrete) < 0
	})
	return tracks
}

func compareTuples(a, b []frame.Value) int {
	for i := range a {
		if c := frame.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

// trackKey encodes a discrete key tuple into a hashable string. Numbers are
// canonicalized so int64 and float64 keys collide, matching join semantics.
func trackKey(vals []frame.Value) string {
	var b strings.Builder
	for _, v := range vals {
		switch x := v.(type) {
		case nil:
			b.WriteString("~;")
		case bool:
			if x {
				b.WriteString("b1;")
			} else {
				b.WriteString("b0;")
			}
		case int64:
			b.WriteString("n")
			b.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 64))
			b.WriteByte(';')
		case float64:
			b.WriteString("n")
			b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
			b.WriteByte(';')
		case string:
			b.WriteString("s")
			b.WriteString(strconv.Quote(x))
			b.WriteByte(';')
		}
	}
	return b.String()
}

// sweepTrack cuts the track at the union of both sides' breakpoints and
// resolves, for every elementary segment, which source row of each side
// covers it. Segments covered by neither side are dropped, then how filters
// the coverage pattern. Absence is a missing surrogate, never a sentinel.
func sweepTrack(tr *mergeTrack, how How) [][]frame.Value {
	bp := treeset.NewWith[frame.Value](frame.Compare)
	for _, s := range tr.left {
		bp.Add(s.start, s.end)
	}
	for _, s := range tr.right {
		bp.Add(s.start, s.end)
	}
	points := bp.Values()

	var recs [][]frame.Value
	pl, pr := 0, 0
	for i := 0; i+1 < len(points); i++ {
		b0, b1 := points[i], points[i+1]
		lsrc, lok := cover(tr.left, &pl, b0)
		rsrc, rok := cover(tr.right, &pr, b0)
		if !lok && !rok {
			continue
		}
		switch how {
		case HowLeft:
			if !lok {
				continue
			}
		case HowRight:
			if !rok {
				continue
			}
		case HowInner:
			if !lok || !rok {
				continue
			}
		}
		rec := make([]frame.Value, 0, len(tr.discrete)+4)
		rec = append(rec, tr.discrete...)
		rec = append(rec, b0, b1, lsrc, rsrc)
		recs = append(recs, rec)
	}
	return recs
}

// cover advances the cursor past segments ending at or before b0 and reports
// the surrogate of the segment covering [b0, next breakpoint), if any. Both
// breakpoints of every segment are in the sweep, so a segment that is still
// open at b0 covers the whole elementary segment.
func cover(segs []mergeSeg, p *int, b0 frame.Value) (frame.Value, bool) {
	for *p < len(segs) && frame.Compare(segs[*p].end, b0) <= 0 {
		*p++
	}
	if *p < len(segs) && frame.Compare(segs[*p].start, b0) <= 0 {
		return segs[*p].src, true
	}
	return nil, false
}

// attachPayload resolves the skeleton's surrogate columns back to payload via
// left equi-joins on the surrogate identifiers. Left payload is attached
// first; right payload whose name is already taken comes out under the join
// suffix, so no column is lost.
func (e *Engine) attachPayload(skeleton, leftIDs, rightIDs *frame.Table, keys frame.Keys) (*frame.Table, error) {
	index := make(map[string]bool)
	for _, c := range keys.Index() {
		index[c] = true
	}

	out := skeleton
	for _, side := range []struct {
		ids    *frame.Table
		idxCol string
	}{
		{leftIDs, colLeftIdx},
		{rightIDs, colRightIdx},
	} {
		cols := payloadCols(side.ids, index)
		if len(cols) == 0 {
			continue
		}
		src, err := e.store.SelectColumns(side.ids, append([]string{side.idxCol}, cols...))
		if err != nil {
			return nil, err
		}
		if out, err = e.store.EquiJoin(out, src, []string{side.idxCol}, frame.JoinLeft, "_r"); err != nil {
			return nil, err
		}
	}
	return out.WithoutColumns(colLeftIdx, colRightIdx), nil
}

// payloadCols lists a side's columns worth re-attaching: everything that is
// not an index column and not a surrogate.
func payloadCols(t *frame.Table, index map[string]bool) []string {
	var cols []string
	for _, c := range t.Columns() {
		if index[c] || c == colLeftIdx || c == colRightIdx {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}
