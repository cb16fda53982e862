package zone

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/vincent-laurent/crep/frame"
)

// BuildAdmissible converts a table containing overlapping zones into a
// non-overlapping finest partition. For every overlapping zone the boundary
// points of its member rows induce the finest consecutive split; each fine
// segment is joined back to every member row whose interval strictly covers
// it, duplicating that row's payload. Zones whose boundary set collapses to a
// single point contribute nothing. Non-overlapping rows pass through
// unchanged.
//
// The result is sorted by (discrete key, start, end). Adjacent equal-valued
// segments are not coalesced; aggregation is a separate step.
func BuildAdmissible(store frame.Store, t *frame.Table, keys frame.Keys) (*frame.Table, error) {
	zones, err := Assign(store, t, keys)
	if err != nil {
		return nil, err
	}
	counts := make(map[int]int, len(zones))
	for _, z := range zones {
		counts[z]++
	}
	overlapping := roaring.New()
	for i, z := range zones {
		if counts[z] > 1 {
			overlapping.Add(uint32(i))
		}
	}
	if overlapping.IsEmpty() {
		return store.Sort(t, keys.Index(), nil)
	}

	nonAdm := t.Gather(bitmapRows(overlapping))
	zoneIDs := make([]frame.Value, nonAdm.NumRows())
	srcIDs := make([]frame.Value, nonAdm.NumRows())
	for i, r := range bitmapRows(overlapping) {
		zoneIDs[i] = int64(zones[r])
		srcIDs[i] = int64(i)
	}
	nonAdm = nonAdm.WithColumn(colZone, zoneIDs).WithColumn(colSrc, srcIDs)

	fine, err := finestPartition(nonAdm, keys)
	if err != nil {
		return nil, err
	}

	// Attach every member row of the zone to each fine segment, then keep
	// only the members whose interval strictly covers the segment.
	members, err := store.SelectColumns(nonAdm, []string{colZone, colSrc, keys.Start(), keys.End()})
	if err != nil {
		return nil, err
	}
	joined, err := store.EquiJoin(fine, members, []string{colZone}, frame.JoinInner, "_tmp")
	if err != nil {
		return nil, err
	}
	startTmp := keys.Start() + "_tmp"
	endTmp := keys.End() + "_tmp"
	var keep []int
	for i := 0; i < joined.NumRows(); i++ {
		covers := frame.Compare(joined.Value(i, startTmp), joined.Value(i, keys.End())) < 0 &&
			frame.Compare(joined.Value(i, endTmp), joined.Value(i, keys.Start())) > 0
		if covers {
			keep = append(keep, i)
		}
	}
	joined = joined.Gather(keep).WithoutColumns(startTmp, endTmp, colZone)

	// Re-attach the member payload through the source id.
	payload := nonAdm.WithoutColumns(append(keys.Index(), colZone)...)
	rebuilt, err := store.EquiJoin(joined, payload, []string{colSrc}, frame.JoinInner, "_tmp")
	if err != nil {
		return nil, err
	}
	rebuilt = rebuilt.WithoutColumns(colSrc)

	passThrough := t.Gather(complementRows(overlapping, t.NumRows()))
	combined, err := store.Concat(passThrough, rebuilt)
	if err != nil {
		return nil, err
	}
	return store.Sort(combined, keys.Index(), nil)
}

// finestPartition builds, per zone, the consecutive segments between the
// distinct sorted boundary points of the zone's member rows.
func finestPartition(nonAdm *frame.Table, keys frame.Keys) (*frame.Table, error) {
	type zoneAcc struct {
		first  int
		points []frame.Value
	}
	var order []int64
	accs := make(map[int64]*zoneAcc)
	for i := 0; i < nonAdm.NumRows(); i++ {
		z := nonAdm.Value(i, colZone).(int64)
		acc, ok := accs[z]
		if !ok {
			acc = &zoneAcc{first: i}
			accs[z] = acc
			order = append(order, z)
		}
		acc.points = append(acc.points, nonAdm.Value(i, keys.Start()), nonAdm.Value(i, keys.End()))
	}

	cols := append(append([]string(nil), keys.Discrete...), keys.Start(), keys.End(), colZone)
	var records [][]frame.Value
	for _, z := range order {
		acc := accs[z]
		sort.SliceStable(acc.points, func(a, b int) bool {
			return frame.Compare(acc.points[a], acc.points[b]) < 0
		})
		distinct := acc.points[:0:0]
		for _, p := range acc.points {
			if len(distinct) == 0 || !frame.Equal(distinct[len(distinct)-1], p) {
				distinct = append(distinct, p)
			}
		}
		if len(distinct) < 2 {
			// Degenerate zone: no positive-width resolution possible.
			continue
		}
		for i := 0; i+1 < len(distinct); i++ {
			rec := make([]frame.Value, 0, len(cols))
			for _, c := range keys.Discrete {
				rec = append(rec, nonAdm.Value(acc.first, c))
			}
			rec = append(rec, distinct[i], distinct[i+1], z)
			records = append(records, rec)
		}
	}
	return frame.FromRecords(cols, records), nil
}

func complementRows(bm *roaring.Bitmap, n int) []int {
	rows := make([]int, 0, n-int(bm.GetCardinality()))
	for i := 0; i < n; i++ {
		if !bm.Contains(uint32(i)) {
			rows = append(rows, i)
		}
	}
	return rows
}
