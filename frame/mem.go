package frame

import (
	"fmt"
	"sort"
)

// Mem is the default in-memory Store implementation.
//
// It is stateless and safe for concurrent use; every operation materializes a
// new table.
type Mem struct{}

// NewMem creates the in-memory store.
func NewMem() *Mem { return &Mem{} }

var _ Store = (*Mem)(nil)

// Sort implements Store.
func (m *Mem) Sort(t *Table, by []string, asc []bool) (*Table, error) {
	cols, err := columnIndices(t, by)
	if err != nil {
		return nil, err
	}
	perm := make([]int, t.NumRows())
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		ra, rb := perm[a], perm[b]
		for k, c := range cols {
			cmp := Compare(t.data[c][ra], t.data[c][rb])
			if cmp == 0 {
				continue
			}
			ascending := k >= len(asc) || asc[k]
			if ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})
	return t.Gather(perm), nil
}

// EquiJoin implements Store. It is a hash join preserving left row order;
// each left row is emitted once per matching right row.
func (m *Mem) EquiJoin(left, right *Table, on []string, how JoinHow, suffix string) (*Table, error) {
	if how != JoinInner && how != JoinLeft {
		return nil, fmt.Errorf("frame: unsupported join %q", how)
	}
	lcols, err := columnIndices(left, on)
	if err != nil {
		return nil, fmt.Errorf("frame: join left side: %w", err)
	}
	rcols, err := columnIndices(right, on)
	if err != nil {
		return nil, fmt.Errorf("frame: join right side: %w", err)
	}
	if suffix == "" {
		suffix = "_r"
	}

	onSet := make(map[string]bool, len(on))
	for _, c := range on {
		onSet[c] = true
	}
	// Right payload columns, renamed on collision.
	var rightPayload []int
	var rightNames []string
	for i, c := range right.cols {
		if onSet[c] {
			continue
		}
		name := c
		if left.HasColumn(name) {
			name += suffix
		}
		rightPayload = append(rightPayload, i)
		rightNames = append(rightNames, name)
	}

	outCols := append(left.Columns(), rightNames...)
	out := New(outCols...)

	buckets := make(map[string][]int, right.NumRows())
	for r := 0; r < right.NumRows(); r++ {
		k := keyOf(right, r, rcols)
		buckets[k] = append(buckets[k], r)
	}

	emit := func(l, r int) {
		rec := left.Record(l)
		for _, rc := range rightPayload {
			if r >= 0 {
				rec = append(rec, right.data[rc][r])
			} else {
				rec = append(rec, nil)
			}
		}
		out.appendRecord(rec)
	}

	for l := 0; l < left.NumRows(); l++ {
		matches := buckets[keyOf(left, l, lcols)]
		if len(matches) == 0 {
			if how == JoinLeft {
				emit(l, -1)
			}
			continue
		}
		for _, r := range matches {
			emit(l, r)
		}
	}
	return out, nil
}

// GroupAggregate implements Store.
func (m *Mem) GroupAggregate(t *Table, by []string, col string, op AggOp) (*Table, error) {
	gcols, err := columnIndices(t, by)
	if err != nil {
		return nil, err
	}
	ci := t.ColumnIndex(col)
	if ci < 0 {
		return nil, fmt.Errorf("frame: unknown column %q", col)
	}

	type group struct {
		first int
		count int64
		sum   float64
		min   Value
		max   Value
	}
	order := make([]string, 0)
	groups := make(map[string]*group)
	for r := 0; r < t.NumRows(); r++ {
		k := keyOf(t, r, gcols)
		g, ok := groups[k]
		if !ok {
			g = &group{first: r}
			groups[k] = g
			order = append(order, k)
		}
		v := t.data[ci][r]
		if v == nil {
			continue
		}
		g.count++
		if f, ok := Number(v); ok {
			g.sum += f
		}
		if g.min == nil || Compare(v, g.min) < 0 {
			g.min = v
		}
		if g.max == nil || Compare(v, g.max) > 0 {
			g.max = v
		}
	}

	out := New(append(append([]string(nil), by...), col)...)
	for _, k := range order {
		g := groups[k]
		rec := make([]Value, 0, len(by)+1)
		for _, c := range gcols {
			rec = append(rec, t.data[c][g.first])
		}
		switch op {
		case AggMin:
			rec = append(rec, g.min)
		case AggMax:
			rec = append(rec, g.max)
		case AggCount:
			rec = append(rec, g.count)
		case AggSum:
			rec = append(rec, g.sum)
		default:
			return nil, fmt.Errorf("frame: unsupported aggregation %q", op)
		}
		out.appendRecord(rec)
	}
	return out, nil
}

// ForwardFill implements Store.
func (m *Mem) ForwardFill(t *Table, cols []string) (*Table, error) {
	return m.fill(t, cols, false)
}

// BackwardFill implements Store.
func (m *Mem) BackwardFill(t *Table, cols []string) (*Table, error) {
	return m.fill(t, cols, true)
}

func (m *Mem) fill(t *Table, cols []string, backward bool) (*Table, error) {
	idx, err := columnIndices(t, cols)
	if err != nil {
		return nil, err
	}
	out := t.Clone()
	n := out.NumRows()
	for _, c := range idx {
		col := out.data[c]
		var last Value
		if backward {
			for i := n - 1; i >= 0; i-- {
				if col[i] != nil {
					last = col[i]
				} else {
					col[i] = last
				}
			}
		} else {
			for i := 0; i < n; i++ {
				if col[i] != nil {
					last = col[i]
				} else {
					col[i] = last
				}
			}
		}
	}
	return out, nil
}

// Concat implements Store.
func (m *Mem) Concat(ts ...*Table) (*Table, error) {
	var cols []string
	seen := make(map[string]bool)
	for _, t := range ts {
		if t == nil {
			continue
		}
		for _, c := range t.cols {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	out := New(cols...)
	for _, t := range ts {
		if t == nil {
			continue
		}
		for r := 0; r < t.NumRows(); r++ {
			rec := make([]Value, len(cols))
			for i, c := range cols {
				if j := t.ColumnIndex(c); j >= 0 {
					rec[i] = t.data[j][r]
				}
			}
			out.appendRecord(rec)
		}
	}
	return out, nil
}

// DropDuplicates implements Store.
func (m *Mem) DropDuplicates(t *Table, subset []string) (*Table, error) {
	if len(subset) == 0 {
		subset = t.Columns()
	}
	cols, err := columnIndices(t, subset)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, t.NumRows())
	var keep []int
	for r := 0; r < t.NumRows(); r++ {
		k := keyOf(t, r, cols)
		if seen[k] {
			continue
		}
		seen[k] = true
		keep = append(keep, r)
	}
	return t.Gather(keep), nil
}

// SelectColumns implements Store.
func (m *Mem) SelectColumns(t *Table, cols []string) (*Table, error) {
	idx, err := columnIndices(t, cols)
	if err != nil {
		return nil, err
	}
	out := New(cols...)
	for i, c := range idx {
		out.data[i] = append([]Value(nil), t.data[c]...)
	}
	return out, nil
}

// CastColumn implements Store.
func (m *Mem) CastColumn(t *Table, col string, kind Kind) (*Table, error) {
	ci := t.ColumnIndex(col)
	if ci < 0 {
		return nil, fmt.Errorf("frame: unknown column %q", col)
	}
	out := t.Clone()
	for i, v := range out.data[ci] {
		cast, err := castValue(v, kind)
		if err != nil {
			return nil, err
		}
		out.data[ci][i] = cast
	}
	return out, nil
}
