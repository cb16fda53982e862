// Package frame provides the columnar segment-table model the crep engine
// operates on, together with the Store abstraction supplying relational
// primitives (sort, equi-join, fills, concatenation).
//
// A Table is a value from the caller's perspective: every operation returns a
// new Table and never mutates its inputs.
package frame

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a single cell value. Supported dynamic types are nil (missing),
// bool, int64, float64 and string.
type Value = any

// Kind identifies the dynamic type of a Value.
type Kind uint8

const (
	// KindNull marks a missing value.
	KindNull Kind = iota
	// KindBool is a boolean value.
	KindBool
	// KindInt is a signed 64-bit integer value.
	KindInt
	// KindFloat is a 64-bit floating point value.
	KindFloat
	// KindString is a string value.
	KindString
)

// KindOf returns the Kind of v.
func KindOf(v Value) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case int64:
		return KindInt
	case float64:
		return KindFloat
	case string:
		return KindString
	default:
		return KindNull
	}
}

// Number converts v to float64 when it holds a numeric value.
func Number(v Value) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

// Compare orders two values. Missing values sort first, then bools, then
// numbers (int and float compare numerically), then strings.
func Compare(a, b Value) int {
	ka, kb := rankOf(a), rankOf(b)
	if ka != kb {
		if ka < kb {
			return -1
		}
		return 1
	}
	switch ka {
	case rankNull:
		return 0
	case rankBool:
		av, bv := a.(bool), b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case rankNumber:
		av, _ := Number(a)
		bv, _ := Number(b)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	default:
		av, bv := a.(string), b.(string)
		return strings.Compare(av, bv)
	}
}

// Equal reports whether two values are equal under Compare semantics.
// Two missing values are equal.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}

const (
	rankNull = iota
	rankBool
	rankNumber
	rankString
)

func rankOf(v Value) int {
	switch v.(type) {
	case nil:
		return rankNull
	case bool:
		return rankBool
	case int64, float64:
		return rankNumber
	case string:
		return rankString
	default:
		return rankNull
	}
}

// Keys declares which columns of a table form the discrete key and which two
// hold the half-open interval bounds.
type Keys struct {
	// Discrete lists the discrete key columns, in significance order.
	Discrete []string

	// Bounds names the start and end columns of the interval.
	Bounds [2]string
}

// Start returns the name of the interval start column.
func (k Keys) Start() string { return k.Bounds[0] }

// End returns the name of the interval end column.
func (k Keys) End() string { return k.Bounds[1] }

// Index returns the discrete key columns followed by the bound columns.
func (k Keys) Index() []string {
	out := make([]string, 0, len(k.Discrete)+2)
	out = append(out, k.Discrete...)
	out = append(out, k.Bounds[0], k.Bounds[1])
	return out
}

// Table is an ordered collection of rows with stable column identity.
// Storage is column-major.
type Table struct {
	cols []string
	data [][]Value
	idx  map[string]int
}

// New creates an empty table with the given columns.
func New(cols ...string) *Table {
	t := &Table{
		cols: append([]string(nil), cols...),
		data: make([][]Value, len(cols)),
		idx:  make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		t.idx[c] = i
	}
	return t
}

// FromRecords builds a table from row-major records. Short records are padded
// with missing values.
func FromRecords(cols []string, records [][]Value) *Table {
	t := New(cols...)
	for _, rec := range records {
		t.appendRecord(rec)
	}
	return t
}

func (t *Table) appendRecord(rec []Value) {
	for i := range t.cols {
		var v Value
		if i < len(rec) {
			v = rec[i]
		}
		t.data[i] = append(t.data[i], v)
	}
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	if len(t.data) == 0 {
		return 0
	}
	return len(t.data[0])
}

// Columns returns the column names in declaration order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.cols...)
}

// HasColumn reports whether the table declares the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.idx[name]
	return ok
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	i, ok := t.idx[name]
	if !ok {
		return -1
	}
	return i
}

// Column returns the values of the named column. The returned slice is shared
// with the table and must not be modified.
func (t *Table) Column(name string) []Value {
	i, ok := t.idx[name]
	if !ok {
		return nil
	}
	return t.data[i]
}

// Value returns the cell at (row, col). Missing columns read as nil.
func (t *Table) Value(row int, col string) Value {
	i, ok := t.idx[col]
	if !ok {
		return nil
	}
	return t.data[i][row]
}

// Record returns row i as a slice aligned with Columns.
func (t *Table) Record(i int) []Value {
	rec := make([]Value, len(t.cols))
	for c := range t.cols {
		rec[c] = t.data[c][i]
	}
	return rec
}

// Records returns all rows in row-major order.
func (t *Table) Records() [][]Value {
	out := make([][]Value, t.NumRows())
	for i := range out {
		out[i] = t.Record(i)
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := New(t.cols...)
	for i := range t.data {
		out.data[i] = append([]Value(nil), t.data[i]...)
	}
	return out
}

// WithColumn returns a copy of the table with the named column set to vals.
// A new column is appended after the existing ones; vals must have one entry
// per row unless the table is empty.
func (t *Table) WithColumn(name string, vals []Value) *Table {
	out := t.Clone()
	if i, ok := out.idx[name]; ok {
		out.data[i] = append([]Value(nil), vals...)
		return out
	}
	out.cols = append(out.cols, name)
	out.idx[name] = len(out.cols) - 1
	out.data = append(out.data, append([]Value(nil), vals...))
	return out
}

// WithoutColumns returns a copy of the table with the named columns removed.
// Unknown names are ignored.
func (t *Table) WithoutColumns(names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	keep := make([]string, 0, len(t.cols))
	for _, c := range t.cols {
		if !drop[c] {
			keep = append(keep, c)
		}
	}
	out := New(keep...)
	for _, c := range keep {
		out.data[out.idx[c]] = append([]Value(nil), t.data[t.idx[c]]...)
	}
	return out
}

// Rename returns a copy of the table with columns renamed per mapping.
func (t *Table) Rename(mapping map[string]string) *Table {
	out := t.Clone()
	out.idx = make(map[string]int, len(out.cols))
	for i, c := range out.cols {
		if n, ok := mapping[c]; ok {
			out.cols[i] = n
		}
		out.idx[out.cols[i]] = i
	}
	return out
}

// Gather returns a new table containing the given rows, in order.
func (t *Table) Gather(rows []int) *Table {
	out := New(t.cols...)
	for c := range t.data {
		col := make([]Value, len(rows))
		for i, r := range rows {
			col[i] = t.data[c][r]
		}
		out.data[c] = col
	}
	return out
}

// Append returns a copy of the table with rec appended. The record is aligned
// with Columns; short records are padded with missing values.
func (t *Table) Append(rec ...Value) *Table {
	out := t.Clone()
	out.appendRecord(rec)
	return out
}

// keyOf encodes the values of the given columns at a row into a hashable key.
// Numeric values are canonicalized so int64(5) and float64(5) collide.
func keyOf(t *Table, row int, cols []int) string {
	var b strings.Builder
	for _, c := range cols {
		v := t.data[c][row]
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
		default:
			b.WriteString(fmt.Sprintf("?%v;", x))
		}
	}
	return b.String()
}

// columnIndices resolves column names to positions, failing on unknown names.
func columnIndices(t *Table, cols []string) ([]int, error) {
	out := make([]int, len(cols))
	for i, c := range cols {
		j, ok := t.idx[c]
		if !ok {
			return nil, fmt.Errorf("frame: unknown column %q", c)
		}
		out[i] = j
	}
	return out, nil
}

// castValue converts v to the requested kind. Conversions follow the numeric
// domain semantics of the engine: float to int truncates toward zero.
func castValue(v Value, kind Kind) (Value, error) {
	if v == nil {
		return nil, nil
	}
	switch kind {
	case KindInt:
		switch x := v.(type) {
		case int64:
			return x, nil
		case float64:
			return int64(math.Trunc(x)), nil
		case string:
			n, err := strconv.ParseInt(x, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("frame: cannot cast %q to int: %w", x, err)
			}
			return n, nil
		}
	case KindFloat:
		switch x := v.(type) {
		case int64:
			return float64(x), nil
		case float64:
			return x, nil
		case string:
			f, err := strconv.ParseFloat(x, 64)
			if err != nil {
				return nil, fmt.Errorf("frame: cannot cast %q to float: %w", x, err)
			}
			return f, nil
		}
	case KindString:
		switch x := v.(type) {
		case string:
			return x, nil
		case int64:
			return strconv.FormatInt(x, 10), nil
		case float64:
			return strconv.FormatFloat(x, 'g', -1, 64), nil
		case bool:
			return strconv.FormatBool(x), nil
		}
	case KindBool:
		if x, ok := v.(bool); ok {
			return x, nil
		}
	}
	return nil, fmt.Errorf("frame: cannot cast %T to kind %d", v, kind)
}
