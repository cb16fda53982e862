package frame

// JoinHow selects the equi-join flavor offered by a Store.
type JoinHow string

const (
	// JoinInner keeps only rows with a match on both sides.
	JoinInner JoinHow = "inner"
	// JoinLeft keeps all left rows, filling unmatched right columns with
	// missing values.
	JoinLeft JoinHow = "left"
)

// AggOp selects the aggregation applied by GroupAggregate.
type AggOp string

const (
	// AggMin keeps the smallest value per group.
	AggMin AggOp = "min"
	// AggMax keeps the largest value per group.
	AggMax AggOp = "max"
	// AggCount counts non-missing values per group.
	AggCount AggOp = "count"
	// AggSum sums numeric values per group.
	AggSum AggOp = "sum"
)

// Store supplies the relational primitives the engine is built on. The engine
// never assumes a particular backend; any implementation with these semantics
// can be injected.
//
// All methods return new tables and leave their inputs untouched.
type Store interface {
	// Sort returns t ordered by the given columns. asc holds one flag per
	// column; a missing flag defaults to ascending. The sort is stable.
	Sort(t *Table, by []string, asc []bool) (*Table, error)

	// EquiJoin joins two tables on equality of the named columns. Right-side
	// columns whose names collide with left-side columns (other than the join
	// columns) are renamed with the suffix.
	EquiJoin(left, right *Table, on []string, how JoinHow, suffix string) (*Table, error)

	// GroupAggregate groups t by the given columns and aggregates col with
	// op. The result has the group columns plus the aggregated column, one
	// row per group, in first-appearance order.
	GroupAggregate(t *Table, by []string, col string, op AggOp) (*Table, error)

	// ForwardFill propagates the nearest prior non-missing value of each
	// listed column along the current row order.
	ForwardFill(t *Table, cols []string) (*Table, error)

	// BackwardFill propagates the nearest next non-missing value of each
	// listed column along the current row order.
	BackwardFill(t *Table, cols []string) (*Table, error)

	// Concat stacks tables. Schemas are union-reindexed: the result carries
	// every column that appears in any input, missing cells read as nil.
	Concat(ts ...*Table) (*Table, error)

	// DropDuplicates removes rows whose values in the subset columns repeat
	// an earlier row. An empty subset means all columns. The first occurrence
	// wins.
	DropDuplicates(t *Table, subset []string) (*Table, error)

	// SelectColumns projects t onto the named columns, in the given order.
	SelectColumns(t *Table, cols []string) (*Table, error)

	// CastColumn converts the named column to the given kind. Missing values
	// are preserved.
	CastColumn(t *Table, col string, kind Kind) (*Table, error)
}
