package crep

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema is the category for schema validation failures: a requested
	// column absent from both inputs, or an invalid join kind. Schema errors
	// are raised eagerly, before any computation.
	ErrSchema = errors.New("schema error")

	// ErrUnsupported is the category for configurations the engine refuses
	// to process, such as merging two event-indexed tables.
	ErrUnsupported = errors.New("unsupported configuration")

	// ErrNotAdmissible is returned when an operation requires an admissible
	// input table and the precondition does not hold.
	ErrNotAdmissible = errors.New("table is not admissible")
)

// MissingColumnError indicates a declared key column absent from both input
// tables.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q is not present in any input", e.Column)
}

func (e *MissingColumnError) Unwrap() error { return ErrSchema }

// InvalidHowError indicates an unknown join kind.
type InvalidHowError struct {
	How How
}

func (e *InvalidHowError) Error() string {
	return fmt.Sprintf("invalid join kind %q: must be left, right, inner or outer", e.How)
}

func (e *InvalidHowError) Unwrap() error { return ErrSchema }

// EventIndexedError indicates an event-indexed input (a table lacking both
// declared bound columns) where an interval-indexed table is required.
type EventIndexedError struct {
	Side string
}

func (e *EventIndexedError) Error() string {
	return fmt.Sprintf("%s table is event-indexed; use MergeEvent for point events", e.Side)
}

func (e *EventIndexedError) Unwrap() error { return ErrUnsupported }

// ColumnCollisionError indicates an event payload column that already exists
// on the interval side of MergeEvent.
type ColumnCollisionError struct {
	Column string
}

func (e *ColumnCollisionError) Error() string {
	return fmt.Sprintf("event column %q collides with an interval column", e.Column)
}

func (e *ColumnCollisionError) Unwrap() error { return ErrSchema }
