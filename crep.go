package crep

import (
	"fmt"

	"github.com/vincent-laurent/crep/frame"
)

// How selects the join kind of an interval merge.
type How string

const (
	// HowLeft keeps output segments covered by the left table.
	HowLeft How = "left"
	// HowRight keeps output segments covered by the right table.
	HowRight How = "right"
	// HowInner keeps output segments covered by both tables.
	HowInner How = "inner"
	// HowOuter keeps output segments covered by either table.
	HowOuter How = "outer"
)

func (h How) valid() bool {
	switch h {
	case HowLeft, HowRight, HowInner, HowOuter:
		return true
	default:
		return false
	}
}

// Engine performs interval-table reconciliation on top of an injected
// tabular store.
//
// The zero-argument New returns an engine backed by the in-memory store, a
// noop logger and noop metrics. Engines are stateless and safe for
// concurrent use.
type Engine struct {
	store       frame.Store
	logger      *Logger
	metrics     MetricsCollector
	parallelism int
}

// New creates an Engine.
func New(optFns ...Option) *Engine {
	opts := applyOptions(optFns)
	return &Engine{
		store:       opts.store,
		logger:      opts.logger,
		metrics:     opts.metricsCollector,
		parallelism: opts.parallelism,
	}
}

// Store returns the injected tabular store.
func (e *Engine) Store() frame.Store { return e.store }

// isEvent reports whether t is event-indexed: it declares neither of the two
// bound columns and is therefore indexed by single points.
func isEvent(t *frame.Table, keys frame.Keys) bool {
	return !t.HasColumn(keys.Start()) && !t.HasColumn(keys.End())
}

// checkMergeArgs validates the merge schema eagerly, before any computation.
func checkMergeArgs(left, right *frame.Table, keys frame.Keys, how How) error {
	if !how.valid() {
		return &InvalidHowError{How: how}
	}
	if keys.Bounds[0] == "" || keys.Bounds[1] == "" || keys.Bounds[0] == keys.Bounds[1] {
		return fmt.Errorf("%w: exactly two distinct bound columns are required", ErrSchema)
	}
	for _, c := range keys.Index() {
		if !left.HasColumn(c) && !right.HasColumn(c) {
			return &MissingColumnError{Column: c}
		}
	}
	return nil
}

// discreteIn returns the declared discrete columns present in t, in key
// order.
func discreteIn(t *frame.Table, keys frame.Keys) []string {
	var out []string
	for _, c := range keys.Discrete {
		if t.HasColumn(c) {
			out = append(out, c)
		}
	}
	return out
}

// dropMissingIndex removes rows with a missing value in any index column
// present on the table.
func dropMissingIndex(t *frame.Table, cols []string) *frame.Table {
	var keep []int
	for r := 0; r < t.NumRows(); r++ {
		ok := true
		for _, c := range cols {
			if t.Value(r, c) == nil {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, r)
		}
	}
	if len(keep) == t.NumRows() {
		return t
	}
	return t.Gather(keep)
}
