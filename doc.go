// Package crep reconciles row-oriented tables keyed by a tuple of discrete
// attributes plus a half-open continuous interval, producing a consistent
// merged partition analogous to a relational join but operating on
// overlapping and adjacent ranges instead of exact key equality.
//
// The engine is built from a small family of primitives:
//
//   - Discontinuity detection and gap filling (package continuity)
//   - Overlap-zone detection and admissible partition building (package zone)
//   - The interval join (Merge) with left/right/inner/outer semantics
//   - The priority overlay merge (UnbalancedMerge) that punches override
//     intervals into an admissible base partition
//   - Constant-run aggregation (AggregateConstant) and fixed-length
//     re-segmentation (RegularSegmentation)
//
// # Quick start
//
//	eng := crep.New()
//	keys := frame.Keys{Discrete: []string{"id"}, Bounds: [2]string{"t1", "t2"}}
//
//	out, err := eng.Merge(ctx, left, right, keys, crep.HowOuter)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tables are immutable values from the caller's perspective: every operation
// returns a new table built from the inputs plus synthesized rows. The
// relational primitives (sort, equi-join, fills, concatenation) come from an
// injected frame.Store; the default is the in-memory implementation.
//
// # Parallelism
//
// All per-track computations are independent across distinct discrete keys.
// WithParallelism(n) shards them across goroutines without changing
// observable output.
package crep
