package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/vincent-laurent/crep/frame"
)

// IntervalSpec describes a randomly generated interval table.
type IntervalSpec struct {
	// Tracks is the number of distinct discrete key values.
	Tracks int

	// Segments is the number of intervals per track.
	Segments int

	// GapProb is the probability of a gap before each segment.
	GapProb float64

	// MaxLen is the maximum segment (and gap) length. Defaults to 10.
	MaxLen int

	// Payload names extra float columns filled with random values.
	Payload []string
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// IntervalTable generates a random admissible interval table keyed by keys.
// Each track holds non-overlapping half-open segments in ascending order,
// with gaps injected per spec.GapProb. The discrete columns take the values
// "track-0", "track-1", and so on.
func (r *RNG) IntervalTable(keys frame.Keys, spec IntervalSpec) *frame.Table {
	r.mu.Lock()
	defer r.mu.Unlock()

	maxLen := spec.MaxLen
	if maxLen <= 0 {
		maxLen = 10
	}

	cols := append(keys.Index(), spec.Payload...)
	var records [][]frame.Value
	for tr := 0; tr < spec.Tracks; tr++ {
		cursor := int64(0)
		for s := 0; s < spec.Segments; s++ {
			if r.rand.Float64() < spec.GapProb {
				cursor += int64(1 + r.rand.Intn(maxLen))
			}
			length := int64(1 + r.rand.Intn(maxLen))

			rec := make([]frame.Value, 0, len(cols))
			for range keys.Discrete {
				rec = append(rec, fmt.Sprintf("track-%d", tr))
			}
			rec = append(rec, cursor, cursor+length)
			for range spec.Payload {
				rec = append(rec, r.rand.Float64())
			}
			records = append(records, rec)
			cursor += length
		}
	}
	return frame.FromRecords(cols, records)
}

// Covered reports whether any row of the given track covers point, treating
// intervals as half-open.
func Covered(t *frame.Table, keys frame.Keys, track frame.Value, point float64) bool {
	for i := 0; i < t.NumRows(); i++ {
		if !frame.Equal(t.Value(i, keys.Discrete[0]), track) {
			continue
		}
		lo, _ := frame.Number(t.Value(i, keys.Start()))
		hi, _ := frame.Number(t.Value(i, keys.End()))
		if lo <= point && point < hi {
			return true
		}
	}
	return false
}

// Overlapping reports whether any two rows of the same track overlap. A table
// is admissible exactly when this returns false.
func Overlapping(t *frame.Table, keys frame.Keys) bool {
	for i := 0; i < t.NumRows(); i++ {
		for j := i + 1; j < t.NumRows(); j++ {
			same := true
			for _, col := range keys.Discrete {
				if !frame.Equal(t.Value(i, col), t.Value(j, col)) {
					same = false
					break
				}
			}
			if !same {
				continue
			}
			li, _ := frame.Number(t.Value(i, keys.Start()))
			hi, _ := frame.Number(t.Value(i, keys.End()))
			lj, _ := frame.Number(t.Value(j, keys.Start()))
			hj, _ := frame.Number(t.Value(j, keys.End()))
			if li < hj && lj < hi {
				return true
			}
		}
	}
	return false
}
