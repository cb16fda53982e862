package crep_test

import (
	"context"
	"fmt"
	"log"

	"github.com/vincent-laurent/crep"
	"github.com/vincent-laurent/crep/frame"
)

// Example_merge demonstrates joining two interval tables on a shared key.
func Example_merge() {
	ctx := context.Background()
	eng := crep.New()

	keys := frame.Keys{Discrete: []string{"id"}, Bounds: [2]string{"t1", "t2"}}

	left := frame.FromRecords(
		[]string{"id", "t1", "t2", "temperature"},
		[][]frame.Value{
			{"sensor-1", int64(0), int64(10), 21.5},
			{"sensor-1", int64(10), int64(20), 22.0},
		},
	)
	right := frame.FromRecords(
		[]string{"id", "t1", "t2", "humidity"},
		[][]frame.Value{
			{"sensor-1", int64(5), int64(15), 0.61},
		},
	)

	out, err := eng.Merge(ctx, left, right, keys, crep.HowOuter)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(out.Columns())
	fmt.Println(out.NumRows(), "segments")
	// Output:
	// [id t1 t2 temperature humidity]
	// 4 segments
}

// Example_aggregateConstant demonstrates collapsing adjacent rows that carry
// identical values.
func Example_aggregateConstant() {
	ctx := context.Background()
	eng := crep.New()

	keys := frame.Keys{Discrete: []string{"id"}, Bounds: [2]string{"t1", "t2"}}

	tb := frame.FromRecords(
		[]string{"id", "t1", "t2", "state"},
		[][]frame.Value{
			{"pump-a", int64(0), int64(5), "on"},
			{"pump-a", int64(5), int64(12), "on"},
			{"pump-a", int64(12), int64(20), "off"},
		},
	)

	out, err := eng.AggregateConstant(ctx, tb, keys)
	if err != nil {
		log.Fatal(err)
	}

	for _, rec := range out.Records() {
		fmt.Println(rec)
	}
	// Output:
	// [pump-a 0 12 on]
	// [pump-a 12 20 off]
}
