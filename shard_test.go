package crep

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachTrack(t *testing.T) {
	for _, parallelism := range []int{1, 3} {
		results := make([]int, 10)
		err := forEachTrack(context.Background(), parallelism, len(results), func(i int) error {
			results[i] = i * 2
			return nil
		})
		require.NoError(t, err)
		for i, v := range results {
			assert.Equal(t, i*2, v)
		}
	}
}

func TestForEachTrackPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	for _, parallelism := range []int{1, 4} {
		err := forEachTrack(context.Background(), parallelism, 8, func(i int) error {
			if i == 5 {
				return boom
			}
			return nil
		})
		assert.ErrorIs(t, err, boom)
	}
}

func TestForEachTrackCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int64
	err := forEachTrack(ctx, 2, 4, func(i int) error {
		calls.Add(1)
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}

func TestMergeParallelismMatchesSequential(t *testing.T) {
	sequential := New()
	sharded := New(WithParallelism(4))
	ctx := context.Background()

	for _, how := range []How{HowLeft, HowRight, HowInner, HowOuter} {
		want, err := sequential.Merge(ctx, refLeft(), refRight(), refKeys, how)
		require.NoError(t, err)
		got, err := sharded.Merge(ctx, refLeft(), refRight(), refKeys, how)
		require.NoError(t, err)
		assert.Equal(t, want.Records(), got.Records(), "how=%s", how)
	}
}
