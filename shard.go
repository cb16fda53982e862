package crep

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// forEachTrack runs fn for every track index in [0, n). With parallelism above
// one the calls are spread across a bounded errgroup. fn must only write state
// owned by its own index; results are assembled in track order afterwards, so
// sharding never changes observable output.
func forEachTrack(ctx context.Context, parallelism, n int, fn func(i int) error) error {
	if parallelism <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(i)
		})
	}
	return g.Wait()
}
