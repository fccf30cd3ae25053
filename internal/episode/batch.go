package episode

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// ErrNoEpisodes is returned by RunBatch when n is not positive.
var ErrNoEpisodes = errors.New("episode: no episodes requested")

// Runnable plays a single episode.
type Runnable interface {
	Run(ctx context.Context) (Result, error)
}

// RunBatch plays n independent episodes, at most parallel at a time
// (parallel < 1 means one). build is called once per episode, from the
// goroutine running it, and must return a runner that shares no mutable
// state with the others. The first error cancels the remaining episodes;
// results of finished episodes are kept in index order.
func RunBatch(ctx context.Context, n, parallel int, build func(i int) (Runnable, error)) ([]Result, error) {
	if n <= 0 {
		return nil, ErrNoEpisodes
	}
	if parallel < 1 {
		parallel = 1
	}
	results := make([]Result, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := build(i)
			if err != nil {
				return err
			}
			res, err := r.Run(ctx)
			results[i] = res
			return err
		})
	}
	return results, g.Wait()
}
