package search

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// QueryFunc runs one independent query. Pool passes each call only the
// pool's context; opening the query's own handle on the index (spec.md §5:
// "each of which holds its own open handle to the index") is left to the
// function, so the pool can dispatch dictionary lookups, posting merges,
// or a mix.
type QueryFunc func(ctx context.Context) error

// Pool dispatches independent queries across a bounded set of goroutines,
// the concrete form of spec.md §5's "parallelism is extracted above, by
// dispatching independent queries to independent worker threads." Built on
// golang.org/x/sync/errgroup, matching the teacher's own preference for
// errgroup over a hand-rolled sync.WaitGroup/channel pool.
type Pool struct {
	group *errgroup.Group
	ctx   context.Context
}

// NewPool creates a Pool bound to ctx, limiting concurrency to maxWorkers
// (0 means unlimited).
func NewPool(ctx context.Context, maxWorkers int) *Pool {
	g, gctx := errgroup.WithContext(ctx)
	if maxWorkers > 0 {
		g.SetLimit(maxWorkers)
	}
	return &Pool{group: g, ctx: gctx}
}

// Go submits fn to run on the pool. The core itself exposes no
// cancellation (spec.md §5); ctx is threaded through purely so a caller
// above the core can cancel or time out the dispatching layer, never the
// in-flight single-threaded operation itself.
func (p *Pool) Go(fn QueryFunc) {
	p.group.Go(func() error {
		return fn(p.ctx)
	})
}

// Wait blocks until every submitted query has completed, returning the
// first error encountered, if any.
func (p *Pool) Wait() error {
	return p.group.Wait()
}
