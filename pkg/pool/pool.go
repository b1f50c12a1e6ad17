// Package pool implements the chunked CPU-bound worker pool used by the
// PVSS kernel's commitment and evaluation loops: embarrassingly parallel
// per-polynomial and per-party work split into ceil(n/10) chunks.
package pool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool runs chunked, bounded-concurrency work over a fixed-size index
// range. It is safe for concurrent use by independent callers; each call to
// Run owns its own errgroup.
type Pool struct {
	workers int
}

// New creates a pool sized to the host's GOMAXPROCS, unless n > 0 is given.
func New(n int) *Pool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: n}
}

// chunkSize splits n items into chunks of ceil(n/10).
func chunkSize(n int) int {
	if n <= 0 {
		return 1
	}
	size := (n + 9) / 10
	if size < 1 {
		size = 1
	}
	return size
}

// Run partitions [0,n) into chunks of chunkSize(n) and calls fn once per
// chunk with the half-open range [start,end), bounding concurrency to the
// pool's worker count. fn must be safe to call concurrently with itself.
func (p *Pool) Run(ctx context.Context, n int, fn func(start, end int) error) error {
	if n <= 0 {
		return nil
	}
	size := chunkSize(n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		start, end := start, end
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			return fn(start, end)
		})
	}
	return g.Wait()
}

// RunIndexed is Run specialised to one call per index, for call sites where
// chunk-local batching doesn't matter (e.g. verifying n independent
// openings).
func (p *Pool) RunIndexed(ctx context.Context, n int, fn func(i int) error) error {
	return p.Run(ctx, n, func(start, end int) error {
		for i := start; i < end; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	})
}
