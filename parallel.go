package cakes

import (
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Runtime bounds the concurrency used by every Par* entry point in this
// package: a user-controllable worker count feeding a work-stealing pool
// via golang.org/x/sync/errgroup, gated by a weighted semaphore (§5). The
// Go scheduler is itself work-stealing across the goroutines Runtime
// admits, so Runtime's job is purely to cap how many run at once.
type Runtime struct {
	sem *semaphore.Weighted
}

// NewRuntime builds a Runtime capped at workers goroutines. workers <= 0
// defaults to runtime.GOMAXPROCS(0).
func NewRuntime(workers int) *Runtime {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Runtime{sem: semaphore.NewWeighted(int64(workers))}
}

// defaultRuntime backs Par* entry points that are not given an explicit
// Runtime.
var defaultRuntime = NewRuntime(0)

// forEach runs fn(i) for i in [0,n), bounded by the runtime's worker pool,
// and returns the first error encountered, if any.
//
// Several callers (ParBuild, parTreeSearch) invoke forEach from inside a
// goroutine that is itself running under another forEach on the same
// Runtime: a cluster's children are split out in parallel, and building or
// searching each child recurses into its own parallel split. A blocking
// Acquire here would deadlock in that case once every permit is held by an
// outer call's goroutines, each parked waiting on an inner Acquire that
// only an outer goroutine could satisfy by releasing its own permit first.
// TryAcquire avoids that: when no permit is free, i runs synchronously in
// the calling goroutine instead of waiting on one, so nested parallelism
// degrades to sequential execution at the point the pool is exhausted
// rather than deadlocking.
func (r *Runtime) forEach(n int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		if r.sem.TryAcquire(1) {
			g.Go(func() error {
				defer r.sem.Release(1)
				return fn(i)
			})
			continue
		}
		if err := fn(i); err != nil {
			return err
		}
	}
	return g.Wait()
}
