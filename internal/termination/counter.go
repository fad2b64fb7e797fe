// Package termination implements the distributed termination protocol's
// single shared datum: an atomic counter of outstanding work.
package termination

import "sync/atomic"

// Counter encodes outstanding work across all workers: the number of jobs
// ever enqueued minus the number ever fully consumed. It starts at 1 (the
// root job, pushed before any worker starts) and reaches 0 exactly once,
// when the walk is globally complete.
//
// It is the one piece of truly global mutable state in the engine and is
// deliberately never a mutex: a single atomic integer with acquire/release
// semantics is sufficient, and wrapping it in a lock would only add
// contention on the one value every worker polls every idle cycle.
type Counter struct {
	v int64
}

// NewCounter returns a Counter initialized to the given value (the
// coordinator seeds it to 1 before pushing the root job).
func NewCounter(initial int64) *Counter {
	return &Counter{v: initial}
}

// Add publishes delta into the counter, returning the new value. Used by
// a worker's sync phase to fold its localDelta into the global count.
func (c *Counter) Add(delta int64) int64 {
	return atomic.AddInt64(&c.v, delta)
}

// Load reads the current value. Negative values are possible transiently
// between a producer's decrement and its next sync -- that is tolerated
// by design. Only a read of exactly zero permits termination.
func (c *Counter) Load() int64 {
	return atomic.LoadInt64(&c.v)
}

// IsZero reports whether the counter currently reads exactly zero.
func (c *Counter) IsZero() bool {
	return c.Load() == 0
}
