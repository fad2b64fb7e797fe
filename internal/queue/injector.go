package queue

import (
	"sync"

	"github.com/oss-tools/parascan/internal/job"
)

// Injector is the shared multi-producer multi-consumer FIFO used to seed
// the walk with its root job and to absorb overflow/rebalance jobs from
// workers under pressure. Any worker may Push or steal from it.
//
// The teacher's WorkStealingDeque protects its buffer with a mutex; the
// injector follows the same idiom (a plain mutex-guarded slice) rather
// than a bespoke lock-free MPMC ring, since FIFO batch-stealing needs to
// move a contiguous run of elements into a destination Deque, which is
// simplest to reason about under a single lock.
type Injector struct {
	mu    sync.Mutex
	items []job.Job
}

// NewInjector creates an empty injector.
func NewInjector() *Injector {
	return &Injector{}
}

// Push appends a job to the injector. Safe for concurrent use.
func (inj *Injector) Push(j job.Job) {
	inj.mu.Lock()
	inj.items = append(inj.items, j)
	inj.mu.Unlock()
}

// Len reports the injector's current length.
func (inj *Injector) Len() int {
	inj.mu.Lock()
	n := len(inj.items)
	inj.mu.Unlock()
	return n
}

// IsEmpty reports whether the injector currently holds no jobs.
func (inj *Injector) IsEmpty() bool {
	return inj.Len() == 0
}

// StealBatch pops up to batchSize jobs from the front of the injector,
// returning the first as the steal result and pushing the remainder onto
// dest (the calling worker's own deque). Mirrors
// crossbeam_deque::Injector::steal_batch_with_limit_and_pop: the caller
// ends up with one job in hand and the rest waiting locally, instead of
// paying the injector's lock again for every subsequent job.
func (inj *Injector) StealBatch(dest *Deque, batchSize int) (job.Job, StealResult) {
	if batchSize < 1 {
		batchSize = 1
	}

	inj.mu.Lock()
	if len(inj.items) == 0 {
		inj.mu.Unlock()
		return job.Job{}, StealEmpty
	}

	n := batchSize
	if n > len(inj.items) {
		n = len(inj.items)
	}
	batch := inj.items[:n]
	inj.items = inj.items[n:]
	inj.mu.Unlock()

	first := batch[0]
	for _, j := range batch[1:] {
		dest.Push(j)
	}
	return first, StealSuccess
}
