// Package coordinator creates the shared queues and termination counter,
// seeds the root job, spawns the worker pool, joins it, and reduces each
// worker's result into the walk's total block count.
package coordinator

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oss-tools/parascan/internal/dedup"
	"github.com/oss-tools/parascan/internal/job"
	"github.com/oss-tools/parascan/internal/queue"
	"github.com/oss-tools/parascan/internal/termination"
	"github.com/oss-tools/parascan/internal/worker"
)

// Options configures a single Walk call. Threads <= 0 resolves to
// runtime.NumCPU(). MaxDepth is an inclusive cap; nil means unlimited.
type Options struct {
	Threads  int
	MaxDepth *int
	Logger   *zap.Logger
}

// Stats aggregates every worker's bookkeeping for callers and tests that
// need more than the headline total (property P2's conservation check,
// for instance).
type Stats struct {
	TotalBlocks    uint64
	DirsProcessed  uint64
	FilesProcessed uint64
	ErrorsCount    uint64
	WorkersJoined  int
	WorkersFailed  int
}

// Walk traverses root with a pool of workers coordinated through work
// stealing, returning the aggregate on-disk block usage of every regular
// file reachable from root (directories' own inode blocks are not
// counted, per spec).
//
// A panic inside any one worker goroutine is recovered, logged, and that
// worker's contribution is dropped from the sum -- surviving workers'
// results still count, so the returned total is a documented lower bound
// in the presence of a panic.
func Walk(root string, opts Options) (Stats, error) {
	stats, _, err := walk(root, opts, nil)
	return stats, err
}

// WalkWithDedup behaves exactly like Walk, except that a regular file with
// more than one hard link is not folded into any single worker's total as
// it's found. Each worker defers such files as dedup.Candidate values; once
// every worker has finished, a single serial pass across all of them claims
// each distinct inode exactly once via a shared dedup.Reconciler, so a file
// linked from three different directories anywhere in the tree contributes
// its blocks to TotalBlocks exactly once rather than three times.
func WalkWithDedup(root string, opts Options) (Stats, error) {
	perWorkerCache := func() *dedup.Cache {
		return dedup.NewCache(1024, 0.01)
	}
	stats, candidates, err := walk(root, opts, perWorkerCache)
	if err != nil {
		return stats, err
	}

	reconciler := dedup.NewReconciler()
	for _, c := range candidates {
		if reconciler.ClaimFirst(c.Key) {
			stats.TotalBlocks += c.Blocks
		}
	}
	return stats, nil
}

// walk holds the spawn/join/reduce logic shared by Walk and WalkWithDedup.
// newCache is nil for a plain Walk; when non-nil, it is called once per
// worker to give each its own private dedup.Cache, and every worker's
// deferred hard-link candidates are returned for the caller to reconcile.
func walk(root string, opts Options, newCache func() *dedup.Cache) (Stats, []dedup.Candidate, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))

	info, err := os.Lstat(root)
	if err != nil {
		return Stats{}, nil, fmt.Errorf("stat root %q: %w", root, err)
	}

	numWorkers := opts.Threads
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	deques := make([]*queue.Deque, numWorkers)
	stealers := make([]queue.Stealer, numWorkers)
	for i := range deques {
		deques[i] = queue.NewDeque(64)
		stealers[i] = queue.NewStealer(deques[i])
	}

	injector := queue.NewInjector()
	counter := termination.NewCounter(1)

	rootJob := job.New(root, "", 0, info.IsDir())
	injector.Push(rootJob)

	log.Info("walk starting", zap.String("root", root), zap.Int("workers", numWorkers))

	results := make([]worker.Result, numWorkers)
	failed := make([]bool, numWorkers)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func(id int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					failed[id] = true
					log.Error("worker panicked, dropping its contribution",
						zap.Int("worker", id), zap.Any("panic", r))
				}
			}()

			cfg := worker.Config{MaxDepth: opts.MaxDepth}
			if newCache != nil {
				cfg.Dedup = &worker.DedupConfig{Cache: newCache()}
			}

			w := worker.New(id, deques[id], stealers, injector, counter, cfg, log)
			results[id] = w.Run()
		}(i)
	}
	wg.Wait()

	var stats Stats
	var candidates []dedup.Candidate
	for i, res := range results {
		if failed[i] {
			stats.WorkersFailed++
			continue
		}
		stats.WorkersJoined++
		stats.TotalBlocks += res.TotalBlocks
		stats.DirsProcessed += res.DirsProcessed
		stats.FilesProcessed += res.FilesProcessed
		stats.ErrorsCount += res.ErrorsCount
		candidates = append(candidates, res.HardLinkCandidates...)
	}

	log.Info("walk finished",
		zap.Uint64("total_blocks", stats.TotalBlocks),
		zap.Int("workers_joined", stats.WorkersJoined),
		zap.Int("workers_failed", stats.WorkersFailed))

	return stats, candidates, nil
}
