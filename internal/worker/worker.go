// Package worker implements WalkWorker: the per-goroutine loop that
// finds work via the three-tier strategy, processes filesystem entries,
// and backs off in stages until the distributed termination protocol
// says the walk is globally complete.
package worker

import (
	"os"

	"go.uber.org/zap"

	"github.com/oss-tools/parascan/internal/dedup"
	"github.com/oss-tools/parascan/internal/fsmeta"
	"github.com/oss-tools/parascan/internal/job"
	"github.com/oss-tools/parascan/internal/queue"
	"github.com/oss-tools/parascan/internal/termination"
)

// Result is a worker's contribution to the coordinator's reduction: the
// accumulated block total plus the stats tests assert invariants over.
// Exclusive to its owning goroutine until folded here at loop exit.
type Result struct {
	TotalBlocks    uint64
	DirsProcessed  uint64
	FilesProcessed uint64
	ErrorsCount    uint64

	// HardLinkCandidates holds every regular file this worker saw whose
	// link count was greater than one, with its block count already
	// pulled from blocks but not yet folded into TotalBlocks -- resolved
	// once, across every worker, by coordinator.WalkWithDedup's final
	// reconciliation pass. Empty on every default walk.
	HardLinkCandidates []dedup.Candidate
}

// Config carries the read-only, per-run settings every worker needs.
// MaxDepth is an inclusive cap: a job deeper than MaxDepth is counted as
// consumed but never listed. Dedup is nil on every default walk; it is
// only populated by coordinator.WalkWithDedup.
type Config struct {
	MaxDepth *int
	Dedup    *DedupConfig
}

// DedupConfig wires a worker into the reserved hard-link dedup cache: a
// private Bloom filter lets a worker cheaply avoid recording the same
// inode twice from its own traversal. Cross-worker resolution happens
// later, in the coordinator's final reconciliation pass, not here.
type DedupConfig struct {
	Cache *dedup.Cache
}

// Worker is one goroutine's private state plus read-only shared
// references to the queues and counter every worker contends over.
type Worker struct {
	ID int

	own      *queue.Deque
	stealers []queue.Stealer
	injector *queue.Injector
	counter  *termination.Counter
	cfg      Config
	log      *zap.Logger

	localDelta int64

	dirsProcessed  uint64
	filesProcessed uint64
	errorsCount    uint64
	totalBlocks    uint64

	hardLinkCandidates []dedup.Candidate
}

// New constructs a Worker. stealers is the full shared slice, including
// this worker's own handle at index id -- Run skips it when scanning
// peers.
func New(id int, own *queue.Deque, stealers []queue.Stealer, injector *queue.Injector, counter *termination.Counter, cfg Config, log *zap.Logger) *Worker {
	return &Worker{
		ID:       id,
		own:      own,
		stealers: stealers,
		injector: injector,
		counter:  counter,
		cfg:      cfg,
		log:      log,
	}
}

// findWork implements the three-tier strategy: local pop, then a single
// pass over peer stealers in index order, then a batched steal from the
// shared injector. Reports false when no work was found anywhere.
func (w *Worker) findWork() (job.Job, bool) {
	if j, ok := w.own.Pop(); ok {
		return j, true
	}

	if j, ok := w.stealFromPeers(); ok {
		return j, true
	}

	return w.stealFromInjector()
}

// stealFromPeers walks the stealer array in index order, skipping the
// worker's own index. A Retry moves to the next victim rather than
// retrying the same one -- simpler, and avoids livelock against a
// concurrently-popping owner.
func (w *Worker) stealFromPeers() (job.Job, bool) {
	for i, s := range w.stealers {
		if i == w.ID {
			continue
		}
		switch j, res := s.Steal(); res {
		case queue.StealSuccess:
			return j, true
		case queue.StealEmpty, queue.StealRetry:
			continue
		}
	}
	return job.Job{}, false
}

// stealFromInjector steals a batch from the shared injector, sized to
// clamp(injectorLen/numWorkers, 1, 32): large enough to make progress,
// small enough that one worker can't monopolize it. A Retry from the
// injector is retried immediately in a tight loop; an Empty result ends
// the search.
func (w *Worker) stealFromInjector() (job.Job, bool) {
	numWorkers := len(w.stealers)
	if numWorkers < 1 {
		numWorkers = 1
	}

	batch := w.injector.Len() / numWorkers
	if batch < 1 {
		batch = 1
	}
	if batch > 32 {
		batch = 32
	}

	for {
		switch j, res := w.injector.StealBatch(w.own, batch); res {
		case queue.StealSuccess:
			return j, true
		case queue.StealEmpty:
			return job.Job{}, false
		case queue.StealRetry:
			continue
		}
	}
}

// shouldTerminate reports whether the global counter, this worker's own
// deque, the injector, and every peer's deque are all simultaneously
// observed empty -- the condition under which a worker may exit without
// risking that work is still hidden somewhere in flight.
func (w *Worker) shouldTerminate() bool {
	if w.counter.Load() != 0 {
		return false
	}
	if !w.own.IsEmpty() {
		return false
	}
	if !w.injector.IsEmpty() {
		return false
	}
	for _, s := range w.stealers {
		if !s.IsEmpty() {
			return false
		}
	}
	return true
}

// processJob consumes one job: decrement local accounting first (the
// job is being taken out of the conceptual global pool regardless of
// what happens next), then enforce the depth cutoff, then dispatch to
// file or directory handling.
func (w *Worker) processJob(j job.Job) {
	w.localDelta--

	if w.cfg.MaxDepth != nil && j.Depth > *w.cfg.MaxDepth {
		return
	}

	if !j.IsDir {
		w.filesProcessed++
		w.processFile(j)
		return
	}

	w.processDir(j)
}

func (w *Worker) processDir(j job.Job) {
	entries, err := os.ReadDir(j.Path)
	if err != nil {
		w.errorsCount++
		if w.log != nil {
			w.log.Warn("failed to read directory",
				zap.Int("worker", w.ID), zap.String("path", j.Path), zap.Error(err))
		}
		return
	}

	for _, entry := range entries {
		// entry.Type() comes straight from the readdir result and never
		// follows a symlink, matching the spec's "determine file type
		// without following symlinks."
		child := job.New(j.Path+string(os.PathSeparator)+entry.Name(), j.Path, j.Depth+1, entry.IsDir())

		if entry.IsDir() {
			w.own.Push(child)
			w.localDelta++
			continue
		}

		w.filesProcessed++

		info, err := entry.Info()
		if err != nil {
			// Entry vanished or its type could not be resolved between
			// the readdir call and now: count the error, skip it. The
			// job is still considered consumed (filesProcessed already
			// incremented above).
			w.errorsCount++
			if w.log != nil {
				w.log.Warn("failed to classify directory entry",
					zap.Int("worker", w.ID), zap.String("path", j.Path), zap.Error(err))
			}
			continue
		}
		w.processFileInfo(child, info)
	}

	w.dirsProcessed++
}

// processFile lstats the entry (never following a symlink) and folds
// its block count in unless it is a special file.
func (w *Worker) processFile(j job.Job) {
	info, err := os.Lstat(j.Path)
	if err != nil {
		w.errorsCount++
		if w.log != nil {
			w.log.Warn("failed to stat file",
				zap.Int("worker", w.ID), zap.String("path", j.Path), zap.Error(err))
		}
		return
	}
	w.processFileInfo(j, info)
}

func (w *Worker) processFileInfo(j job.Job, info os.FileInfo) {
	if fsmeta.IsSpecial(info.Mode()) {
		return
	}

	blocks, ok := fsmeta.Blocks(info)
	if !ok {
		return
	}

	if w.cfg.Dedup != nil {
		if nlink, ok := fsmeta.Nlink(info); ok && nlink > 1 {
			if dev, ino, ok := fsmeta.Ino(info); ok {
				key := dedup.InodeKey{Dev: dev, Ino: ino}
				// A hard-linked file's blocks are not added to this
				// worker's own total -- it is deferred as a candidate
				// and resolved once, across every worker, by the
				// coordinator's final reconciliation pass. The local
				// Bloom check only avoids appending the same candidate
				// twice from this worker's own traversal; it never gates
				// correctness, since the reconciliation step is itself
				// idempotent per key.
				if !w.cfg.Dedup.Cache.Seen(key) {
					w.hardLinkCandidates = append(w.hardLinkCandidates, dedup.Candidate{Key: key, Blocks: blocks})
				}
				return
			}
		}
	}

	w.totalBlocks += blocks
}

// Run executes the find-work/process/backoff loop until the
// distributed termination protocol decides the walk is complete, then
// returns this worker's Result.
func (w *Worker) Run() Result {
	idleCycles := 0

	for {
		if j, ok := w.findWork(); ok {
			idleCycles = 0
			w.processJob(j)
			continue
		}

		idleCycles++
		switch {
		case idleCycles <= 10:
			// Spin phase: expect imminent work, no syscalls.
		case idleCycles == 11:
			if w.localDelta != 0 {
				w.counter.Add(w.localDelta)
				w.localDelta = 0
			}
		case idleCycles <= 50:
			if idleCycles%10 == 0 {
				yieldToScheduler()
			}
			if w.shouldTerminate() {
				return w.result()
			}
		default:
			if w.shouldTerminate() {
				return w.result()
			}
			sleepBriefly()
			idleCycles = 12
		}
	}
}

func (w *Worker) result() Result {
	return Result{
		TotalBlocks:        w.totalBlocks,
		DirsProcessed:      w.dirsProcessed,
		FilesProcessed:     w.filesProcessed,
		ErrorsCount:        w.errorsCount,
		HardLinkCandidates: w.hardLinkCandidates,
	}
}
