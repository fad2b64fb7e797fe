package worker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/oss-tools/parascan/internal/job"
	"github.com/oss-tools/parascan/internal/queue"
	"github.com/oss-tools/parascan/internal/termination"
)

type WorkerTestSuite struct {
	suite.Suite
}

func TestWorkerTestSuite(t *testing.T) {
	suite.Run(t, new(WorkerTestSuite))
}

func newSoloWorker(cfg Config) (*Worker, *queue.Deque, *queue.Injector, *termination.Counter) {
	d := queue.NewDeque(8)
	stealers := []queue.Stealer{queue.NewStealer(d)}
	inj := queue.NewInjector()
	counter := termination.NewCounter(0)
	w := New(0, d, stealers, inj, counter, cfg, nil)
	return w, d, inj, counter
}

func (ts *WorkerTestSuite) TestFindWorkPrefersLocalDeque() {
	w, d, inj, _ := newSoloWorker(Config{})
	d.Push(job.New("/local", "", 0, false))
	inj.Push(job.New("/global", "", 0, false))

	j, ok := w.findWork()
	ts.True(ok)
	ts.Equal("/local", j.Path)
}

func (ts *WorkerTestSuite) TestFindWorkFallsBackToInjector() {
	w, _, inj, _ := newSoloWorker(Config{})
	inj.Push(job.New("/global", "", 0, false))

	j, ok := w.findWork()
	ts.True(ok)
	ts.Equal("/global", j.Path)
}

func (ts *WorkerTestSuite) TestFindWorkStealsFromPeer() {
	ownD := queue.NewDeque(8)
	peerD := queue.NewDeque(8)
	peerD.Push(job.New("/peer", "", 0, false))

	stealers := []queue.Stealer{queue.NewStealer(ownD), queue.NewStealer(peerD)}
	inj := queue.NewInjector()
	counter := termination.NewCounter(0)
	w := New(0, ownD, stealers, inj, counter, Config{}, nil)

	j, ok := w.findWork()
	ts.True(ok)
	ts.Equal("/peer", j.Path)
}

func (ts *WorkerTestSuite) TestFindWorkReturnsFalseWhenEverythingEmpty() {
	w, _, _, _ := newSoloWorker(Config{})
	_, ok := w.findWork()
	ts.False(ok)
}

func (ts *WorkerTestSuite) TestProcessJobDecrementsBeforeDepthCutoff() {
	max := 0
	w, _, _, _ := newSoloWorker(Config{MaxDepth: &max})
	w.localDelta = 5

	deep := job.New("/deep", "", 5, true)
	w.processJob(deep)

	ts.Equal(int64(4), w.localDelta, "localDelta must be decremented even for a job beyond max depth")
	ts.Equal(uint64(0), w.dirsProcessed, "a depth-cutoff job must never be listed")
}

func (ts *WorkerTestSuite) TestProcessJobWithinDepthIsListed() {
	dir := ts.T().TempDir()
	ts.Require().NoError(os.WriteFile(filepath.Join(dir, "f"), []byte("x"), 0o644))

	max := 5
	w, _, _, _ := newSoloWorker(Config{MaxDepth: &max})
	w.processJob(job.New(dir, "", 0, true))

	ts.Equal(uint64(1), w.dirsProcessed)
	ts.Equal(uint64(1), w.filesProcessed)
}

func (ts *WorkerTestSuite) TestProcessDirPushesChildrenAndCountsFilesImmediately() {
	dir := ts.T().TempDir()
	ts.Require().NoError(os.Mkdir(filepath.Join(dir, "child"), 0o755))
	ts.Require().NoError(os.WriteFile(filepath.Join(dir, "file.txt"), []byte("hello"), 0o644))

	w, d, _, _ := newSoloWorker(Config{})
	w.processDir(job.New(dir, "", 0, true))

	ts.Equal(uint64(1), w.dirsProcessed)
	ts.Equal(uint64(1), w.filesProcessed)
	ts.Equal(1, d.Len(), "the directory child must be pushed, the file must not be")
	ts.Equal(int64(1), w.localDelta, "pushing the child directory increments localDelta")
}

func (ts *WorkerTestSuite) TestProcessDirOnMissingPathCountsError() {
	w, _, _, _ := newSoloWorker(Config{})
	w.processJob(job.New("/does/not/exist/at/all", "", 0, true))

	ts.Equal(uint64(0), w.dirsProcessed)
	ts.Equal(uint64(1), w.errorsCount)
}

func (ts *WorkerTestSuite) TestProcessFileAddsBlocks() {
	dir := ts.T().TempDir()
	path := filepath.Join(dir, "f")
	ts.Require().NoError(os.WriteFile(path, []byte("hello world"), 0o644))

	w, _, _, _ := newSoloWorker(Config{})
	w.processFile(job.New(path, dir, 1, false))

	ts.Greater(w.totalBlocks, uint64(0))
}

func (ts *WorkerTestSuite) TestProcessFileOnMissingPathCountsError() {
	w, _, _, _ := newSoloWorker(Config{})
	w.processFile(job.New("/does/not/exist", "", 1, false))

	ts.Equal(uint64(1), w.errorsCount)
	ts.Equal(uint64(0), w.totalBlocks)
}

func (ts *WorkerTestSuite) TestRunTerminatesOnEmptyQueues() {
	w, _, _, counter := newSoloWorker(Config{})
	counter.Add(0) // already zero
	result := w.Run()
	ts.Equal(uint64(0), result.TotalBlocks)
}

func (ts *WorkerTestSuite) TestShouldTerminateRequiresEverythingEmpty() {
	w, d, inj, counter := newSoloWorker(Config{})

	ts.True(w.shouldTerminate(), "nothing outstanding anywhere: must be willing to terminate")

	counter.Add(1)
	ts.False(w.shouldTerminate(), "nonzero counter blocks termination")
	counter.Add(-1)

	d.Push(job.New("/x", "", 0, false))
	ts.False(w.shouldTerminate(), "non-empty own deque blocks termination")
	d.Pop()

	inj.Push(job.New("/x", "", 0, false))
	ts.False(w.shouldTerminate(), "non-empty injector blocks termination")
}
