// Package dedup implements the reserved hard-link dedup cache: per-worker
// probabilistic membership tests backed by a Bloom filter, with a final
// authoritative reconciliation pass across workers. Not wired into the
// default walk (config.CountHardLinks stays rejected unless a caller
// opts in) -- this is the space spec.md §9 reserves for a future
// hard-link-aware accounting mode, built but not defaulted-on.
package dedup

import (
	"encoding/binary"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// InodeKey identifies a file by (device, inode) pair, the only way to
// detect two directory entries that are hard links to the same file.
type InodeKey struct {
	Dev uint64
	Ino uint64
}

func (k InodeKey) bytes() []byte {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], k.Dev)
	binary.LittleEndian.PutUint64(b[8:16], k.Ino)
	return b[:]
}

// Candidate is one worker's locally-deduplicated observation of a
// possibly hard-linked file, collected during the walk and resolved
// against every other worker's candidates only once, in Reconciler's
// final serial pass after the walk completes.
type Candidate struct {
	Key    InodeKey
	Blocks uint64
}

// Cache gives one worker a private Bloom filter to probabilistically
// skip inodes it has already accounted for, sized the way
// TheEntropyCollective-noisefs sizes its per-category exchange filters:
// NewWithEstimates(expectedItems, falsePositiveRate).
type Cache struct {
	filter *bloom.BloomFilter
}

// NewCache constructs a per-worker Cache sized for expectedInodes at the
// given false-positive rate.
func NewCache(expectedInodes uint, falsePositiveRate float64) *Cache {
	return &Cache{filter: bloom.NewWithEstimates(expectedInodes, falsePositiveRate)}
}

// Seen reports whether key has probably been seen by this worker before,
// and records it regardless -- a bloom filter is add-only, so a false
// positive is always resolved later by Reconcile, never mid-walk.
func (c *Cache) Seen(key InodeKey) bool {
	b := key.bytes()
	probablySeen := c.filter.Test(b)
	c.filter.Add(b)
	return probablySeen
}

// Reconciler resolves which of many candidate inodes were genuinely seen
// for the first time, across every worker's collected Candidates. It is
// driven once, serially, after every worker has finished walking --
// "final reconciliation" in the literal sense -- so the mutex exists for
// API symmetry with Cache rather than real contention.
type Reconciler struct {
	mu   sync.Mutex
	seen map[InodeKey]struct{}
}

// NewReconciler constructs an empty Reconciler.
func NewReconciler() *Reconciler {
	return &Reconciler{seen: make(map[InodeKey]struct{})}
}

// ClaimFirst reports whether the caller is the first to claim key across
// every call made against this Reconciler.
func (r *Reconciler) ClaimFirst(key InodeKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.seen[key]; exists {
		return false
	}
	r.seen[key] = struct{}{}
	return true
}
