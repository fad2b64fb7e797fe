// Package job defines the single unit of work the traversal engine moves
// between queues: one filesystem entry waiting to be examined.
package job

// Job is an immutable work item: a path, its depth relative to the walk
// root, and a tag saying whether the producer already knows it is a
// directory. The tag is set by whichever worker discovered the entry,
// because re-stating the type is cheap but the readdir call that would be
// needed to rediscover it is not.
//
// Jobs are value types: created once by the discovering worker and
// consumed exactly once by whichever worker pops or steals them.
type Job struct {
	// Path is the entry's path, root-relative or absolute depending on
	// how the walk was started.
	Path string

	// Parent is the path of the containing directory, kept as an owned
	// copy for possible future per-directory grouping. Never a
	// back-pointer into a graph -- the tree this engine walks has none.
	Parent string

	// Depth is the entry's distance from the walk root; the root itself
	// is depth 0.
	Depth int

	// IsDir is true when the producer already knows this entry is a
	// directory that needs listing.
	IsDir bool
}

// New constructs a Job. depth must be non-negative.
func New(path, parent string, depth int, isDir bool) Job {
	return Job{Path: path, Parent: parent, Depth: depth, IsDir: isDir}
}
