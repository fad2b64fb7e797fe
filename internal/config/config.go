// Package config defines the run-time configuration surface and loads it
// from flags and an optional config file, the way antimoji and
// media-usage-finder layer spf13/cobra, spf13/pflag, and spf13/viper.
package config

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/oss-tools/parascan/internal/filter"
	"github.com/oss-tools/parascan/internal/format"
)

// ErrUnsupportedOption is returned by Validate for a flag this engine
// accepts syntactically but does not implement: the core never follows
// symlinks, never tracks mount boundaries, counts every hard link to a
// file separately on the default walk, and never reports apparent (as
// opposed to on-disk) size.
// These stay on the CLI surface -- reserved, not silently dropped -- so a
// user who passes one gets told why, not a quietly wrong answer.
var ErrUnsupportedOption = errors.New("config: unsupported option")

// TraversalConfig is the fully-resolved configuration a single run acts
// on, after flags, config file, and defaults have been merged.
type TraversalConfig struct {
	Paths    []string
	Threads  int
	MaxDepth *int

	All       bool
	DirsOnly  bool
	FilesOnly bool

	Format    format.Config
	Filters   filter.Config
	Threshold filter.Threshold

	Total     bool
	Summarize bool

	// Reserved: accepted for CLI compatibility with the original tool's
	// surface, always rejected by Validate, except CountHardLinks, which
	// is accepted when AllowDedupCache is set.
	FollowSymlinks bool
	OneFileSystem  bool
	CountHardLinks bool
	ApparentSize   bool

	AllowDedupCache bool
}

// ResolvedThreads returns cfg.Threads, or runtime.NumCPU() when the user
// left it at the zero value.
func (cfg TraversalConfig) ResolvedThreads() int {
	if cfg.Threads > 0 {
		return cfg.Threads
	}
	return runtime.NumCPU()
}

// Validate rejects mutually exclusive display flags and every reserved
// option not explicitly opted into, returning ErrUnsupportedOption
// wrapped with the offending flag's name.
func Validate(cfg TraversalConfig) error {
	if cfg.DirsOnly && cfg.FilesOnly {
		return fmt.Errorf("config: --dirs-only and --files-only are mutually exclusive")
	}
	if cfg.MaxDepth != nil && *cfg.MaxDepth < 0 {
		return fmt.Errorf("config: --max-depth must be >= 0, got %d", *cfg.MaxDepth)
	}

	if cfg.FollowSymlinks {
		return fmt.Errorf("%w: --follow-symlinks", ErrUnsupportedOption)
	}
	if cfg.OneFileSystem {
		return fmt.Errorf("%w: --one-file-system", ErrUnsupportedOption)
	}
	if cfg.ApparentSize {
		return fmt.Errorf("%w: --apparent-size", ErrUnsupportedOption)
	}
	if cfg.CountHardLinks && !cfg.AllowDedupCache {
		return fmt.Errorf("%w: --count-links (pass AllowDedupCache to opt into the reserved dedup path)", ErrUnsupportedOption)
	}

	return nil
}
