// Package filter implements the display-layer predicates the CLI applies
// on top of a completed walk: include/exclude glob patterns and a
// minimum-size threshold. Neither one touches the core -- the core keeps
// walking a directory whose own entry was excluded, matching spec.md's
// stance that filtering is a presentation concern, not a traversal one.
package filter

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gobwas/glob"
)

// Config is the raw, user-supplied pattern configuration, compiled once
// into a PatternSet by Compile.
type Config struct {
	Include []string
	Exclude []string
}

// PatternSet holds compiled include/exclude globs. github.com/gobwas/glob
// is an out-of-pack choice for path-pattern matching -- no retrieved repo
// uses it -- picked as the standard Go library for compiled glob
// matching.
type PatternSet struct {
	include []glob.Glob
	exclude []glob.Glob
}

// Compile compiles every pattern in cfg once, so Match is allocation-free
// on the hot path of formatting a large result set.
func Compile(cfg Config) (*PatternSet, error) {
	ps := &PatternSet{}
	for _, pat := range cfg.Include {
		g, err := glob.Compile(pat, '/')
		if err != nil {
			return nil, fmt.Errorf("filter: bad include pattern %q: %w", pat, err)
		}
		ps.include = append(ps.include, g)
	}
	for _, pat := range cfg.Exclude {
		g, err := glob.Compile(pat, '/')
		if err != nil {
			return nil, fmt.Errorf("filter: bad exclude pattern %q: %w", pat, err)
		}
		ps.exclude = append(ps.exclude, g)
	}
	return ps, nil
}

// Match reports whether relPath should be shown: it must match at least
// one include pattern (when any are configured) and no exclude pattern.
func (ps *PatternSet) Match(relPath string) bool {
	if ps == nil {
		return true
	}

	for _, g := range ps.exclude {
		if g.Match(relPath) {
			return false
		}
	}

	if len(ps.include) == 0 {
		return true
	}
	for _, g := range ps.include {
		if g.Match(relPath) {
			return true
		}
	}
	return false
}

// Threshold is a minimum-size cutoff parsed from a human string like
// "10MB", the way ivoronin-dupedog and michaelscutari-dug parse
// user-supplied sizes via humanize.ParseBytes.
type Threshold struct {
	minBytes uint64
	enabled  bool
}

// ParseThreshold parses spec (e.g. "512K", "10MB") into a Threshold. An
// empty spec returns a disabled Threshold whose Allows always reports true.
func ParseThreshold(spec string) (Threshold, error) {
	if spec == "" {
		return Threshold{}, nil
	}
	n, err := humanize.ParseBytes(spec)
	if err != nil {
		return Threshold{}, fmt.Errorf("filter: bad threshold %q: %w", spec, err)
	}
	return Threshold{minBytes: n, enabled: true}, nil
}

// Allows reports whether a size of blocks 512-byte blocks clears the
// threshold. A disabled Threshold allows everything.
func (t Threshold) Allows(blocks uint64) bool {
	if !t.enabled {
		return true
	}
	return blocks*512 >= t.minBytes
}
