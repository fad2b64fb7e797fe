package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oss-tools/parascan/internal/filter"
	"github.com/oss-tools/parascan/internal/format"
)

// FlagValues holds the pflag-bound variables cobra writes into. Kept
// separate from TraversalConfig so the CLI-binding concern (flag names,
// shorthands, defaults) stays out of the plain data type the core and
// tests build by hand.
type FlagValues struct {
	threads  int
	maxDepth int

	all       bool
	dirsOnly  bool
	filesOnly bool

	formatName string
	total      bool
	summarize  bool

	include   []string
	exclude   []string
	threshold string

	followSymlinks bool
	oneFileSystem  bool
	countHardLinks bool
	apparentSize   bool

	outputName string
}

// BindFlags registers every flag the original tool's cli.rs exposes that
// this engine still honors (or reserves), the way
// jamesainslie-antimoji and mmenanno-media_usage_finder wire
// spf13/pflag-backed flags onto a spf13/cobra command tree.
func BindFlags(cmd *cobra.Command) *FlagValues {
	fv := &FlagValues{}

	flags := cmd.Flags()
	flags.IntVarP(&fv.threads, "jobs", "j", 0, "number of worker goroutines (0 = runtime.NumCPU())")
	flags.IntVarP(&fv.maxDepth, "max-depth", "L", 0, "maximum recursion depth (unbounded unless set)")

	flags.BoolVarP(&fv.all, "all", "a", false, "accepted; output is one line per path either way")
	flags.BoolVarP(&fv.dirsOnly, "dirs-only", "d", false, "accepted; output is one line per path either way")
	flags.BoolVarP(&fv.filesOnly, "files-only", "f", false, "accepted; output is one line per path either way")

	flags.StringVarP(&fv.formatName, "format", "F", "human", "size format: human|bytes|binary|kb|mb|gb")
	flags.BoolVarP(&fv.total, "total", "c", false, "print a grand total")
	flags.BoolVarP(&fv.summarize, "summarize", "s", false, "display only a total for the given path")

	flags.StringSliceVar(&fv.include, "include", nil, "glob patterns to include (repeatable)")
	flags.StringSliceVar(&fv.exclude, "exclude", nil, "glob patterns to exclude (repeatable)")
	flags.StringVarP(&fv.threshold, "threshold", "t", "", "exclude entries smaller than this size")

	flags.BoolVarP(&fv.followSymlinks, "follow-symlinks", "H", false, "reserved, not implemented")
	flags.BoolVarP(&fv.oneFileSystem, "one-file-system", "x", false, "reserved, not implemented")
	flags.BoolVarP(&fv.countHardLinks, "count-links", "l", false, "reserved: requires the dedup cache")
	flags.BoolVar(&fv.apparentSize, "apparent-size", false, "reserved, not implemented")

	flags.StringVarP(&fv.outputName, "output", "o", "raw", "output format: raw|json")

	return fv
}

// Resolve merges bound flags with viper's overlay (pdu.yaml, if present)
// into a validated TraversalConfig. paths is the set of positional
// arguments (directories or files to measure). cmd is the command
// BindFlags registered fv's flags on -- Resolve consults its Changed
// state rather than fv.maxDepth's zero value, the way
// original_source/src/cli.rs:42-43 applies max_depth whenever the caller
// actually supplied it.
func Resolve(cmd *cobra.Command, fv *FlagValues, v *viper.Viper, paths []string) (TraversalConfig, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	threads := fv.threads
	if threads == 0 && v != nil {
		threads = v.GetInt("threads")
	}

	var maxDepth *int
	if cmd.Flags().Changed("max-depth") {
		d := fv.maxDepth
		maxDepth = &d
	}

	unit, err := parseUnit(fv.formatName)
	if err != nil {
		return TraversalConfig{}, err
	}

	threshold, err := filter.ParseThreshold(fv.threshold)
	if err != nil {
		return TraversalConfig{}, err
	}

	outputJSON, err := parseOutput(fv.outputName)
	if err != nil {
		return TraversalConfig{}, err
	}

	cfg := TraversalConfig{
		Paths:    paths,
		Threads:  threads,
		MaxDepth: maxDepth,

		All:       fv.all,
		DirsOnly:  fv.dirsOnly,
		FilesOnly: fv.filesOnly,

		Format: format.Config{Unit: unit, JSON: outputJSON},
		Filters: filter.Config{
			Include: fv.include,
			Exclude: fv.exclude,
		},
		Threshold: threshold,

		Total:     fv.total,
		Summarize: fv.summarize,

		FollowSymlinks: fv.followSymlinks,
		OneFileSystem:  fv.oneFileSystem,
		CountHardLinks: fv.countHardLinks,
		ApparentSize:   fv.apparentSize,
	}

	if err := Validate(cfg); err != nil {
		return TraversalConfig{}, err
	}
	return cfg, nil
}

// LoadViper overlays pdu.yaml (current directory, then $HOME) for
// persistent defaults. Resolve reads only its "threads" key, and only
// when --jobs is left at 0; no other key of the file is applied.
// Missing config file is not an error -- flags and built-in defaults
// still apply.
func LoadViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName("pdu")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("config: reading pdu.yaml: %w", err)
	}
	return v, nil
}

func parseUnit(name string) (format.Unit, error) {
	switch name {
	case "human", "":
		return format.UnitAuto, nil
	case "bytes":
		return format.UnitBytes, nil
	case "binary":
		return format.UnitBinary, nil
	case "kb":
		return format.UnitKB, nil
	case "mb":
		return format.UnitMB, nil
	case "gb":
		return format.UnitGB, nil
	default:
		return 0, fmt.Errorf("config: unknown --format %q", name)
	}
}

func parseOutput(name string) (bool, error) {
	switch name {
	case "raw", "":
		return false, nil
	case "json":
		return true, nil
	default:
		return false, fmt.Errorf("config: unknown --output %q", name)
	}
}
