// Package format renders a walk's result for display, in the units and
// shape the CLI's --format/--output flags ask for.
package format

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
)

// Unit selects the size unit a Human formatter renders in.
type Unit int

const (
	UnitAuto Unit = iota
	UnitBytes
	UnitBinary
	UnitKB
	UnitMB
	UnitGB
)

// Config is the user-selected output configuration.
type Config struct {
	Unit Unit
	JSON bool
}

// Report is the flat result structure both formatters render. It mirrors
// coordinator.Stats but lives here so the formatting package does not
// import the coordinator.
type Report struct {
	Path           string `json:"path"`
	TotalBlocks    uint64 `json:"total_blocks"`
	TotalBytes     uint64 `json:"total_bytes"`
	DirsProcessed  uint64 `json:"dirs_processed"`
	FilesProcessed uint64 `json:"files_processed"`
	ErrorsCount    uint64 `json:"errors_count"`
}

// Human renders bytes according to unit, grounded on ivoronin-dupedog's
// and michaelscutari-dug's use of humanize.IBytes/humanize.Bytes for
// exactly this purpose.
func Human(bytes uint64, unit Unit) string {
	switch unit {
	case UnitBytes:
		return fmt.Sprintf("%d", bytes)
	case UnitBinary:
		return humanize.IBytes(bytes)
	case UnitKB:
		return fmt.Sprintf("%.1fK", float64(bytes)/1024)
	case UnitMB:
		return fmt.Sprintf("%.1fM", float64(bytes)/(1024*1024))
	case UnitGB:
		return fmt.Sprintf("%.1fG", float64(bytes)/(1024*1024*1024))
	default:
		return humanize.Bytes(bytes)
	}
}

// JSON renders a Report as indented JSON. Built on the standard library's
// encoding/json: no example in the retrieval pack reaches for a
// third-party JSON codec for a single flat result struct, and none would
// buy anything over the standard encoder here.
func JSON(r Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
