// Package diagnostics provides human-readable dump and plot helpers for
// inspecting an index from a debugger or a test — library functions, not a
// CLI surface (spec.md §6 puts a CLI out of scope as an external
// collaborator). Grounded on
// _examples/original_source/src/utils/dict.c's iUtlDictList, which prints a
// dictionary's super block and key-block statistics to stdout for
// troubleshooting; this package renders a dictionary's entry count and a
// bounded scan of its keys as tables via olekukonko/tablewriter and adds a latency-distribution plot via
// guptarohit/asciigraph, both carried over from the teacher's own
// dependency stack.
package diagnostics

import (
	"fmt"
	"io"

	"github.com/fschiettecatte/mpscore/dict"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
)

// DumpDictionarySummary writes a one-row table holding r's entry count to
// w. Super-block entries and key-block boundaries are not listed.
func DumpDictionarySummary(w io.Writer, r *dict.Reader) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"metric", "value"})
	table.Append([]string{"entry count", fmt.Sprintf("%d", r.EntryCount())})
	table.Render()
	return nil
}

// ScanSummary renders every key visited by a Scan starting at startKey as
// a two-column table of key and value length, bounded by limit entries (0
// means unbounded) — useful for spot-checking a build without dumping an
// entire dictionary.
func ScanSummary(w io.Writer, r *dict.Reader, startKey []byte, limit int) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"key", "value length"})
	n := 0
	err := r.Scan(startKey, func(key, value []byte) (bool, error) {
		table.Append([]string{string(key), fmt.Sprintf("%d", len(value))})
		n++
		return limit > 0 && n >= limit, nil
	})
	if err != nil {
		return err
	}
	table.Render()
	return nil
}

// PlotLatencies renders a series of latency samples (e.g. from
// metrics.Registry's recorded observations) as an ASCII line graph, for
// eyeballing a distribution's shape in a terminal without external
// tooling.
func PlotLatencies(samples []float64, caption string) string {
	return asciigraph.Plot(samples, asciigraph.Caption(caption), asciigraph.Height(10))
}
