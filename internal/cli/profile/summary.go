package profile

import (
	"encoding/binary"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zeebo/xxh3"

	"github.com/stacklight/stacklight/internal/sampler"
)

// stackCount aggregates identical stacks across drained traces, keyed by an
// xxh3 hash over the frame references.
type stackCount struct {
	hash  uint64
	top   sampler.FrameLine
	depth int
	count int
}

// summarize dedupes traces by stack identity and returns the groups sorted
// by descending sample count.
func summarize(traces [][]sampler.FrameLine) []stackCount {
	groups := make(map[uint64]*stackCount)
	var buf []byte

	for _, trace := range traces {
		if len(trace) == 0 {
			continue
		}
		buf = buf[:0]
		for _, fl := range trace {
			buf = binary.LittleEndian.AppendUint64(buf, uint64(fl.Frame))
		}
		h := xxh3.Hash(buf)

		g, ok := groups[h]
		if !ok {
			g = &stackCount{hash: h, top: trace[0], depth: len(trace)}
			groups[h] = g
		}
		g.count++
	}

	out := make([]stackCount, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].hash < out[j].hash
	})
	return out
}

// printSummary renders the top stacks as a table on the command's stdout.
func printSummary(cmd *cobra.Command, groups []stackCount, total, topN int, symbol func(sampler.FrameRef) (string, bool)) {
	if len(groups) > topN {
		groups = groups[:topN]
	}

	cmd.Printf("Captured %d traces, %d unique stacks\n\n", total, len(groups))

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SAMPLES\tDEPTH\tLINE\tTOP FRAME")
	for _, g := range groups {
		name, ok := symbol(g.top.Frame)
		if !ok {
			name = "<unresolved>"
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\n", g.count, g.depth, g.top.Line, name)
	}
	_ = w.Flush()
}
