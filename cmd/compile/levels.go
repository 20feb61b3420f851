package main

import (
	"io"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/samber/lo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/domino14/tictable/graph"
)

// levelCounts returns the number of nodes at each level, indexed by level.
func levelCounts(nodes map[string]*graph.Node, boardSize int) []int {
	counts := make([]int, boardSize*boardSize+1)
	for _, n := range nodes {
		counts[n.Level]++
	}
	return counts
}

// printLevels writes a per-level table and a histogram of node levels.
func printLevels(w io.Writer, nodes map[string]*graph.Node, boardSize int) error {
	p := message.NewPrinter(language.English)
	for level, n := range levelCounts(nodes, boardSize) {
		p.Fprintf(w, "level %2d: %d\n", level, n)
	}
	levels := lo.MapToSlice(nodes, func(_ string, n *graph.Node) float64 {
		return float64(n.Level)
	})
	h := histogram.Hist(boardSize*boardSize+1, levels)
	return histogram.Fprint(w, h, histogram.Linear(40))
}
