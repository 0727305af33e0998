package plotting

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/tensorplex-labs/evalkit/internal/scaling"
)

const maxBarWidth = 50

// PlotScoresTerminal prints scores as horizontal bars in ascending order.
// labels may be nil; otherwise it must align with scores.
func PlotScoresTerminal(w io.Writer, scores []float64, labels []int, title string) {
	type sampleScore struct {
		Index int
		Label int
		Score float64
		Width int
	}

	if len(scores) == 0 {
		fmt.Fprintf(w, "\n%s: no scores\n", title)
		return
	}
	withLabels := len(labels) == len(scores)

	widths := barWidths(scores)
	samples := make([]sampleScore, len(scores))
	for i := range scores {
		samples[i] = sampleScore{Index: i, Label: -1, Score: scores[i], Width: widths[i]}
		if withLabels {
			samples[i].Label = labels[i]
		}
	}

	// Sort by score in ascending order
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Score < samples[j].Score
	})

	minScore, maxScore := finiteRange(scores)

	fmt.Fprintf(w, "\n%s (Terminal Plot - Ascending Order):\n", title)
	fmt.Fprintln(w, "  Sample | Label | Score    | Bar Chart")
	fmt.Fprintln(w, "---------|-------|----------|"+strings.Repeat("-", maxBarWidth))

	for _, s := range samples {
		bar := strings.Repeat("█", s.Width)
		if s.Width == 0 {
			bar = "▏"
		}

		label := "    -"
		if s.Label >= 0 {
			label = fmt.Sprintf("%5d", s.Label)
		}
		fmt.Fprintf(w, "%8d | %s | %.6f | %s (%.4f)\n", s.Index, label, s.Score, bar, s.Score)
	}

	fmt.Fprintf(w, "\nScale: Min=%.6f, Max=%.6f\n", minScore, maxScore)
	fmt.Fprintf(w, "Bar width represents relative score (0 to %d chars)\n", maxBarWidth)
}

// barWidths min-max scales the finite scores onto [0, maxBarWidth]. Equal
// finite scores get half a bar, +Inf a full bar, -Inf and NaN none.
func barWidths(scores []float64) []int {
	widths := make([]int, len(scores))

	var finiteIdx []int
	var finite []float64
	for i, s := range scores {
		switch {
		case math.IsInf(s, 1):
			widths[i] = maxBarWidth
		case math.IsInf(s, -1) || math.IsNaN(s):
			widths[i] = 0
		default:
			finiteIdx = append(finiteIdx, i)
			finite = append(finite, s)
		}
	}
	if len(finite) == 0 {
		return widths
	}

	lo, hi := finiteRange(finite)
	scaled := scaling.MinMaxScale(finite)
	for k, i := range finiteIdx {
		width := maxBarWidth / 2
		if hi != lo {
			width = int(scaled[k] * maxBarWidth)
		}
		widths[i] = min(max(width, 0), maxBarWidth)
	}
	return widths
}

// finiteRange returns the smallest and largest finite score, or NaN for both
// when there is none.
func finiteRange(scores []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range scores {
		if math.IsInf(s, 0) || math.IsNaN(s) {
			continue
		}
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	if lo > hi {
		return math.NaN(), math.NaN()
	}
	return lo, hi
}
