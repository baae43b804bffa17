package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
)

const (
	plotWidth  = 80
	plotHeight = 10
)

// column extracts index idx from each row, skipping short rows.
func column(rows [][]float64, idx int) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if idx < len(r) {
			out = append(out, r[idx])
		}
	}
	return out
}

// PlotRun renders one asciigraph chart per pose component followed by the
// two wheel commands on a shared chart.
func PlotRun(states, controls [][]float64) string {
	var b strings.Builder
	for i, label := range []string{"x (m)", "y (m)", "theta (rad)"} {
		data := column(states, i)
		if len(data) == 0 {
			continue
		}
		b.WriteString(asciigraph.Plot(data,
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(label),
		))
		b.WriteString("\n\n")
	}

	left, right := column(controls, 0), column(controls, 1)
	if len(left) > 0 && len(right) > 0 {
		b.WriteString(asciigraph.PlotMany([][]float64{left, right},
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
			asciigraph.SeriesLegends("left", "right"),
			asciigraph.Caption("wheel commands (rad/s)"),
		))
		b.WriteString("\n")
	}
	return b.String()
}

// PlotSeries renders a single labelled series, or a placeholder when empty.
func PlotSeries(data []float64, label string, height int) string {
	if len(data) < 2 {
		return fmt.Sprintf("%s: waiting for data", label)
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(40),
		asciigraph.Caption(label),
	)
}
