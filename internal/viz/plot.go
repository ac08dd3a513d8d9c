package viz

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"

	"github.com/aram-vel/gravlab/internal/diag"
)

var palette = []asciigraph.AnsiColor{
	asciigraph.Blue,
	asciigraph.Red,
	asciigraph.Green,
	asciigraph.Yellow,
}

// PlotSeries renders one report series as a terminal chart.
func PlotSeries(s *diag.Series, width, height int, caption string) string {
	if s == nil || len(s.Y) < 2 {
		return ""
	}
	return asciigraph.Plot(s.Y,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption))
}

// PlotTogether overlays several series on one chart with a legend, for
// side-by-side force-law comparisons.
func PlotTogether(series []diag.Series, width, height int, caption string) string {
	data := make([][]float64, 0, len(series))
	legends := make([]string, 0, len(series))
	for _, s := range series {
		if len(s.Y) < 2 {
			continue
		}
		data = append(data, s.Y)
		legends = append(legends, s.Name)
	}
	if len(data) == 0 {
		return ""
	}

	colors := make([]asciigraph.AnsiColor, len(data))
	for i := range colors {
		colors[i] = palette[i%len(palette)]
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...))
}

// sparkline is the compact energy chart the live view embeds.
func sparkline(values []float64) string {
	if len(values) < 2 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Height(4),
		asciigraph.Width(30),
		asciigraph.Caption("energy"))
}

// RenderReport renders a report header: badge, summary and the scalar
// table. Series plotting is the caller's call.
func RenderReport(rep *diag.Report) string {
	var b strings.Builder
	b.WriteString(Header.Render(rep.Name) + " " + Badge(rep.Passed) + "\n")
	if rep.Summary != "" {
		b.WriteString(Value.Render(rep.Summary) + "\n")
	}

	if len(rep.Scalars) > 0 {
		keys := make([]string, 0, len(rep.Scalars))
		for k := range rep.Scalars {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		tw := tabwriter.NewWriter(&b, 2, 4, 2, ' ', 0)
		for _, k := range keys {
			fmt.Fprintf(tw, "  %s\t%.6g\n", k, rep.Scalars[k])
		}
		tw.Flush()
	}
	return b.String()
}
