package viz

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aram-vel/gravlab/internal/diag"
	"github.com/aram-vel/gravlab/internal/vec"
)

func pauseKey() tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}}
}

func TestCanvasScatter(t *testing.T) {
	c := NewCanvas(10, 5)
	empty := c.String()
	if strings.Count(empty, "\n") != 5 {
		t.Fatalf("canvas rows = %d, want 5", strings.Count(empty, "\n"))
	}

	c.Scatter([]vec.V3{{X: 0, Y: 0}, {X: 0.9, Y: 0.9}, {X: -0.9, Y: -0.9}}, 1)
	if c.String() == empty {
		t.Error("scatter left the canvas blank")
	}

	c.Clear()
	if c.String() != empty {
		t.Error("clear did not restore the blank canvas")
	}
}

func TestCanvasIgnoresOutOfWindow(t *testing.T) {
	c := NewCanvas(10, 5)
	blank := c.String()
	c.Scatter([]vec.V3{{X: 50, Y: 0}, {X: 0, Y: -50}}, 1)
	if c.String() != blank {
		t.Error("points outside the window must be dropped")
	}
}

func TestProgressBar(t *testing.T) {
	if got := ProgressBar(0.5, 10); got != "[=====-----]" {
		t.Errorf("half bar = %q", got)
	}
	if got := ProgressBar(-1, 4); got != "[----]" {
		t.Errorf("clamped low = %q", got)
	}
	if got := ProgressBar(2, 4); got != "[====]" {
		t.Errorf("clamped high = %q", got)
	}
}

func TestBadge(t *testing.T) {
	if !strings.Contains(Badge(true), "PASS") {
		t.Error("pass badge missing PASS")
	}
	if !strings.Contains(Badge(false), "FAIL") {
		t.Error("fail badge missing FAIL")
	}
}

func TestPlotSeries(t *testing.T) {
	s := &diag.Series{Name: "Q", X: []float64{1, 2, 3}, Y: []float64{3, 2, 1}}
	if PlotSeries(s, 20, 4, "Q(r)") == "" {
		t.Error("expected a chart for a 3-point series")
	}
	short := &diag.Series{Name: "x", Y: []float64{1}}
	if PlotSeries(short, 20, 4, "") != "" {
		t.Error("single-point series cannot be plotted")
	}
	if PlotSeries(nil, 20, 4, "") != "" {
		t.Error("nil series cannot be plotted")
	}
}

func TestPlotTogetherLegends(t *testing.T) {
	series := []diag.Series{
		{Name: "newtonian", Y: []float64{4, 2, 1}},
		{Name: "entropic", Y: []float64{4, 3, 2.5}},
	}
	chart := PlotTogether(series, 24, 6, "deflection")
	if chart == "" {
		t.Fatal("expected a combined chart")
	}
	if !strings.Contains(chart, "newtonian") || !strings.Contains(chart, "entropic") {
		t.Error("legend names missing from chart")
	}
}

func TestRenderReport(t *testing.T) {
	rep := &diag.Report{
		Name:    "energy",
		Passed:  true,
		Summary: "drift 1e-7",
		Scalars: map[string]float64{"drift": 1e-7, "tolerance": 1e-4},
	}
	out := RenderReport(rep)
	for _, want := range []string{"energy", "PASS", "drift", "tolerance"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered report missing %q", want)
		}
	}
}

func TestLivePauseAndFrames(t *testing.T) {
	frames := make(chan Frame, 1)
	starter := func(ctx context.Context) (<-chan Frame, error) {
		return frames, nil
	}

	m, err := NewLive("disk", 100, 0, starter)
	if err != nil {
		t.Fatal(err)
	}

	next, cmd := m.Update(frameMsg{Step: 10, Time: 0.5, Energy: -1.5,
		Pos: []vec.V3{{X: 1}, {Y: -2}}})
	m = next.(Live)
	if cmd == nil {
		t.Error("running viewer should request the next frame")
	}
	if m.scale <= 0 {
		t.Error("scale should auto-derive from the first frame")
	}
	if len(m.energy) != 1 || m.e0 != -1.5 {
		t.Errorf("energy history = %v, e0 = %v", m.energy, m.e0)
	}

	next, _ = m.Update(pauseKey())
	m = next.(Live)
	if !m.paused {
		t.Error("space should pause")
	}
	next, cmd = m.Update(frameMsg{Step: 11})
	m = next.(Live)
	if cmd != nil {
		t.Error("paused viewer must not request more frames")
	}

	next, _ = m.Update(doneMsg{})
	m = next.(Live)
	if !m.done {
		t.Error("closed stream should mark the run done")
	}
	if !strings.Contains(m.View(), "DONE") {
		t.Error("view should show DONE")
	}
}
