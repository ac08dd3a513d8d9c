package viz

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aram-vel/gravlab/internal/vec"
)

const (
	canvasWidth     = 70
	canvasHeight    = 26
	historyCapacity = 600
)

// Frame is one snapshot published by a running integration. A frame
// carrying Err reports the run's failure and ends the stream.
type Frame struct {
	Step   int
	Time   float64
	Pos    []vec.V3
	Energy float64
	Err    error
}

// Starter launches one integration bound to ctx and returns its frame
// stream. The stream must be closed when the run finishes. Keeping the
// channel unbuffered (or nearly so) paces the simulation to the viewer.
type Starter func(ctx context.Context) (<-chan Frame, error)

type frameMsg Frame
type doneMsg struct{}

// Live is the in-terminal run viewer: particle scatter on a braille
// canvas, an energy sparkline, and space/r/q playback keys.
type Live struct {
	title string
	steps int
	scale float64
	start Starter

	cancel context.CancelFunc
	frames <-chan Frame

	canvas *Canvas
	last   Frame
	energy []float64
	e0     float64
	haveE0 bool
	paused bool
	done   bool
	err    error
}

// NewLive starts the first run immediately. A non-positive scale is
// derived from the first frame.
func NewLive(title string, steps int, scale float64, start Starter) (Live, error) {
	m := Live{
		title:  title,
		steps:  steps,
		scale:  scale,
		start:  start,
		canvas: NewCanvas(canvasWidth, canvasHeight),
	}
	if err := m.launch(); err != nil {
		return Live{}, err
	}
	return m, nil
}

func (m *Live) launch() error {
	ctx, cancel := context.WithCancel(context.Background())
	frames, err := m.start(ctx)
	if err != nil {
		cancel()
		return err
	}
	m.cancel = cancel
	m.frames = frames
	m.energy = m.energy[:0]
	m.haveE0 = false
	m.paused = false
	m.done = false
	m.err = nil
	return nil
}

func waitFrame(ch <-chan Frame) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-ch
		if !ok {
			return doneMsg{}
		}
		return frameMsg(f)
	}
}

func (m Live) Init() tea.Cmd {
	return waitFrame(m.frames)
}

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			return m, tea.Quit
		case " ":
			if m.done {
				return m, nil
			}
			m.paused = !m.paused
			if !m.paused {
				return m, waitFrame(m.frames)
			}
		case "r":
			m.cancel()
			if err := m.launch(); err != nil {
				m.err = err
				m.done = true
				return m, nil
			}
			m.canvas.Clear()
			return m, waitFrame(m.frames)
		}

	case frameMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.done = true
			return m, nil
		}
		m.last = Frame(msg)
		if !m.haveE0 {
			m.e0 = m.last.Energy
			m.haveE0 = true
		}
		m.energy = append(m.energy, m.last.Energy)
		if len(m.energy) > historyCapacity {
			m.energy = m.energy[1:]
		}
		if m.scale <= 0 {
			m.scale = autoScale(m.last.Pos)
		}
		m.canvas.Clear()
		m.canvas.Scatter(m.last.Pos, m.scale)
		if m.paused || m.done {
			return m, nil
		}
		return m, waitFrame(m.frames)

	case doneMsg:
		m.done = true
	}
	return m, nil
}

func autoScale(points []vec.V3) float64 {
	r := 0.0
	for _, p := range points {
		if v := math.Abs(p.X); v > r {
			r = v
		}
		if v := math.Abs(p.Y); v > r {
			r = v
		}
	}
	if r == 0 {
		return 1
	}
	return 1.3 * r
}

func (m Live) status() string {
	switch {
	case m.err != nil:
		return StatusFailed.Render("FAILED")
	case m.done:
		return StatusDone.Render("DONE")
	case m.paused:
		return StatusPaused.Render("PAUSED")
	default:
		return StatusRunning.Render("RUNNING")
	}
}

func (m Live) View() string {
	var s strings.Builder
	s.WriteString(Header.Render(strings.ToUpper(m.title)) + "  " + m.status() + "\n\n")

	if m.steps > 0 {
		frac := float64(m.last.Step) / float64(m.steps)
		s.WriteString(ProgressBar(frac, 24) + fmt.Sprintf(" %d/%d\n", m.last.Step, m.steps))
	}
	s.WriteString(Label.Render("time") + Value.Render(fmt.Sprintf("%.3f", m.last.Time)) + "\n")
	s.WriteString(Label.Render("particles") + Value.Render(fmt.Sprintf("%d", len(m.last.Pos))) + "\n")
	s.WriteString(Label.Render("energy") + Value.Render(fmt.Sprintf("%.6g", m.last.Energy)) + "\n")

	if m.haveE0 && m.e0 != 0 {
		drift := math.Abs(m.last.Energy-m.e0) / math.Abs(m.e0)
		s.WriteString(Label.Render("drift") + Value.Render(fmt.Sprintf("%.2e", drift)) + "\n")
	}
	if m.err != nil {
		s.WriteString(Label.Render("error") + StatusFailed.Render(m.err.Error()) + "\n")
	}

	if chart := sparkline(m.energy); chart != "" {
		s.WriteString(Graph.Render(chart) + "\n")
	}

	s.WriteString(Help.Render("\nspace:pause  r:restart  q:quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		canvasFrame.Render(m.canvas.String()),
		sidePanel.Render(s.String()))
}
