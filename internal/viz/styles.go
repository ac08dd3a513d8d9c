package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Header = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	Label  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	Value  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	Help   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	Graph  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)

	StatusRunning = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	StatusPaused  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	StatusDone    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	StatusFailed  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	passBadge = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("0")).Background(lipgloss.Color("42")).Padding(0, 1)
	failBadge = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("255")).Background(lipgloss.Color("196")).Padding(0, 1)

	canvasFrame = lipgloss.NewStyle().Padding(1, 2)
	sidePanel   = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
)

// Badge renders a PASS or FAIL tag.
func Badge(passed bool) string {
	if passed {
		return passBadge.Render("PASS")
	}
	return failBadge.Render("FAIL")
}

// ProgressBar fills width cells proportionally to frac in [0, 1].
func ProgressBar(frac float64, width int) string {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(width))
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}
