package components

import (
	"strings"

	"github.com/theirongolddev/lifeshock/internal/sim"
	"github.com/theirongolddev/lifeshock/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Step is one stage shown in the phase bar.
type Step struct {
	Name  string
	Phase sim.Phase
}

// Steps lists the stages of a run in order.
var Steps = []Step{
	{Name: "Intro", Phase: sim.Intro},
	{Name: "Budget", Phase: sim.Budgeting},
	{Name: "Shock", Phase: sim.ShockReveal},
	{Name: "Adjust", Phase: sim.Adjusting},
	{Name: "Results", Phase: sim.Results},
}

const stepSeparator = " › "

// RenderPhaseBar renders the stage breadcrumb with the active phase
// highlighted and completed stages dimmed.
func RenderPhaseBar(active sim.Phase, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.Background).
		Background(t.Accent).
		Bold(true).
		Padding(0, 1)

	doneStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface).
		Padding(0, 1)

	todoStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Padding(0, 1)

	sepStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	parts := make([]string, 0, len(Steps))
	for _, s := range Steps {
		switch {
		case s.Phase == active:
			parts = append(parts, activeStyle.Render(s.Name))
		case s.Phase < active:
			parts = append(parts, doneStyle.Render(s.Name))
		default:
			parts = append(parts, todoStyle.Render(s.Name))
		}
	}

	row := strings.Join(parts, sepStyle.Render(stepSeparator))
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(row)
}

