package components

import (
	"fmt"

	"github.com/theirongolddev/lifeshock/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForPct returns the surplus, caution, warn or debt color as pct of the budget is used up.
func ColorForPct(pct float64) string {
	t := theme.Active
	switch {
	case pct >= 0.9:
		return string(t.Debt)
	case pct >= 0.7:
		return string(t.Warn)
	case pct >= 0.5:
		return string(t.Caution)
	default:
		return string(t.Surplus)
	}
}

// CountdownBar renders the adjustment countdown as a draining bar with the
// seconds remaining.
func CountdownBar(secondsLeft, total, barWidth int) string {
	t := theme.Active

	left := 0.0
	if total > 0 {
		left = float64(secondsLeft) / float64(total)
	}
	left = max(0, min(left, 1))

	// colors follow time used, so the bar reddens as it drains
	color := ColorForPct(1 - left)

	bar := progress.New(
		progress.WithSolidFill(color),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	secStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return bar.ViewAs(left) +
		spaceStyle.Render(" ") +
		secStyle.Render(fmt.Sprintf("%2ds", secondsLeft))
}

// SpendBar renders expenses against income with a percentage label.
func SpendBar(label string, spent, income int64, labelW, barWidth int) string {
	t := theme.Active

	pct := 0.0
	if income > 0 {
		pct = float64(spent) / float64(income)
	}
	shown := max(0, min(pct, 1))

	bar := progress.New(
		progress.WithSolidFill(ColorForPct(pct)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorForPct(pct))).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(shown) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100))
}
