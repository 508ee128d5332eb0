package tui

import (
	"strings"

	"github.com/theirongolddev/lifeshock/internal/cli"
	"github.com/theirongolddev/lifeshock/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderIntro(cw, h int) string {
	t := theme.Active
	rules := a.engine.Scenario().Rules

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4).
		Width(min(cw-4, 64))

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	moneyStyle := lipgloss.NewStyle().Foreground(t.Surplus).Background(t.Surface).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ The \"" + a.engine.Scenario().Name + "\" Game"))
	b.WriteString("\n\n")
	b.WriteString(textStyle.Render("Congratulations! You just landed a fantastic job earning "))
	b.WriteString(moneyStyle.Render(cli.FormatMoney(rules.Currency, rules.BaselineIncome)))
	b.WriteString(textStyle.Render(" a month."))
	b.WriteString("\n\n")
	b.WriteString(textStyle.Render("It's time to build your lifestyle. How will you allocate your newfound wealth?"))
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("Press Enter to start budgeting"))

	return lipgloss.Place(cw, h, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}
