package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/lifeshock/internal/cli"
	"github.com/theirongolddev/lifeshock/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderReveal(cw, h int) string {
	t := theme.Active
	rules := a.engine.Scenario().Rules

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(t.Shock).
		Background(t.Surface).
		Padding(2, 4).
		Width(min(cw-4, 64)).
		Align(lipgloss.Center)

	titleStyle := lipgloss.NewStyle().Foreground(t.Shock).Background(t.Surface).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	moneyStyle := lipgloss.NewStyle().Foreground(t.Debt).Background(t.Surface).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(t.Caution).Background(t.Surface)

	cut := 0
	if rules.BaselineIncome > 0 {
		cut = int(100 - rules.ShockIncome*100/rules.BaselineIncome)
	}

	var b strings.Builder
	b.WriteString(a.spinner.View())
	b.WriteString(titleStyle.Render(" LIFE SHOCK! "))
	b.WriteString(a.spinner.View())
	b.WriteString("\n\n")
	b.WriteString(subStyle.Render("A recession just hit."))
	b.WriteString("\n\n")
	b.WriteString(textStyle.Render(fmt.Sprintf("Your company is downsizing. Your salary has been cut by %d%%.", cut)))
	b.WriteString("\n")
	b.WriteString(textStyle.Render("You now only earn "))
	b.WriteString(moneyStyle.Render(cli.FormatMoney(rules.Currency, rules.ShockIncome)))
	b.WriteString(textStyle.Render(" a month."))
	b.WriteString("\n\n")
	b.WriteString(warnStyle.Render(fmt.Sprintf("You have %d seconds to adjust your budget to survive.", rules.AdjustSeconds())))

	return lipgloss.Place(cw, h, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}
