package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/lifeshock/internal/cli"
	"github.com/theirongolddev/lifeshock/internal/scenario"
	"github.com/theirongolddev/lifeshock/internal/sim"
	"github.com/theirongolddev/lifeshock/internal/tui/components"
	"github.com/theirongolddev/lifeshock/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// renderMoneyBar renders the income / expenses / leftover header, plus the
// countdown while adjusting.
func (a App) renderMoneyBar(cw int) string {
	t := theme.Active
	cur := a.engine.Scenario().Rules.Currency
	totals := a.engine.Totals()

	metrics := []components.Metric{
		{Label: "Monthly Income", Value: cli.FormatMoney(cur, a.engine.Income())},
		{Label: "Expenses", Value: cli.FormatMoney(cur, totals.Expenses)},
		{Label: "Leftover", Value: cli.FormatMoney(cur, totals.Balance), Color: t.ForBalance(totals.Balance)},
	}
	if a.engine.Phase() == sim.Adjusting {
		left := a.engine.SecondsLeft()
		color := t.TextPrimary
		if left <= 10 {
			color = t.Shock
		}
		metrics = append(metrics, components.Metric{
			Label: "Time Left",
			Value: cli.FormatCountdown(left),
			Color: color,
		})
	}
	return components.MetricCardRow(metrics, cw)
}

func (a App) renderBudget(cw int) string {
	t := theme.Active
	phase := a.engine.Phase()
	cats := a.engine.Scenario().Catalog.Categories

	headStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Background).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Background)

	var b strings.Builder
	if phase == sim.Adjusting {
		b.WriteString(headStyle.Foreground(t.Shock).Render(" Emergency Restructuring!"))
		b.WriteString("\n")
		b.WriteString(subStyle.Render(" Adjust what you can before time runs out! Look for the flexible options."))
		b.WriteString("\n")
		rules := a.engine.Scenario().Rules
		b.WriteString(" ")
		b.WriteString(components.CountdownBar(a.engine.SecondsLeft(), rules.AdjustSeconds(), max(cw-8, 10)))
	} else {
		b.WriteString(headStyle.Render(" Design Your Lifestyle"))
		b.WriteString("\n")
		b.WriteString(subStyle.Render(" Choose your " + categoryList(cats) + " options below."))
		b.WriteString("\n ")
		b.WriteString(components.SpendBar("Spent", a.engine.Totals().Expenses, a.engine.Income(), 6, max(cw-20, 10)))
	}
	b.WriteString("\n")

	for i, cat := range cats {
		b.WriteString(a.renderCategory(cat, i == a.catIdx, cw))
		b.WriteString("\n")
	}

	if phase == sim.Budgeting {
		b.WriteString(a.renderConfirmHint())
	} else {
		b.WriteString(subStyle.Foreground(t.Accent).Render(" Press f when you're done adjusting"))
	}

	return b.String()
}

func (a App) renderCategory(cat scenario.Category, focused bool, cw int) string {
	t := theme.Active
	phase := a.engine.Phase()
	cur := a.engine.Scenario().Rules.Currency
	chosen := a.engine.Selection(cat.ID)
	locked := !a.engine.Selectable(cat.ID)

	badge := ""
	if phase == sim.Adjusting {
		if locked {
			badge = components.Badge("Locked", t.ForCategory(false))
		} else {
			badge = components.Badge("Flexible", t.ForCategory(true))
		}
	}

	descStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var body strings.Builder
	body.WriteString(descStyle.Render(cat.Description))
	body.WriteString("\n")

	widths := components.LayoutRow(components.CardInnerWidth(cw), len(cat.Options))
	opts := make([]string, 0, len(cat.Options))
	for i, opt := range cat.Options {
		opts = append(opts, renderOption(opt, i, cur, optionState{
			chosen:  opt.ID == chosen,
			cursor:  focused && i == a.optIdx,
			locked:  locked,
			width:   widths[i],
			showKey: focused,
		}))
	}
	body.WriteString(components.CardRow(opts))

	if phase == sim.Adjusting && locked {
		body.WriteString("\n")
		body.WriteString(lipgloss.NewStyle().Foreground(t.Locked).Background(t.Surface).
			Render("Inflexible Burden: you signed a contract. You cannot change this instantly."))
	}

	return components.FocusCard(cat.Title, badge, body.String(), cw, focused)
}

type optionState struct {
	chosen  bool
	cursor  bool
	locked  bool
	width   int
	showKey bool
}

func renderOption(opt scenario.Option, idx int, currency string, st optionState) string {
	t := theme.Active

	border := t.Border
	switch {
	case st.chosen:
		border = t.Accent
	case st.cursor:
		border = t.BorderFocus
	}

	bg := t.Surface
	if st.cursor {
		bg = t.SurfaceHover
	}

	labelFg := t.TextPrimary
	if st.locked && !st.chosen {
		labelFg = t.TextDim
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		BorderBackground(t.Surface).
		Background(bg).
		Width(max(st.width-2, 8)).
		Padding(0, 1)

	labelStyle := lipgloss.NewStyle().Foreground(labelFg).Background(bg).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(bg)
	costStyle := lipgloss.NewStyle().Foreground(t.Cost).Background(bg).Bold(true)
	markStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(bg).Bold(true)

	mark := "○ "
	if st.chosen {
		mark = "● "
	}
	key := ""
	if st.showKey {
		key = fmt.Sprintf("[%d] ", idx+1)
	}

	content := markStyle.Render(mark+key) + labelStyle.Render(opt.Label) + "\n" +
		descStyle.Render(opt.Description) + "\n" +
		costStyle.Render(cli.FormatMoney(currency, opt.Cost)+" / month")

	return box.Render(content)
}

func (a App) renderConfirmHint() string {
	t := theme.Active
	if a.engine.Complete() {
		return lipgloss.NewStyle().Foreground(t.Surplus).Background(t.Background).Bold(true).
			Render(" ✓ Budget complete. Press c to confirm")
	}
	return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Background).
		Render(" Choose an option in every category to confirm your budget")
}

func categoryList(cats []scenario.Category) string {
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = strings.ToLower(c.Title)
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
