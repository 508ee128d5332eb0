package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/lifeshock/internal/cli"
	"github.com/theirongolddev/lifeshock/internal/sim"
	"github.com/theirongolddev/lifeshock/internal/tui/components"
	"github.com/theirongolddev/lifeshock/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderResults(cw int) string {
	r := a.result
	if r == nil {
		res, ok := a.engine.Result()
		if !ok {
			return ""
		}
		r = &res
	}
	t := theme.Active
	cur := a.engine.Scenario().Rules.Currency

	var b strings.Builder

	// Verdict
	verdictColor := t.Surplus
	verdict := "You Survived!"
	if !r.Survived {
		verdictColor = t.Debt
		verdict = "You Went Into Debt!"
	}
	verdictStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(verdictColor).
		BorderBackground(t.Background).
		Background(t.Surface).
		Foreground(verdictColor).
		Bold(true).
		Align(lipgloss.Center).
		Width(cw - 2)

	reason := "You finished adjusting with " + cli.FormatDuration(int64(r.SecondsLeft)) + " to spare."
	if r.Reason == sim.ReasonTimeout {
		reason = "The clock ran out."
	}
	b.WriteString(verdictStyle.Render(verdict + "\n" +
		fmt.Sprintf("Your final balance is %s", cli.FormatMoney(cur, r.Balance)) + "\n" +
		lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(false).Render(reason)))
	b.WriteString("\n")

	// Lesson
	widths := components.LayoutRow(cw, 2)
	body := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).
		Width(components.CardInnerWidth(widths[0]))
	inflexible := components.FocusCard("Inflexible Burdens", components.Badge("Locked", t.Locked),
		body.Render(inflexibleLesson(a, r)), widths[0], false)
	body = body.Width(components.CardInnerWidth(widths[1]))
	flexible := components.FocusCard("Flexible Joys", components.Badge("Flexible", t.Flexible),
		body.Render("Lifestyle choices like food and travel are highly flexible. "+
			"With low fixed costs you could survive the pay cut by simply pausing your luxury spending. "+
			"You kept control over your money."), widths[1], false)
	b.WriteString(components.CardRow([]string{inflexible, flexible}))
	b.WriteString("\n")

	// Breakdown
	b.WriteString(components.ContentCard("Your Final Breakdown", a.renderBreakdown(r, components.CardInnerWidth(cw)), cw))

	if trend := a.renderTrend(); trend != "" {
		b.WriteString("\n")
		b.WriteString(trend)
	}

	return b.String()
}

func inflexibleLesson(a App, r *sim.Result) string {
	cur := a.engine.Scenario().Rules.Currency
	return fmt.Sprintf("Housing contracts and car loans lock you in. Your fixed costs were %s. "+
		"When your income dropped to %s, anything above that was debt no matter how much you cut back on lifestyle.",
		cli.FormatMoney(cur, r.Fixed), cli.FormatMoney(cur, r.FinalIncome))
}

func (a App) renderBreakdown(r *sim.Result, w int) string {
	t := theme.Active
	cur := a.engine.Scenario().Rules.Currency

	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	tagStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	costStyle := lipgloss.NewStyle().Foreground(t.Cost).Background(t.Surface)
	incomeStyle := lipgloss.NewStyle().Foreground(t.Surplus).Background(t.Surface).Bold(true)
	fill := lipgloss.NewStyle().Background(t.Surface)

	row := func(left, right string) string {
		gap := max(w-lipgloss.Width(left)-lipgloss.Width(right), 1)
		return left + fill.Render(strings.Repeat(" ", gap)) + right
	}

	var b strings.Builder
	b.WriteString(row(labelStyle.Bold(true).Render("New Income"), incomeStyle.Render(cli.FormatMoney(cur, r.FinalIncome))))
	b.WriteString("\n")
	for _, l := range r.Lines {
		tag := "(Locked)"
		if l.Flexible {
			tag = "(Flexible)"
		}
		b.WriteString(row(labelStyle.Render(l.Label)+fill.Render(" ")+tagStyle.Render(tag),
			costStyle.Render("- "+cli.FormatMoney(cur, l.Cost))))
		b.WriteString("\n")
	}
	b.WriteString(tagStyle.Render(strings.Repeat("─", w)))
	b.WriteString("\n")
	balStyle := lipgloss.NewStyle().Foreground(t.ForBalance(r.Balance)).Background(t.Surface).Bold(true)
	b.WriteString(row(labelStyle.Bold(true).Render("Final Balance"), balStyle.Render(cli.FormatMoney(cur, r.Balance))))

	switch {
	case a.saveErr != nil:
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface).Render("Run not saved: " + a.saveErr.Error()))
	case a.savedID != "":
		b.WriteString("\n")
		b.WriteString(tagStyle.Render("Saved to history"))
	}

	return b.String()
}

// renderTrend shows final balances of recent runs, oldest first.
func (a App) renderTrend() string {
	if len(a.recent) < 2 {
		return ""
	}
	t := theme.Active

	values := make([]int64, len(a.recent))
	survived := 0
	for i, rec := range a.recent {
		values[len(a.recent)-1-i] = rec.Balance
		if rec.Survived {
			survived++
		}
	}

	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Background)
	return label.Render(fmt.Sprintf(" Last %d runs  ", len(values))) +
		components.Sparkline(values, t.Accent) +
		label.Render(fmt.Sprintf("  survived %d/%d", survived, len(values)))
}
