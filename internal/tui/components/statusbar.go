package components

import (
	"strings"

	"github.com/theirongolddev/lifeshock/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// KeyHint is one "[key]action" entry of the status bar.
type KeyHint struct {
	Key  string
	Desc string
}

// RenderStatusBar renders the bottom status bar: key hints on the left and
// an optional message on the right. warn colors the message.
func RenderStatusBar(width int, hints []KeyHint, message string, warn bool) string {
	t := theme.Active

	barStyle := lipgloss.NewStyle().Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	msgStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	if warn {
		msgStyle = msgStyle.Foreground(t.Warn).Bold(true)
	}

	var left strings.Builder
	left.WriteString(barStyle.Render(" "))
	for i, h := range hints {
		if i > 0 {
			left.WriteString(barStyle.Render("  "))
		}
		left.WriteString(keyStyle.Render("[" + h.Key + "]"))
		left.WriteString(descStyle.Render(h.Desc))
	}

	right := ""
	if message != "" {
		right = msgStyle.Render(message) + barStyle.Render(" ")
	}

	gap := max(width-lipgloss.Width(left.String())-lipgloss.Width(right), 0)

	return left.String() + barStyle.Render(strings.Repeat(" ", gap)) + right
}
