// Package theme defines the color palettes of the lifeshock TUI. Besides
// the surface and text roles, each palette names the game's own meanings:
// money left over or owed, locked and flexible categories, and the shock.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme maps game roles to colors.
type Theme struct {
	Name string

	Background   lipgloss.Color
	Surface      lipgloss.Color // cards and panels
	SurfaceHover lipgloss.Color // option under the cursor
	Border       lipgloss.Color
	BorderFocus  lipgloss.Color // focused but unchosen option
	BorderAccent lipgloss.Color // focused card, intro and help frames

	TextDim     lipgloss.Color
	TextMuted   lipgloss.Color
	TextPrimary lipgloss.Color

	Accent       lipgloss.Color // chosen option, phase bar, prompts
	AccentBright lipgloss.Color // titles
	Key          lipgloss.Color // key names in the help screen

	Surplus lipgloss.Color // money left over
	Caution lipgloss.Color // break-even, budget getting tight
	Warn    lipgloss.Color // flash warnings, nearly spent
	Debt    lipgloss.Color // negative balance, overspent

	Locked   lipgloss.Color // inflexible burden
	Flexible lipgloss.Color // can still be cut
	Shock    lipgloss.Color // recession reveal and emergency countdown
	Cost     lipgloss.Color // option prices
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme, a warm paper-inspired dark palette.
var FlexokiDark = Theme{
	Name:         "flexoki-dark",
	Background:   lipgloss.Color("#100F0F"),
	Surface:      lipgloss.Color("#1C1B1A"),
	SurfaceHover: lipgloss.Color("#282726"),
	Border:       lipgloss.Color("#403E3C"),
	BorderFocus:  lipgloss.Color("#575653"),
	BorderAccent: lipgloss.Color("#3AA99F"),
	TextDim:      lipgloss.Color("#575653"),
	TextMuted:    lipgloss.Color("#878580"),
	TextPrimary:  lipgloss.Color("#FFFCF0"),
	Accent:       lipgloss.Color("#3AA99F"),
	AccentBright: lipgloss.Color("#5BC8BE"),
	Key:          lipgloss.Color("#24837B"),
	Surplus:      lipgloss.Color("#879A39"),
	Caution:      lipgloss.Color("#D0A215"),
	Warn:         lipgloss.Color("#DA702C"),
	Debt:         lipgloss.Color("#D14D41"),
	Locked:       lipgloss.Color("#D14D41"),
	Flexible:     lipgloss.Color("#A3B859"),
	Shock:        lipgloss.Color("#CE5D97"),
	Cost:         lipgloss.Color("#DA702C"),
}

// CatppuccinMocha is a soft pastel palette.
var CatppuccinMocha = Theme{
	Name:         "catppuccin-mocha",
	Background:   lipgloss.Color("#1E1E2E"),
	Surface:      lipgloss.Color("#313244"),
	SurfaceHover: lipgloss.Color("#45475A"),
	Border:       lipgloss.Color("#585B70"),
	BorderFocus:  lipgloss.Color("#7F849C"),
	BorderAccent: lipgloss.Color("#89B4FA"),
	TextDim:      lipgloss.Color("#6C7086"),
	TextMuted:    lipgloss.Color("#A6ADC8"),
	TextPrimary:  lipgloss.Color("#CDD6F4"),
	Accent:       lipgloss.Color("#89B4FA"),
	AccentBright: lipgloss.Color("#B4D0FB"),
	Key:          lipgloss.Color("#94E2D5"),
	Surplus:      lipgloss.Color("#A6E3A1"),
	Caution:      lipgloss.Color("#F9E2AF"),
	Warn:         lipgloss.Color("#FAB387"),
	Debt:         lipgloss.Color("#F38BA8"),
	Locked:       lipgloss.Color("#F38BA8"),
	Flexible:     lipgloss.Color("#C6F6C1"),
	Shock:        lipgloss.Color("#F5C2E7"),
	Cost:         lipgloss.Color("#FAB387"),
}

// TokyoNight is a cool blue and purple palette.
var TokyoNight = Theme{
	Name:         "tokyo-night",
	Background:   lipgloss.Color("#1A1B26"),
	Surface:      lipgloss.Color("#24283B"),
	SurfaceHover: lipgloss.Color("#343A52"),
	Border:       lipgloss.Color("#565F89"),
	BorderFocus:  lipgloss.Color("#7982A9"),
	BorderAccent: lipgloss.Color("#7AA2F7"),
	TextDim:      lipgloss.Color("#565F89"),
	TextMuted:    lipgloss.Color("#A9B1D6"),
	TextPrimary:  lipgloss.Color("#C0CAF5"),
	Accent:       lipgloss.Color("#7AA2F7"),
	AccentBright: lipgloss.Color("#A9C1FF"),
	Key:          lipgloss.Color("#7DCFFF"),
	Surplus:      lipgloss.Color("#9ECE6A"),
	Caution:      lipgloss.Color("#E0AF68"),
	Warn:         lipgloss.Color("#FF9E64"),
	Debt:         lipgloss.Color("#F7768E"),
	Locked:       lipgloss.Color("#F7768E"),
	Flexible:     lipgloss.Color("#B9E87A"),
	Shock:        lipgloss.Color("#BB9AF7"),
	Cost:         lipgloss.Color("#FF9E64"),
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:         "terminal",
	Background:   lipgloss.Color("0"),
	Surface:      lipgloss.Color("0"),
	SurfaceHover: lipgloss.Color("8"),
	Border:       lipgloss.Color("8"),
	BorderFocus:  lipgloss.Color("7"),
	BorderAccent: lipgloss.Color("6"),
	TextDim:      lipgloss.Color("8"),
	TextMuted:    lipgloss.Color("7"),
	TextPrimary:  lipgloss.Color("15"),
	Accent:       lipgloss.Color("6"),
	AccentBright: lipgloss.Color("14"),
	Key:          lipgloss.Color("6"),
	Surplus:      lipgloss.Color("2"),
	Caution:      lipgloss.Color("3"),
	Warn:         lipgloss.Color("3"),
	Debt:         lipgloss.Color("1"),
	Locked:       lipgloss.Color("1"),
	Flexible:     lipgloss.Color("10"),
	Shock:        lipgloss.Color("5"),
	Cost:         lipgloss.Color("3"),
}

// All available themes.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// ForBalance picks the color for a leftover amount.
func (t Theme) ForBalance(balance int64) lipgloss.Color {
	switch {
	case balance > 0:
		return t.Surplus
	case balance == 0:
		return t.Caution
	default:
		return t.Debt
	}
}

// ForCategory colors a category by whether it can still change.
func (t Theme) ForCategory(flexible bool) lipgloss.Color {
	if flexible {
		return t.Flexible
	}
	return t.Locked
}

// Names lists the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}
