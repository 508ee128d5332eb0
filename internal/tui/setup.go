package tui

import (
	"strings"

	"github.com/theirongolddev/lifeshock/internal/config"
	"github.com/theirongolddev/lifeshock/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// setupValues holds the answers of the first-run form.
type setupValues struct {
	player string
	theme  string
	record bool
}

func defaultSetupValues(player string) setupValues {
	return setupValues{
		player: player,
		theme:  theme.Active.Name,
		record: true,
	}
}

// newSetupForm builds the first-run wizard. Answers are written into vals.
func newSetupForm(vals *setupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, th := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(th.Name, th.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to Life Shock").
				Description("You just landed a job paying well. Build a lifestyle,\nthen see how it holds up when life happens."),
			huh.NewInput().
				Title("Player name").
				Description("Shown next to your runs in the history. Optional.").
				CharLimit(40).
				Value(&vals.player),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.theme),
			huh.NewConfirm().
				Title("Keep a history of your runs?").
				Affirmative("Yes").
				Negative("No").
				Value(&vals.record),
		),
	).WithShowHelp(true)
}

// applySetup copies the form answers onto cfg.
func applySetup(cfg config.Config, vals setupValues) config.Config {
	cfg.General.Player = strings.TrimSpace(vals.player)
	cfg.General.RecordHistory = vals.record
	cfg.Appearance.Theme = vals.theme
	return cfg
}

// saveSetupConfig applies and persists the form answers.
func (a *App) saveSetupConfig() error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	cfg = applySetup(cfg, *a.setupVals)

	a.player = cfg.General.Player
	if !cfg.General.RecordHistory {
		a.history = nil
	}
	theme.SetActive(cfg.Appearance.Theme)

	return config.Save(cfg)
}

// RunSetup runs the setup form outside the game, starting from cfg.
// The returned config is not saved.
func RunSetup(cfg config.Config) (config.Config, error) {
	vals := defaultSetupValues(cfg.General.Player)
	vals.theme = theme.ByName(cfg.Appearance.Theme).Name
	vals.record = cfg.General.RecordHistory

	if err := newSetupForm(&vals).Run(); err != nil {
		return cfg, err
	}
	return applySetup(cfg, vals), nil
}
