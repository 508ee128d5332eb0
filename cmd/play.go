package cmd

import (
	"fmt"

	"github.com/theirongolddev/lifeshock/internal/config"
	"github.com/theirongolddev/lifeshock/internal/tui"
	"github.com/theirongolddev/lifeshock/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the game in the terminal (default command)",
	RunE:  runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(_ *cobra.Command, _ []string) error {
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	scn, err := loadScenario()
	if err != nil {
		return err
	}

	log, closer, err := newLogger(true)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	opts := tui.Options{
		Scenario:  scn,
		Player:    cfg.General.Player,
		Log:       log,
		NeedSetup: !config.Exists(),
	}

	hist, err := openHistory()
	if err != nil {
		log.WithError(err).Warn("history unavailable, runs will not be recorded")
	} else if hist != nil {
		defer func() { _ = hist.Close() }()
		opts.History = hist
	}

	log.WithField("scenario", scn.Name).Info("game started")

	p := tea.NewProgram(tui.NewApp(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
