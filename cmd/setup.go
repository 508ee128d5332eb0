package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/lifeshock/internal/config"
	"github.com/theirongolddev/lifeshock/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Start from the file, not the flag/env overlay, so overrides are not persisted.
	current, err := config.Load()
	if err != nil {
		current = config.DefaultConfig()
	}

	updated, err := tui.RunSetup(current)
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return err
	}

	if err := config.Save(updated); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `lifeshock setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
