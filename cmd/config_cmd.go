// Package cmd implements the lifeshock CLI commands.
package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/lifeshock/internal/config"
	"github.com/theirongolddev/lifeshock/internal/tui/theme"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	if cfg.General.ScenarioFile != "" {
		fmt.Printf("    Scenario file:  %s\n", cfg.General.ScenarioFile)
	} else {
		fmt.Println("    Scenario file:  built-in")
	}
	if cfg.General.Player != "" {
		fmt.Printf("    Player:         %s\n", cfg.General.Player)
	}
	fmt.Printf("    Record history: %v\n", cfg.General.RecordHistory)
	if cfg.General.RecordHistory {
		fmt.Printf("    History file:   %s\n", config.HistoryPath())
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Printf("    Available: %s\n", strings.Join(theme.Names(), ", "))
	fmt.Println()

	fmt.Println("  [Serve]")
	fmt.Printf("    Address:       %s\n", cfg.Serve.Addr)
	fmt.Printf("    Events buffer: %d\n", cfg.Serve.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level: %s\n", cfg.Log.Level)
	if cfg.Log.File != "" {
		fmt.Printf("    File:  %s\n", cfg.Log.File)
	} else {
		fmt.Printf("    File:  stderr (TUI: %s)\n", config.DefaultLogPath())
	}
	fmt.Println()

	fmt.Printf("  Environment overrides: %s, %s, %s\n", config.EnvScenario, config.EnvLogLevel, config.EnvAddr)
	fmt.Println("  Run `lifeshock setup` to reconfigure.")
	return nil
}
