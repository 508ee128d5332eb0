package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/lifeshock/internal/config"
	"github.com/theirongolddev/lifeshock/internal/logging"
	"github.com/theirongolddev/lifeshock/internal/scenario"
	"github.com/theirongolddev/lifeshock/internal/store"
)

var (
	flagScenario  string
	flagNoHistory bool
	flagQuiet     bool
	flagLogLevel  string
)

// cfg is loaded once per invocation by the root pre-run hook.
var cfg = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:   "lifeshock",
	Short: "Life Shock budget simulation",
	Long: "Build a monthly budget, survive a sudden pay cut, and learn why\n" +
		"inflexible burdens hurt more than flexible joys.",
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
	RunE:              runPlay,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagScenario, "scenario", "s", "", "Scenario YAML file (default: built-in Life Shock)")
	rootCmd.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "Do not record finished runs")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress informational output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// loadSettings reads .env, the config file and env overrides. Flags win.
func loadSettings(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	loaded, err := config.Load()
	if err != nil {
		// A broken config file should not keep the game from starting.
		fmt.Fprintf(os.Stderr, "  Warning: %v (using defaults)\n", err)
		loaded = config.DefaultConfig()
	}
	cfg = config.ApplyEnv(loaded)

	if flagScenario != "" {
		cfg.General.ScenarioFile = flagScenario
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagNoHistory {
		cfg.General.RecordHistory = false
	}
	return nil
}

// loadScenario resolves the active scenario.
func loadScenario() (scenario.Scenario, error) {
	return scenario.Resolve(cfg.General.ScenarioFile)
}

// openHistory opens the run store, or returns nil when recording is off.
func openHistory() (*store.History, error) {
	if !cfg.General.RecordHistory {
		return nil, nil
	}
	return store.Open(config.HistoryPath())
}

// newLogger builds the command logger. toFile sends output to the log
// file, for commands that own the terminal.
func newLogger(toFile bool) (*logrus.Logger, io.Closer, error) {
	path := cfg.Log.File
	if toFile && path == "" {
		path = config.DefaultLogPath()
	}
	return logging.New(cfg.Log.Level, path)
}

func infof(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Printf(format, args...)
}
