package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/lifeshock/internal/cli"

	"github.com/spf13/cobra"
)

var (
	flagHistoryLimit int
	flagClearYes     bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded runs",
	RunE:  runHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded runs",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of runs to show")
	historyClearCmd.Flags().BoolVar(&flagClearYes, "yes", false, "Confirm deletion")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	hist, err := openHistory()
	if err != nil {
		return err
	}
	if hist == nil {
		return errors.New("history recording is disabled")
	}
	defer func() { _ = hist.Close() }()

	recs, err := hist.Recent(flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("\n  No runs recorded yet. Play one with `lifeshock`.")
		fmt.Println()
		return nil
	}
	stats, err := hist.Stats()
	if err != nil {
		return err
	}

	// Amounts are labelled with the active scenario's currency.
	cur := ""
	if scn, err := loadScenario(); err == nil {
		cur = scn.Rules.Currency
	}

	rows := make([][]string, 0, len(recs))
	// oldest first so the sparkline reads left to right
	trend := make([]int64, len(recs))
	for i, r := range recs {
		player := r.Player
		if player == "" {
			player = "-"
		}
		rows = append(rows, []string{
			r.FinishedAt.Local().Format("2006-01-02 15:04"),
			player,
			string(r.Reason),
			cli.FormatMoney(cur, r.Fixed),
			cli.FormatMoney(cur, r.Flexible),
			cli.RenderBalance(r.Balance, cli.FormatMoney(cur, r.Balance)),
			cli.RenderVerdict(r.Survived),
		})
		trend[len(recs)-1-i] = r.Balance
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Recent Runs (%d)", len(recs)),
		Headers: []string{"Finished", "Player", "Ended", "Locked", "Flexible", "Balance", "Result"},
		Rows:    rows,
	}))
	fmt.Println()

	survival := 0.0
	if stats.Runs > 0 {
		survival = float64(stats.Survived) / float64(stats.Runs)
	}
	fmt.Printf("  Runs:        %s\n", cli.FormatNumber(int64(stats.Runs)))
	fmt.Printf("  Survived:    %s (%s)\n", cli.FormatNumber(int64(stats.Survived)), cli.FormatPercent(survival))
	fmt.Printf("  Best:        %s\n", cli.RenderBalance(stats.BestBalance, cli.FormatMoney(cur, stats.BestBalance)))
	fmt.Printf("  Average:     %s\n", cli.FormatMoney(cur, int64(stats.AvgBalance)))
	fmt.Printf("  Trend:       %s\n", cli.RenderSparkline(trend))
	fmt.Println()
	return nil
}

func runHistoryClear(_ *cobra.Command, _ []string) error {
	if !flagClearYes {
		return errors.New("refusing to delete history without --yes")
	}
	hist, err := openHistory()
	if err != nil {
		return err
	}
	if hist == nil {
		return errors.New("history recording is disabled")
	}
	defer func() { _ = hist.Close() }()

	if err := hist.Clear(); err != nil {
		return err
	}
	infof("  History cleared.\n")
	return nil
}
