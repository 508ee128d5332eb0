package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/lifeshock/internal/cli"
	"github.com/theirongolddev/lifeshock/internal/scenario"
	"github.com/theirongolddev/lifeshock/internal/sim"

	"github.com/spf13/cobra"
)

var (
	flagCheckAdjust []string
	flagCheckJSON   bool
)

var checkCmd = &cobra.Command{
	Use:   "check category=option...",
	Short: "Play a run headlessly and show whether the budget survives the shock",
	Example: "  lifeshock check housing=fancy_condo transport=luxury_car lifestyle=fancy_life \\\n" +
		"      --adjust lifestyle=simple_life",
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringArrayVar(&flagCheckAdjust, "adjust", nil, "Emergency change as category=option (repeatable)")
	checkCmd.Flags().BoolVar(&flagCheckJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(checkCmd)
}

type choice struct {
	category string
	option   string
}

// parseChoices reads category=option pairs.
func parseChoices(args []string) ([]choice, error) {
	out := make([]choice, 0, len(args))
	for _, a := range args {
		cat, opt, ok := strings.Cut(a, "=")
		cat, opt = strings.TrimSpace(cat), strings.TrimSpace(opt)
		if !ok || cat == "" || opt == "" {
			return nil, fmt.Errorf("invalid choice %q (want category=option)", a)
		}
		out = append(out, choice{category: cat, option: opt})
	}
	return out, nil
}

// playHeadless drives an engine through a whole run without timers.
// Budget snapshots are taken just before the budget is confirmed.
func playHeadless(scn scenario.Scenario, budget, adjust []choice) (sim.Snapshot, sim.Result, error) {
	e := sim.New(scn)
	if err := e.Start(); err != nil {
		return sim.Snapshot{}, sim.Result{}, err
	}
	for _, c := range budget {
		if err := e.Select(c.category, c.option); err != nil {
			return sim.Snapshot{}, sim.Result{}, fmt.Errorf("%s=%s: %w", c.category, c.option, err)
		}
	}
	before := e.Snapshot()

	tok, err := e.ConfirmBudget()
	if err != nil {
		if errors.Is(err, sim.ErrIncomplete) {
			return before, sim.Result{}, fmt.Errorf("%w: choose an option in every category (%s)",
				err, strings.Join(scn.Catalog.IDs(), ", "))
		}
		return before, sim.Result{}, err
	}
	if _, ok := e.Reveal(tok); !ok {
		return before, sim.Result{}, errors.New("shock reveal was rejected")
	}

	for _, c := range adjust {
		if e.Phase() != sim.Adjusting {
			break
		}
		if err := e.Select(c.category, c.option); err != nil {
			return before, sim.Result{}, fmt.Errorf("adjust %s=%s: %w", c.category, c.option, err)
		}
	}
	if e.Phase() == sim.Adjusting {
		if err := e.Finish(); err != nil {
			return before, sim.Result{}, err
		}
	}

	res, _ := e.Result()
	return before, res, nil
}

func runCheck(_ *cobra.Command, args []string) error {
	scn, err := loadScenario()
	if err != nil {
		return err
	}
	budget, err := parseChoices(args)
	if err != nil {
		return err
	}
	adjust, err := parseChoices(flagCheckAdjust)
	if err != nil {
		return err
	}

	before, res, err := playHeadless(scn, budget, adjust)
	if err != nil {
		return err
	}

	if flagCheckJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	cur := scn.Rules.Currency
	fmt.Println()
	fmt.Println(cli.RenderTitle(scn.Name))
	fmt.Println()

	rows := make([][]string, 0, len(res.Lines)+4)
	for _, l := range res.Lines {
		planned, _ := scn.Catalog.Lookup(l.CategoryID, before.Selections[l.CategoryID])
		tag := "locked"
		if l.Flexible {
			tag = "flexible"
		}
		rows = append(rows, []string{
			l.CategoryTitle + " (" + tag + ")",
			planned.Label,
			l.Label,
			cli.FormatMoney(cur, l.Cost),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows,
		[]string{"Income", cli.FormatMoney(cur, before.Income), cli.FormatMoney(cur, res.FinalIncome), cli.FormatDelta(cur, res.FinalIncome, before.Income)},
		[]string{"Expenses", cli.FormatMoney(cur, before.Expenses), cli.FormatMoney(cur, res.Expenses), cli.FormatDelta(cur, res.Expenses, before.Expenses)},
		[]string{"Balance",
			cli.RenderBalance(before.Balance, cli.FormatMoney(cur, before.Balance)),
			cli.RenderBalance(res.Balance, cli.FormatMoney(cur, res.Balance)),
			cli.FormatDelta(cur, res.Balance, before.Balance)},
	)

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Before and After the Shock",
		Headers: []string{"Category", "Planned", "Final", "Cost"},
		Rows:    rows,
	}))
	fmt.Println()
	fmt.Printf("  Spend:   %s\n", cli.RenderBudgetBar(res.Expenses, res.FinalIncome, 30))
	fmt.Printf("  Locked:  %s of %s\n", cli.FormatMoney(cur, res.Fixed), cli.FormatMoney(cur, res.Expenses))
	fmt.Printf("  Verdict: %s\n", cli.RenderVerdict(res.Survived))
	if !res.Survived && res.Fixed > res.FinalIncome {
		fmt.Println(cli.RenderMuted("  Your locked-in costs alone exceed the new income. No lifestyle cut can fix that."))
	}
	fmt.Println()
	return nil
}
