package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/lifeshock/internal/cli"
	"github.com/theirongolddev/lifeshock/internal/scenario"

	"github.com/spf13/cobra"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Show the active scenario catalog",
	RunE:  runScenarioShow,
}

var scenarioExportCmd = &cobra.Command{
	Use:   "export <file|->",
	Short: "Write the active scenario as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenarioExport,
}

var scenarioValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a scenario file for errors",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenarioValidate,
}

func init() {
	scenarioCmd.AddCommand(scenarioExportCmd)
	scenarioCmd.AddCommand(scenarioValidateCmd)
	rootCmd.AddCommand(scenarioCmd)
}

func runScenarioShow(_ *cobra.Command, _ []string) error {
	scn, err := loadScenario()
	if err != nil {
		return err
	}
	printScenario(scn)
	return nil
}

func printScenario(scn scenario.Scenario) {
	r := scn.Rules
	fmt.Println()
	fmt.Println(cli.RenderTitle(scn.Name))
	fmt.Println()
	fmt.Printf("  Income:     %s, dropping to %s after the shock\n",
		cli.FormatMoney(r.Currency, r.BaselineIncome), cli.FormatMoney(r.Currency, r.ShockIncome))
	fmt.Printf("  Reveal:     %s\n", cli.FormatDuration(int64(r.RevealDelay.Seconds())))
	fmt.Printf("  Countdown:  %s\n", cli.FormatCountdown(r.AdjustSeconds()))
	fmt.Println()

	var rows [][]string
	for i, cat := range scn.Catalog.Categories {
		if i > 0 {
			rows = append(rows, []string{"---"})
		}
		kind := "locked"
		if cat.Flexible {
			kind = "flexible"
		}
		for j, opt := range cat.Options {
			name := ""
			if j == 0 {
				name = cat.Title + " (" + kind + ")"
			}
			rows = append(rows, []string{name, opt.ID, opt.Label, cli.FormatMoney(r.Currency, opt.Cost)})
		}
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Catalog",
		Headers: []string{"Category", "ID", "Option", "Monthly"},
		Rows:    rows,
	}))
	fmt.Println()
}

func runScenarioExport(_ *cobra.Command, args []string) error {
	scn, err := loadScenario()
	if err != nil {
		return err
	}
	if args[0] == "-" {
		data, err := scenario.Marshal(scn)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := scenario.WriteFile(args[0], scn); err != nil {
		return err
	}
	infof("  Wrote %s\n", args[0])
	return nil
}

func runScenarioValidate(_ *cobra.Command, args []string) error {
	scn, err := scenario.Load(args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	if len(scn.Catalog.Categories) == 0 {
		return errors.New("scenario has no categories")
	}
	fmt.Printf("  %s: ok (%q, %d categories)\n", args[0], scn.Name, len(scn.Catalog.Categories))
	return nil
}
