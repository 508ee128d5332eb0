package cmd

import (
	"errors"
	"testing"

	"github.com/theirongolddev/lifeshock/internal/scenario"
	"github.com/theirongolddev/lifeshock/internal/sim"
)

func TestParseChoices(t *testing.T) {
	got, err := parseChoices([]string{"housing=basic_apt", " lifestyle = simple_life "})
	if err != nil {
		t.Fatalf("parseChoices: %v", err)
	}
	if len(got) != 2 || got[0] != (choice{"housing", "basic_apt"}) || got[1] != (choice{"lifestyle", "simple_life"}) {
		t.Fatalf("got %+v", got)
	}

	for _, bad := range []string{"housing", "=basic_apt", "housing="} {
		if _, err := parseChoices([]string{bad}); err == nil {
			t.Errorf("parseChoices(%q) succeeded, want error", bad)
		}
	}
}

func TestPlayHeadless(t *testing.T) {
	scn := scenario.Default()
	budget := []choice{
		{"housing", "fancy_condo"},
		{"transport", "luxury_car"},
		{"lifestyle", "fancy_life"},
	}

	before, res, err := playHeadless(scn, budget, []choice{{"lifestyle", "simple_life"}})
	if err != nil {
		t.Fatalf("playHeadless: %v", err)
	}
	if before.Balance != 2000 || before.Income != 10000 {
		t.Fatalf("before = %+v", before)
	}
	if res.FinalIncome != 5000 || res.Balance != -1500 || res.Survived || res.Reason != sim.ReasonFinished {
		t.Fatalf("result = %+v", res)
	}
	if res.Fixed != 6000 || res.Flexible != 500 {
		t.Fatalf("fixed/flexible = %d/%d", res.Fixed, res.Flexible)
	}
}

func TestPlayHeadlessRejectsLockedAdjustment(t *testing.T) {
	budget := []choice{
		{"housing", "basic_apt"},
		{"transport", "used_car"},
		{"lifestyle", "simple_life"},
	}
	_, _, err := playHeadless(scenario.Default(), budget, []choice{{"housing", "fancy_condo"}})
	if !errors.Is(err, sim.ErrLocked) {
		t.Fatalf("err = %v, want ErrLocked", err)
	}
}

func TestPlayHeadlessIncompleteBudget(t *testing.T) {
	_, _, err := playHeadless(scenario.Default(), []choice{{"housing", "basic_apt"}}, nil)
	if !errors.Is(err, sim.ErrIncomplete) {
		t.Fatalf("err = %v, want ErrIncomplete", err)
	}
}
