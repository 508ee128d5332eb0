package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/lifeshock/internal/sim"
)

func openTest(t *testing.T) *History {
	t.Helper()
	h, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func sampleResult(balance int64, finished time.Time) sim.Result {
	return sim.Result{
		Scenario:       "Life Shock",
		Run:            1,
		StartedAt:      finished.Add(-time.Minute),
		FinishedAt:     finished,
		BaselineIncome: 10000,
		FinalIncome:    5000,
		Totals: sim.Totals{
			Expenses: 5000 - balance,
			Balance:  balance,
			Fixed:    4300,
			Flexible: 500 - balance,
		},
		Survived:    balance >= 0,
		Reason:      sim.ReasonFinished,
		SecondsLeft: 12,
		Lines: []sim.Line{
			{CategoryID: "housing", CategoryTitle: "Housing", OptionID: "fancy_condo", Label: "Fancy Condo", Cost: 3500},
			{CategoryID: "transport", CategoryTitle: "Transport", OptionID: "used_car", Label: "Used Car / Transit", Cost: 800},
			{CategoryID: "lifestyle", CategoryTitle: "Lifestyle", OptionID: "simple_life", Label: "Simple Life", Cost: 500, Flexible: true},
		},
	}
}

func TestSaveRunAndRecent(t *testing.T) {
	h := openTest(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := h.SaveRun(sampleResult(0, now), "sam")
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if id == "" {
		t.Fatal("SaveRun returned an empty id")
	}

	recs, err := h.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	got := recs[0]
	if got.ID != id || got.Player != "sam" || !got.Survived || got.Reason != sim.ReasonFinished {
		t.Errorf("unexpected record: %+v", got)
	}
	if !got.FinishedAt.Equal(now) || !got.StartedAt.Equal(now.Add(-time.Minute)) {
		t.Errorf("times = %v / %v", got.StartedAt, got.FinishedAt)
	}
	if len(got.Lines) != 3 || got.Lines[0].CategoryID != "housing" || !got.Lines[2].Flexible {
		t.Errorf("lines = %+v", got.Lines)
	}
}

func TestRecentOrderAndLimit(t *testing.T) {
	h := openTest(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if _, err := h.SaveRun(sampleResult(int64(i*100), base.Add(time.Duration(i)*time.Hour)), ""); err != nil {
			t.Fatalf("SaveRun %d: %v", i, err)
		}
	}

	recs, err := h.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Balance != 200 || recs[1].Balance != 100 {
		t.Errorf("order = %d, %d; want newest first", recs[0].Balance, recs[1].Balance)
	}
	for _, r := range recs {
		if len(r.Lines) != 3 {
			t.Errorf("run %s has %d lines, want 3", r.ID, len(r.Lines))
		}
	}

	// Only the selections of the returned runs are read.
	lines, err := recentLines(h.db, 2)
	if err != nil {
		t.Fatalf("recentLines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("loaded lines for %d runs, want 2", len(lines))
	}
	for _, r := range recs {
		if _, ok := lines[r.ID]; !ok {
			t.Errorf("missing lines for run %s", r.ID)
		}
	}
}

func TestStats(t *testing.T) {
	h := openTest(t)

	st, err := h.Stats()
	if err != nil {
		t.Fatalf("Stats on empty db: %v", err)
	}
	if st.Runs != 0 {
		t.Fatalf("empty runs = %d", st.Runs)
	}

	now := time.Now()
	for _, b := range []int64{-1500, 0, 500} {
		if _, err := h.SaveRun(sampleResult(b, now), ""); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}

	st, err = h.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Runs != 3 || st.Survived != 2 || st.BestBalance != 500 {
		t.Errorf("stats = %+v", st)
	}
	if st.AvgBalance > -333 || st.AvgBalance < -334 {
		t.Errorf("avg = %f, want about -333.3", st.AvgBalance)
	}
}

func TestDeleteAndClear(t *testing.T) {
	h := openTest(t)
	now := time.Now()

	id, _ := h.SaveRun(sampleResult(0, now), "")
	_, _ = h.SaveRun(sampleResult(100, now), "")

	if err := h.DeleteRun(id); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	recs, _ := h.Recent(10)
	if len(recs) != 1 {
		t.Fatalf("after delete got %d records", len(recs))
	}

	if err := h.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	recs, _ = h.Recent(10)
	if len(recs) != 0 {
		t.Fatalf("after clear got %d records", len(recs))
	}
}
