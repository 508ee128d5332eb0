package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/lifeshock/internal/scenario"
	"github.com/theirongolddev/lifeshock/internal/sim"
	"github.com/theirongolddev/lifeshock/internal/store"
)

type fakeHistory struct {
	saved     []sim.Result
	recentErr error
}

func (h *fakeHistory) SaveRun(r sim.Result, _ string) (string, error) {
	h.saved = append(h.saved, r)
	return fmt.Sprintf("run-%d", r.Run), nil
}

func (h *fakeHistory) Recent(int) ([]store.Record, error) {
	if h.recentErr != nil {
		return nil, h.recentErr
	}
	out := make([]store.Record, len(h.saved))
	for i, r := range h.saved {
		out[i] = store.Record{Result: r}
	}
	return out, nil
}

func newTestApp(h History) App {
	a := NewApp(Options{Scenario: scenario.Default(), History: h})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 50})
	return m.(App)
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

func press(t *testing.T, a App, keys ...string) (App, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var m tea.Model
		m, cmd = a.Update(keyMsg(k))
		a = m.(App)
	}
	return a, cmd
}

func send(a App, msg tea.Msg) (App, tea.Cmd) {
	m, cmd := a.Update(msg)
	return m.(App), cmd
}

// budgetAndConfirm picks the first option everywhere and confirms.
func budgetAndConfirm(t *testing.T, a App) App {
	t.Helper()
	a, _ = press(t, a, "enter", "1", "j", "1", "j", "1")
	if !a.engine.Complete() {
		t.Fatalf("budget incomplete: %v", a.engine.Snapshot().Selections)
	}
	a, cmd := press(t, a, "c")
	if cmd == nil {
		t.Fatal("confirm returned no command")
	}
	if a.engine.Phase() != sim.ShockReveal {
		t.Fatalf("phase = %s, want shock_reveal", a.engine.Phase())
	}
	return a
}

func TestStartAndBudget(t *testing.T) {
	a := newTestApp(nil)
	if a.engine.Phase() != sim.Intro {
		t.Fatalf("initial phase = %s", a.engine.Phase())
	}
	if !strings.Contains(a.View(), "Life Shock") {
		t.Fatal("intro view missing title")
	}

	a, _ = press(t, a, "enter")
	if a.engine.Phase() != sim.Budgeting {
		t.Fatalf("phase = %s, want budgeting", a.engine.Phase())
	}

	a, _ = press(t, a, "c")
	if a.engine.Phase() != sim.Budgeting || !strings.Contains(a.flash, "every category") {
		t.Fatalf("incomplete confirm: phase=%s flash=%q", a.engine.Phase(), a.flash)
	}

	a, _ = press(t, a, "1", "j", "l", "enter")
	if got := a.engine.Selection("housing"); got != "fancy_condo" {
		t.Errorf("housing = %q", got)
	}
	if got := a.engine.Selection("transport"); got != "used_car" {
		t.Errorf("transport = %q", got)
	}
	if !strings.Contains(a.View(), "Design Your Lifestyle") {
		t.Error("budget view missing heading")
	}
}

func TestShockRevealAndLockedCategories(t *testing.T) {
	a := budgetAndConfirm(t, newTestApp(nil))

	// Keys other than quit/help do nothing during the reveal.
	a, _ = press(t, a, "1", "f")
	if a.engine.Phase() != sim.ShockReveal {
		t.Fatalf("phase moved during reveal: %s", a.engine.Phase())
	}

	a, cmd := send(a, revealMsg{tok: a.engine.Pending()})
	if cmd == nil {
		t.Fatal("reveal scheduled no tick")
	}
	if a.engine.Phase() != sim.Adjusting || a.engine.Income() != 5000 || a.engine.SecondsLeft() != 30 {
		t.Fatalf("after reveal: %+v", a.engine.Snapshot())
	}
	if a.catIdx != 2 {
		t.Fatalf("focus = %d, want the flexible lifestyle category", a.catIdx)
	}

	a, _ = press(t, a, "2")
	if got := a.engine.Totals().Balance; got != -1500 {
		t.Fatalf("balance = %d, want -1500", got)
	}

	a, _ = press(t, a, "j", "2") // wraps to housing
	if got := a.engine.Selection("housing"); got != "fancy_condo" {
		t.Fatalf("locked housing changed to %q", got)
	}
	if !strings.Contains(a.flash, "locked") {
		t.Fatalf("flash = %q, want a locked message", a.flash)
	}
	if !strings.Contains(a.View(), "Locked") {
		t.Error("adjusting view missing Locked badge")
	}
}

func TestCountdownReachesResults(t *testing.T) {
	h := &fakeHistory{}
	a := budgetAndConfirm(t, newTestApp(h))
	a, _ = send(a, revealMsg{tok: a.engine.Pending()})

	var cmd tea.Cmd
	for i := 0; i < 30; i++ {
		a, cmd = send(a, tickMsg{tok: a.engine.Pending()})
	}
	if a.engine.Phase() != sim.Results || a.engine.SecondsLeft() != 0 {
		t.Fatalf("after 30 ticks: %+v", a.engine.Snapshot())
	}
	if a.result == nil || a.result.Reason != sim.ReasonTimeout {
		t.Fatalf("result = %+v", a.result)
	}
	if cmd == nil {
		t.Fatal("final tick returned no command")
	}

	// A late tick after the run ended is ignored.
	a, cmd = send(a, tickMsg{tok: sim.Token{Run: a.engine.Run(), Seq: 99}})
	if cmd != nil || a.engine.Phase() != sim.Results {
		t.Fatal("stale tick was applied")
	}
}

func TestFinishRecordsRunAndReset(t *testing.T) {
	h := &fakeHistory{}
	a := budgetAndConfirm(t, newTestApp(h))
	a, _ = send(a, revealMsg{tok: a.engine.Pending()})
	pending := a.engine.Pending()

	a, cmd := press(t, a, "f")
	if a.engine.Phase() != sim.Results || a.result == nil {
		t.Fatalf("finish: %+v", a.engine.Snapshot())
	}
	if cmd == nil {
		t.Fatal("finish returned no record command")
	}
	a, _ = send(a, cmd())
	if a.savedID != "run-1" || len(h.saved) != 1 || len(a.recent) != 1 {
		t.Fatalf("saved id = %q, saved = %d", a.savedID, len(h.saved))
	}
	if h.saved[0].Reason != sim.ReasonFinished || h.saved[0].SecondsLeft != 30 {
		t.Fatalf("saved = %+v", h.saved[0])
	}
	if !strings.Contains(a.View(), "Final Breakdown") {
		t.Error("results view missing breakdown")
	}

	// The tick that was pending at finish time is stale.
	a, _ = send(a, tickMsg{tok: pending})
	if a.engine.SecondsLeft() != 30 {
		t.Fatal("tick after finish moved the countdown")
	}

	a, _ = press(t, a, "r")
	if a.engine.Phase() != sim.Intro || a.result != nil || a.engine.Income() != 10000 {
		t.Fatalf("after reset: %+v", a.engine.Snapshot())
	}
}

func TestResetDuringRevealDropsPendingReveal(t *testing.T) {
	a := budgetAndConfirm(t, newTestApp(nil))
	tok := a.engine.Pending()

	a, _ = press(t, a, "ctrl+r")
	a, cmd := send(a, revealMsg{tok: tok})
	if cmd != nil || a.engine.Phase() != sim.Intro || a.engine.Income() != 10000 {
		t.Fatalf("stale reveal applied: %+v", a.engine.Snapshot())
	}
}

func TestFlashClearsOnlyMatchingSeq(t *testing.T) {
	a := newTestApp(nil)
	a.setFlash("first", true)
	old := a.flashSeq
	a.setFlash("second", true)

	a, _ = send(a, flashClearMsg{seq: old})
	if a.flash != "second" {
		t.Fatalf("old clear removed newer flash: %q", a.flash)
	}
	a, _ = send(a, flashClearMsg{seq: a.flashSeq})
	if a.flash != "" {
		t.Fatalf("flash = %q, want cleared", a.flash)
	}
}

func TestHelpToggle(t *testing.T) {
	a := newTestApp(nil)
	a, _ = press(t, a, "?")
	if !a.showHelp || !strings.Contains(a.View(), "Keyboard Shortcuts") {
		t.Fatal("help did not open")
	}
	a, _ = press(t, a, "enter")
	if a.showHelp || a.engine.Phase() != sim.Intro {
		t.Fatal("closing help should not start the game")
	}
}

func TestCategoryList(t *testing.T) {
	cats := scenario.Default().Catalog.Categories
	if got := categoryList(cats); got != "housing, transportation and lifestyle & food" {
		t.Fatalf("categoryList = %q", got)
	}
}

// finishRun plays a run to Results and returns the pending record command.
func finishRun(t *testing.T, a App) (App, tea.Cmd) {
	t.Helper()
	a = budgetAndConfirm(t, a)
	a, _ = send(a, revealMsg{tok: a.engine.Pending()})
	a, cmd := press(t, a, "f")
	if a.engine.Phase() != sim.Results || cmd == nil {
		t.Fatalf("finish: phase %s, cmd %v", a.engine.Phase(), cmd)
	}
	return a, cmd
}

func TestLateSaveFromEarlierRunIgnored(t *testing.T) {
	h := &fakeHistory{}
	a, first := finishRun(t, newTestApp(h))
	a, _ = press(t, a, "r")

	a, second := finishRun(t, a)
	a, _ = send(a, first())
	if a.savedID != "" || a.saveErr != nil {
		t.Fatalf("run 1 save leaked into run 2: id=%q err=%v", a.savedID, a.saveErr)
	}

	a, _ = send(a, second())
	if a.savedID != "run-2" {
		t.Fatalf("saved id = %q, want run-2", a.savedID)
	}
}

func TestRecentRunsErrorKeepsSaveResult(t *testing.T) {
	h := &fakeHistory{recentErr: errors.New("disk gone")}
	a, cmd := finishRun(t, newTestApp(h))

	msg, ok := cmd().(savedMsg)
	if !ok || !errors.Is(msg.recentErr, h.recentErr) {
		t.Fatalf("saved msg = %+v", msg)
	}
	a, _ = send(a, msg)
	if a.savedID != "run-1" || a.saveErr != nil || a.recent != nil {
		t.Fatalf("id=%q err=%v recent=%v", a.savedID, a.saveErr, a.recent)
	}
}
