// Package tui provides the interactive Bubble Tea game for lifeshock.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/lifeshock/internal/logging"
	"github.com/theirongolddev/lifeshock/internal/scenario"
	"github.com/theirongolddev/lifeshock/internal/sim"
	"github.com/theirongolddev/lifeshock/internal/store"
	"github.com/theirongolddev/lifeshock/internal/tui/components"
	"github.com/theirongolddev/lifeshock/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// History is the run store used by the game. A nil History disables
// recording.
type History interface {
	SaveRun(r sim.Result, player string) (string, error)
	Recent(limit int) ([]store.Record, error)
}

// revealMsg fires when the shock reveal delay elapses.
type revealMsg struct{ tok sim.Token }

// tickMsg fires once per countdown second.
type tickMsg struct{ tok sim.Token }

// flashClearMsg hides the status message it was scheduled for.
type flashClearMsg struct{ seq int }

// savedMsg reports the outcome of recording a finished run. run is the
// engine run it belongs to; results of an earlier run are dropped.
type savedMsg struct {
	run       uint64
	id        string
	err       error
	recent    []store.Record
	recentErr error
}

// Options configures a new App.
type Options struct {
	Scenario  scenario.Scenario
	History   History
	Player    string
	Log       logrus.FieldLogger
	NeedSetup bool
}

// App is the root Bubble Tea model.
type App struct {
	engine  *sim.Engine
	history History
	player  string
	log     logrus.FieldLogger

	// UI state
	width    int
	height   int
	showHelp bool
	catIdx   int // focused category
	optIdx   int // option cursor within the focused category

	flash     string
	flashWarn bool
	flashSeq  int

	spinner spinner.Model

	// Finished run
	result  *sim.Result
	savedID string
	saveErr error
	recent  []store.Record

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool
}

const (
	minTerminalWidth = 60
	maxContentWidth  = 140
	minContentHeight = 5

	flashDuration = 3 * time.Second
	recentRuns    = 12
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	if opts.Log == nil {
		opts.Log = logging.Discard()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Pulse
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Shock).Background(theme.Active.Surface)

	engine := sim.New(opts.Scenario)
	engine.Observe(logging.Transitions(opts.Log))

	a := App{
		engine:    engine,
		history:   opts.History,
		player:    opts.Player,
		log:       opts.Log,
		spinner:   sp,
		needSetup: opts.NeedSetup,
	}
	if a.needSetup {
		vals := defaultSetupValues(opts.Player)
		a.setupVals = &vals
		a.setupForm = newSetupForm(a.setupVals)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnableMouseCellMotion}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
}

// Engine exposes the underlying state machine (read-only use).
func (a App) Engine() *sim.Engine { return a.engine }

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if a.showHelp || a.setupForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.moveCategory(-1)
		case tea.MouseButtonWheelDown:
			a.moveCategory(1)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// First-run setup wizard intercepts all keys
		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		return a.updateKey(msg.String())

	case revealMsg:
		next, ok := a.engine.Reveal(msg.tok)
		if !ok {
			return a, nil
		}
		a.focusFlexible()
		if next.IsZero() {
			cmd := a.finished()
			return a, cmd
		}
		return a, tickCmd(next)

	case tickMsg:
		next, ok := a.engine.Tick(msg.tok)
		if !ok {
			return a, nil
		}
		if next.IsZero() {
			a.setFlash("Time's up!", true)
			cmd := a.finished()
			return a, tea.Batch(cmd, a.clearFlashCmd())
		}
		return a, tickCmd(next)

	case spinner.TickMsg:
		if a.engine.Phase() != sim.ShockReveal {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case flashClearMsg:
		if msg.seq == a.flashSeq {
			a.flash = ""
			a.flashWarn = false
		}
		return a, nil

	case savedMsg:
		if msg.run != a.engine.Run() {
			return a, nil
		}
		a.savedID = msg.id
		a.saveErr = msg.err
		if msg.err != nil {
			a.log.WithError(msg.err).Warn("saving run failed")
		}
		if msg.recentErr != nil {
			a.log.WithError(msg.recentErr).Warn("loading recent runs failed")
		} else if msg.err == nil {
			a.recent = msg.recent
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	return a, nil
}

func (a App) updateKey(key string) (tea.Model, tea.Cmd) {
	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q", "esc":
		return a, tea.Quit
	case "ctrl+r":
		return a.reset()
	}

	switch a.engine.Phase() {
	case sim.Intro:
		switch key {
		case "enter", " ", "s":
			if err := a.engine.Start(); err != nil {
				return a.reject(err)
			}
			a.catIdx, a.optIdx = 0, 0
		}

	case sim.Budgeting, sim.Adjusting:
		return a.updatePlaying(key)

	case sim.Results:
		switch key {
		case "r", "enter":
			return a.reset()
		}
	}

	return a, nil
}

// updatePlaying handles keys while options can be chosen.
func (a App) updatePlaying(key string) (tea.Model, tea.Cmd) {
	cats := a.engine.Scenario().Catalog.Categories

	switch key {
	case "up", "k", "shift+tab":
		a.moveCategory(-1)
	case "down", "j", "tab":
		a.moveCategory(1)
	case "left", "h":
		if a.optIdx > 0 {
			a.optIdx--
		}
	case "right", "l":
		if a.optIdx < len(cats[a.catIdx].Options)-1 {
			a.optIdx++
		}
	case "enter", " ":
		return a.choose(a.optIdx)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return a.choose(int(key[0] - '1'))
	case "c":
		if a.engine.Phase() != sim.Budgeting {
			return a, nil
		}
		tok, err := a.engine.ConfirmBudget()
		if err != nil {
			return a.reject(err)
		}
		return a, tea.Batch(
			revealCmd(tok, a.engine.Scenario().Rules.RevealDelay),
			a.spinner.Tick,
		)
	case "f":
		if a.engine.Phase() != sim.Adjusting {
			return a, nil
		}
		if err := a.engine.Finish(); err != nil {
			return a.reject(err)
		}
		cmd := a.finished()
		return a, cmd
	}
	return a, nil
}

// choose selects option i of the focused category.
func (a App) choose(i int) (tea.Model, tea.Cmd) {
	cat := a.engine.Scenario().Catalog.Categories[a.catIdx]
	if i < 0 || i >= len(cat.Options) {
		return a, nil
	}
	a.optIdx = i
	if err := a.engine.Select(cat.ID, cat.Options[i].ID); err != nil {
		return a.reject(err)
	}
	return a, nil
}

func (a App) reset() (tea.Model, tea.Cmd) {
	a.engine.Reset()
	a.catIdx, a.optIdx = 0, 0
	a.result = nil
	a.savedID = ""
	a.saveErr = nil
	a.flash = ""
	return a, nil
}

// reject shows why an action was refused. State is unchanged.
func (a App) reject(err error) (tea.Model, tea.Cmd) {
	a.setFlash(rejectMessage(a.engine, a.catIdx, err), true)
	return a, a.clearFlashCmd()
}

func rejectMessage(e *sim.Engine, catIdx int, err error) string {
	switch {
	case errors.Is(err, sim.ErrLocked):
		cat := e.Scenario().Catalog.Categories[catIdx]
		return fmt.Sprintf("%s is locked: you signed a contract", cat.Title)
	case errors.Is(err, sim.ErrIncomplete):
		return "Choose an option in every category first"
	default:
		return capitalize(err.Error())
	}
}

func (a *App) setFlash(s string, warn bool) {
	a.flashSeq++
	a.flash = s
	a.flashWarn = warn
}

func (a App) clearFlashCmd() tea.Cmd {
	seq := a.flashSeq
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashClearMsg{seq: seq}
	})
}

// moveCategory shifts the category focus and puts the option cursor on the
// current choice.
func (a *App) moveCategory(delta int) {
	cats := a.engine.Scenario().Catalog.Categories
	if len(cats) == 0 {
		return
	}
	a.catIdx = (a.catIdx + delta + len(cats)) % len(cats)
	a.optIdx = selectedIndex(cats[a.catIdx], a.engine.Selection(cats[a.catIdx].ID))
}

// focusFlexible moves focus to the first category still open for changes.
func (a *App) focusFlexible() {
	for i, cat := range a.engine.Scenario().Catalog.Categories {
		if cat.Flexible {
			a.catIdx = i
			a.optIdx = selectedIndex(cat, a.engine.Selection(cat.ID))
			return
		}
	}
}

func selectedIndex(cat scenario.Category, optionID string) int {
	for i, o := range cat.Options {
		if o.ID == optionID {
			return i
		}
	}
	return 0
}

// finished captures the result and records it in the background.
func (a *App) finished() tea.Cmd {
	r, ok := a.engine.Result()
	if !ok {
		return nil
	}
	a.result = &r
	if a.history == nil {
		return nil
	}
	return recordCmd(a.history, r, a.player)
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.needSetup = false
		a.setupForm = nil
		if err := a.saveSetupConfig(); err != nil {
			a.setFlash("Could not save config: "+err.Error(), true)
			return a, a.clearFlashCmd()
		}
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}

	return a, cmd
}

func revealCmd(tok sim.Token, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return revealMsg{tok: tok}
	})
}

func tickCmd(tok sim.Token) tea.Cmd {
	return tea.Tick(sim.TickInterval, func(time.Time) tea.Msg {
		return tickMsg{tok: tok}
	})
}

// recordCmd saves a finished run off the event loop.
func recordCmd(h History, r sim.Result, player string) tea.Cmd {
	return func() tea.Msg {
		id, err := h.SaveRun(r, player)
		if err != nil {
			return savedMsg{run: r.Run, err: err}
		}
		recent, recentErr := h.Recent(recentRuns)
		return savedMsg{run: r.Run, id: id, recent: recent, recentErr: recentErr}
	}
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  lifeshock needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Key).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		title    string
		bindings []components.KeyHint
	}{
		{"Budgeting", []components.KeyHint{
			{Key: "j k / tab", Desc: "Move between categories"},
			{Key: "h l", Desc: "Move between options"},
			{Key: "Enter 1-9", Desc: "Choose option"},
			{Key: "c", Desc: "Confirm budget"},
		}},
		{"Adjusting", []components.KeyHint{
			{Key: "Enter 1-9", Desc: "Change a flexible category"},
			{Key: "f", Desc: "Finish adjusting"},
		}},
		{"General", []components.KeyHint{
			{Key: "r", Desc: "Play again (results)"},
			{Key: "^r", Desc: "Restart at any time"},
			{Key: "?", Desc: "Toggle help"},
			{Key: "q", Desc: "Quit"},
		}},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.Key)),
				descStyle.Render(bind.Desc))
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height
	phase := a.engine.Phase()

	// 1. Header: phase bar + money bar (hidden on the intro and reveal screens)
	header := components.RenderPhaseBar(phase, w)
	if phase != sim.Intro && phase != sim.ShockReveal {
		header += "\n" + lipgloss.PlaceHorizontal(w, lipgloss.Center, a.renderMoneyBar(cw),
			lipgloss.WithWhitespaceBackground(t.Background))
	}

	// 2. Status bar
	statusBar := components.RenderStatusBar(w, a.keyHints(), a.flash, a.flashWarn)

	// 3. Content zone height
	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	// 4. Phase content
	var content string
	switch phase {
	case sim.Intro:
		content = a.renderIntro(cw, contentH)
	case sim.Budgeting, sim.Adjusting:
		content = a.renderBudget(cw)
	case sim.ShockReveal:
		content = a.renderReveal(cw, contentH)
	case sim.Results:
		content = a.renderResults(cw)
	}

	// 5. Truncate + pad to exactly contentH lines
	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) keyHints() []components.KeyHint {
	switch a.engine.Phase() {
	case sim.Intro:
		return []components.KeyHint{{Key: "enter", Desc: "start"}, {Key: "?", Desc: "help"}, {Key: "q", Desc: "uit"}}
	case sim.Budgeting:
		return []components.KeyHint{{Key: "j/k", Desc: "category"}, {Key: "enter", Desc: "choose"}, {Key: "c", Desc: "onfirm"}, {Key: "?", Desc: "help"}}
	case sim.Adjusting:
		return []components.KeyHint{{Key: "j/k", Desc: "category"}, {Key: "enter", Desc: "choose"}, {Key: "f", Desc: "inish"}, {Key: "?", Desc: "help"}}
	case sim.Results:
		return []components.KeyHint{{Key: "r", Desc: "play again"}, {Key: "q", Desc: "uit"}}
	default:
		return []components.KeyHint{{Key: "q", Desc: "uit"}}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
