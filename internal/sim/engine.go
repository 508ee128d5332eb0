package sim

import (
	"errors"
	"time"

	"github.com/theirongolddev/lifeshock/internal/scenario"
)

// Rejections returned by the mutation API. None of them change state.
var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownOption   = errors.New("option does not belong to category")
	ErrLocked          = errors.New("category is locked during adjustment")
	ErrPhase           = errors.New("action not allowed in current phase")
	ErrIncomplete      = errors.New("budget is incomplete")
	ErrClosed          = errors.New("session closed")
)

// Token identifies one armed timer. Timer callbacks hand their token back to
// the engine, which applies them only while the token is still pending.
type Token struct {
	Run uint64 `json:"run"`
	Seq uint64 `json:"seq"`
}

// IsZero reports whether t is the empty token.
func (t Token) IsZero() bool {
	return t.Seq == 0
}

// Transition describes one phase change.
type Transition struct {
	Run    uint64    `json:"run"`
	From   Phase     `json:"from"`
	To     Phase     `json:"to"`
	Reason Reason    `json:"reason"`
	At     time.Time `json:"at"`
}

// Snapshot is the read model handed to presentation layers. Totals are
// recomputed on every call.
type Snapshot struct {
	Run        uint64     `json:"run"`
	Phase      Phase      `json:"phase"`
	Income     int64      `json:"income"`
	Selections Selections `json:"selections"`
	Totals
	SecondsLeft int             `json:"seconds_left"`
	Complete    bool            `json:"budget_complete"`
	Locked      map[string]bool `json:"locked"`
	Reason      Reason          `json:"reason,omitempty"`
}

// Engine is the simulation state machine. It is not safe for concurrent
// use; callers serialise access (the TUI event loop, or Session).
type Engine struct {
	scn scenario.Scenario

	phase      Phase
	income     int64
	selections Selections
	remaining  int
	reason     Reason

	run     uint64
	seq     uint64
	pending Token

	startedAt  time.Time
	finishedAt time.Time

	now       func() time.Time
	observers []func(Transition)
}

// New returns an engine in the Intro phase.
func New(s scenario.Scenario) *Engine {
	e := &Engine{
		scn: s,
		run: 1,
		now: time.Now,
	}
	e.clear()
	return e
}

// Observe registers fn to be called after every phase change.
func (e *Engine) Observe(fn func(Transition)) {
	e.observers = append(e.observers, fn)
}

// Scenario returns the scenario the engine plays.
func (e *Engine) Scenario() scenario.Scenario { return e.scn }

// Phase returns the current phase.
func (e *Engine) Phase() Phase { return e.phase }

// Income returns the current monthly income.
func (e *Engine) Income() int64 { return e.income }

// SecondsLeft returns the countdown value.
func (e *Engine) SecondsLeft() int { return e.remaining }

// Run returns the generation of the current run.
func (e *Engine) Run() uint64 { return e.run }

// Pending returns the token of the armed timer, if any.
func (e *Engine) Pending() Token { return e.pending }

// Selection returns the chosen option id for a category ("" when none).
func (e *Engine) Selection(categoryID string) string { return e.selections[categoryID] }

// Complete reports the "budget complete" flag.
func (e *Engine) Complete() bool {
	return e.selections.Complete(e.scn.Catalog)
}

// Totals recomputes expenses and balance from the current state.
func (e *Engine) Totals() Totals {
	return Compute(e.scn.Catalog, e.income, e.selections)
}

// Selectable is the inflexible-burden guard: during Adjusting only flexible
// categories may change. No selection is possible while the shock is being
// revealed or once the run is over.
func Selectable(p Phase, c scenario.Category) bool {
	switch p {
	case Intro, Budgeting:
		return true
	case Adjusting:
		return c.Flexible
	default:
		return false
	}
}

// Selectable applies the guard to a category of this engine's catalog.
func (e *Engine) Selectable(categoryID string) bool {
	cat, ok := e.scn.Catalog.Category(categoryID)
	return ok && Selectable(e.phase, cat)
}

// Start moves Intro to Budgeting.
func (e *Engine) Start() error {
	if e.phase != Intro {
		return ErrPhase
	}
	e.startedAt = e.now()
	e.transition(Budgeting, ReasonStart)
	return nil
}

// Select chooses optionID for categoryID.
func (e *Engine) Select(categoryID, optionID string) error {
	cat, ok := e.scn.Catalog.Category(categoryID)
	if !ok {
		return ErrUnknownCategory
	}
	if _, ok := cat.Option(optionID); !ok {
		return ErrUnknownOption
	}
	if !Selectable(e.phase, cat) {
		if e.phase == Adjusting {
			return ErrLocked
		}
		return ErrPhase
	}
	e.selections[categoryID] = optionID
	return nil
}

// ConfirmBudget begins the shock reveal. The returned token must be passed
// to Reveal once the reveal delay has elapsed.
func (e *Engine) ConfirmBudget() (Token, error) {
	if e.phase != Budgeting {
		return Token{}, ErrPhase
	}
	if !e.Complete() {
		return Token{}, ErrIncomplete
	}
	e.transition(ShockReveal, ReasonConfirm)
	return e.arm(), nil
}

// Reveal ends the shock reveal: income drops to the shock value and the
// countdown restarts at full length. It returns the token of the first tick
// and false if tok is stale.
func (e *Engine) Reveal(tok Token) (Token, bool) {
	if e.phase != ShockReveal || tok != e.pending {
		return Token{}, false
	}
	e.income = e.scn.Rules.ShockIncome
	e.remaining = e.scn.Rules.AdjustSeconds()
	e.transition(Adjusting, ReasonReveal)
	if e.remaining <= 0 {
		e.finish(ReasonTimeout)
		return Token{}, true
	}
	return e.arm(), true
}

// Tick advances the countdown by one second. It returns the token of the
// next tick (zero once the run has ended) and false if tok is stale.
func (e *Engine) Tick(tok Token) (Token, bool) {
	if e.phase != Adjusting || tok != e.pending {
		return Token{}, false
	}
	if e.remaining > 0 {
		e.remaining--
	}
	if e.remaining == 0 {
		e.finish(ReasonTimeout)
		return Token{}, true
	}
	return e.arm(), true
}

// Finish ends the adjustment early.
func (e *Engine) Finish() error {
	if e.phase != Adjusting {
		return ErrPhase
	}
	e.finish(ReasonFinished)
	return nil
}

// Reset returns to Intro with baseline income, no selections and a full
// countdown. Any armed timer becomes stale.
func (e *Engine) Reset() {
	from := e.phase
	e.run++
	e.clear()
	e.notify(Transition{Run: e.run, From: from, To: Intro, Reason: ReasonReset, At: e.now()})
}

// Snapshot returns the outbound view of the current state.
func (e *Engine) Snapshot() Snapshot {
	locked := make(map[string]bool, len(e.scn.Catalog.Categories))
	for _, cat := range e.scn.Catalog.Categories {
		locked[cat.ID] = !Selectable(e.phase, cat)
	}
	snap := Snapshot{
		Run:         e.run,
		Phase:       e.phase,
		Income:      e.income,
		Selections:  e.selections.Clone(),
		Totals:      e.Totals(),
		SecondsLeft: e.remaining,
		Complete:    e.Complete(),
		Locked:      locked,
	}
	if e.phase == Results {
		snap.Reason = e.reason
	}
	return snap
}

// Result summarises a finished run. ok is false before Results.
func (e *Engine) Result() (Result, bool) {
	if e.phase != Results {
		return Result{}, false
	}
	totals := e.Totals()
	return Result{
		Scenario:       e.scn.Name,
		Run:            e.run,
		StartedAt:      e.startedAt,
		FinishedAt:     e.finishedAt,
		BaselineIncome: e.scn.Rules.BaselineIncome,
		FinalIncome:    e.income,
		Totals:         totals,
		Survived:       totals.Balance >= 0,
		Reason:         e.reason,
		SecondsLeft:    e.remaining,
		Lines:          Breakdown(e.scn.Catalog, e.selections),
	}, true
}

// Result is the record of a finished run.
type Result struct {
	ID             string    `json:"id,omitempty"`
	Scenario       string    `json:"scenario"`
	Run            uint64    `json:"run"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	BaselineIncome int64     `json:"baseline_income"`
	FinalIncome    int64     `json:"final_income"`
	Totals
	Survived    bool   `json:"survived"`
	Reason      Reason `json:"reason"`
	SecondsLeft int    `json:"seconds_left"`
	Lines       []Line `json:"lines"`
}

func (e *Engine) clear() {
	e.phase = Intro
	e.income = e.scn.Rules.BaselineIncome
	e.selections = NewSelections(e.scn.Catalog)
	e.remaining = e.scn.Rules.AdjustSeconds()
	e.reason = ""
	e.seq = 0
	e.pending = Token{}
	e.startedAt = time.Time{}
	e.finishedAt = time.Time{}
}

func (e *Engine) arm() Token {
	e.seq++
	e.pending = Token{Run: e.run, Seq: e.seq}
	return e.pending
}

func (e *Engine) finish(r Reason) {
	e.pending = Token{}
	e.reason = r
	e.finishedAt = e.now()
	e.transition(Results, r)
}

func (e *Engine) transition(to Phase, r Reason) {
	from := e.phase
	e.phase = to
	e.notify(Transition{Run: e.run, From: from, To: to, Reason: r, At: e.now()})
}

func (e *Engine) notify(t Transition) {
	for _, fn := range e.observers {
		fn(t)
	}
}
