package sim

import (
	"sync"
	"time"

	"github.com/theirongolddev/lifeshock/internal/scenario"
)

// TickInterval is the countdown resolution.
const TickInterval = time.Second

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. The real clock is backed by time.AfterFunc.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns the wall-clock implementation.
func RealClock() Clock { return realClock{} }

// Update is emitted by a Session after every accepted change.
type Update struct {
	Kind       string      `json:"kind"` // "transition", "select" or "tick"
	Transition *Transition `json:"transition,omitempty"`
	Snapshot   Snapshot    `json:"snapshot"`
	Result     *Result     `json:"result,omitempty"` // set on the transition into Results
}

// Session drives an Engine with real timers and serialises every action.
// Timer callbacks run under the same lock as user actions.
type Session struct {
	mu     sync.Mutex
	engine *Engine
	clock  Clock
	timer  Timer
	closed bool

	notify  func(Update)
	lastTrn *Transition
}

// NewSession builds a session. notify may be nil; it is called with the
// session lock held, so it must not call back into the session.
func NewSession(s scenario.Scenario, clock Clock, notify func(Update)) *Session {
	if clock == nil {
		clock = RealClock()
	}
	sess := &Session{
		engine: New(s),
		clock:  clock,
		notify: notify,
	}
	sess.engine.Observe(func(t Transition) {
		tt := t
		sess.lastTrn = &tt
	})
	return sess
}

// Observe registers a transition observer on the underlying engine.
func (s *Session) Observe(fn func(Transition)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Observe(fn)
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot()
}

// Result returns the finished-run record, if the run is over.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Result()
}

// Start begins budgeting.
func (s *Session) Start() (Snapshot, error) {
	return s.do(func() error { return s.engine.Start() })
}

// Select chooses an option.
func (s *Session) Select(categoryID, optionID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.engine.Snapshot(), ErrClosed
	}
	s.lastTrn = nil
	if err := s.engine.Select(categoryID, optionID); err != nil {
		return s.engine.Snapshot(), err
	}
	s.emit("select")
	return s.engine.Snapshot(), nil
}

// Confirm locks in the budget and arms the reveal timer.
func (s *Session) Confirm() (Snapshot, error) {
	return s.do(func() error {
		tok, err := s.engine.ConfirmBudget()
		if err != nil {
			return err
		}
		s.arm(s.engine.Scenario().Rules.RevealDelay, func() { s.fireReveal(tok) })
		return nil
	})
}

// Finish ends the adjustment early and cancels the countdown.
func (s *Session) Finish() (Snapshot, error) {
	return s.do(func() error {
		if err := s.engine.Finish(); err != nil {
			return err
		}
		s.stop()
		return nil
	})
}

// Reset cancels any pending timer and starts a fresh run.
func (s *Session) Reset() (Snapshot, error) {
	return s.do(func() error {
		s.stop()
		s.engine.Reset()
		return nil
	})
}

// Close stops all timers. Later actions return ErrClosed and late timer
// callbacks are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stop()
}

func (s *Session) do(fn func() error) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.engine.Snapshot(), ErrClosed
	}
	s.lastTrn = nil
	if err := fn(); err != nil {
		return s.engine.Snapshot(), err
	}
	s.emit("transition")
	return s.engine.Snapshot(), nil
}

func (s *Session) fireReveal(tok Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.lastTrn = nil
	next, ok := s.engine.Reveal(tok)
	if !ok {
		return
	}
	s.emit("transition")
	if !next.IsZero() {
		s.arm(TickInterval, func() { s.fireTick(next) })
	}
}

func (s *Session) fireTick(tok Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.lastTrn = nil
	next, ok := s.engine.Tick(tok)
	if !ok {
		return
	}
	s.emit("tick")
	if !next.IsZero() {
		s.arm(TickInterval, func() { s.fireTick(next) })
	}
}

func (s *Session) arm(d time.Duration, f func()) {
	s.stop()
	s.timer = s.clock.AfterFunc(d, f)
}

func (s *Session) stop() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) emit(kind string) {
	if s.notify == nil {
		return
	}
	u := Update{Kind: kind, Snapshot: s.engine.Snapshot()}
	if s.lastTrn != nil {
		u.Transition = s.lastTrn
		u.Kind = "transition"
		if r, ok := s.engine.Result(); ok && s.lastTrn.To == Results {
			u.Result = &r
		}
	}
	s.notify(u)
}
