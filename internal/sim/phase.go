// Package sim implements the budget simulation engine: phases, selection
// locking, the shock reveal and the adjustment countdown.
package sim

import "fmt"

// Phase is the stage a run is in.
type Phase int

// Phases in play order.
const (
	Intro Phase = iota
	Budgeting
	ShockReveal
	Adjusting
	Results
)

var phaseNames = [...]string{
	Intro:       "intro",
	Budgeting:   "budgeting",
	ShockReveal: "shock_reveal",
	Adjusting:   "adjusting",
	Results:     "results",
}

// Phases lists every phase in play order.
var Phases = []Phase{Intro, Budgeting, ShockReveal, Adjusting, Results}

func (p Phase) String() string {
	if p < Intro || p > Results {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(b []byte) error {
	ph, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = ph
	return nil
}

// ParsePhase maps a phase name back to its value.
func ParsePhase(s string) (Phase, error) {
	for i, name := range phaseNames {
		if name == s {
			return Phase(i), nil
		}
	}
	return Intro, fmt.Errorf("unknown phase %q", s)
}

// Reason records what caused a transition.
type Reason string

// Transition reasons.
const (
	ReasonStart    Reason = "start"
	ReasonConfirm  Reason = "confirm"
	ReasonReveal   Reason = "reveal"
	ReasonTimeout  Reason = "timeout"
	ReasonFinished Reason = "finished"
	ReasonReset    Reason = "reset"
)
