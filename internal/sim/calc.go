package sim

import "github.com/theirongolddev/lifeshock/internal/scenario"

// Selections maps category id to the chosen option id. An empty string
// means nothing has been chosen yet.
type Selections map[string]string

// NewSelections returns an all-none selection set for the catalog.
func NewSelections(c scenario.Catalog) Selections {
	sel := make(Selections, len(c.Categories))
	for _, cat := range c.Categories {
		sel[cat.ID] = ""
	}
	return sel
}

// Clone returns an independent copy.
func (s Selections) Clone() Selections {
	out := make(Selections, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Complete reports whether every catalog category has a choice.
func (s Selections) Complete(c scenario.Catalog) bool {
	for _, cat := range c.Categories {
		if s[cat.ID] == "" {
			return false
		}
	}
	return true
}

// Totals is the derived money view of a run.
type Totals struct {
	Expenses int64 `json:"expenses"`
	Balance  int64 `json:"balance"`
	Fixed    int64 `json:"fixed"`    // spend in inflexible categories
	Flexible int64 `json:"flexible"` // spend in flexible categories
}

// Compute sums the selected option costs and derives the balance.
// Unselected or unknown entries contribute nothing.
func Compute(c scenario.Catalog, income int64, sel Selections) Totals {
	var t Totals
	for _, cat := range c.Categories {
		opt, ok := cat.Option(sel[cat.ID])
		if !ok {
			continue
		}
		t.Expenses += opt.Cost
		if cat.Flexible {
			t.Flexible += opt.Cost
		} else {
			t.Fixed += opt.Cost
		}
	}
	t.Balance = income - t.Expenses
	return t
}

// Line is one row of the final breakdown.
type Line struct {
	CategoryID    string `json:"category"`
	CategoryTitle string `json:"category_title"`
	OptionID      string `json:"option"`
	Label         string `json:"label"`
	Cost          int64  `json:"cost"`
	Flexible      bool   `json:"flexible"`
}

// Breakdown lists the selected options in catalog order.
func Breakdown(c scenario.Catalog, sel Selections) []Line {
	lines := make([]Line, 0, len(c.Categories))
	for _, cat := range c.Categories {
		opt, ok := cat.Option(sel[cat.ID])
		if !ok {
			continue
		}
		lines = append(lines, Line{
			CategoryID:    cat.ID,
			CategoryTitle: cat.Title,
			OptionID:      opt.ID,
			Label:         opt.Label,
			Cost:          opt.Cost,
			Flexible:      cat.Flexible,
		})
	}
	return lines
}
