// Package scenario defines the static spending catalog and income rules
// that a simulation run is played against.
package scenario

import "time"

// Option is one concrete choice within a Category.
type Option struct {
	ID          string
	Label       string
	Description string
	Cost        int64 // monthly, currency-agnostic units
}

// Category is one spending domain (housing, transport, ...).
type Category struct {
	ID          string
	Title       string
	Description string
	Flexible    bool // can the choice be revised during the emergency phase
	Options     []Option
}

// Option returns the option with the given id.
func (c Category) Option(id string) (Option, bool) {
	for _, o := range c.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Catalog is the ordered, read-only list of categories.
type Catalog struct {
	Categories []Category
}

// Category returns the category with the given id.
func (c Catalog) Category(id string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return Category{}, false
}

// Lookup resolves a category/option pair.
func (c Catalog) Lookup(categoryID, optionID string) (Option, bool) {
	cat, ok := c.Category(categoryID)
	if !ok {
		return Option{}, false
	}
	return cat.Option(optionID)
}

// IDs returns the category ids in catalog order.
func (c Catalog) IDs() []string {
	ids := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		ids[i] = cat.ID
	}
	return ids
}

// Rules holds the income and timing parameters of a run.
type Rules struct {
	BaselineIncome int64
	ShockIncome    int64
	RevealDelay    time.Duration // non-interactive shock reveal
	AdjustDuration time.Duration // countdown length, whole seconds
	Currency       string        // display label only
}

// AdjustSeconds returns the countdown length in whole seconds.
func (r Rules) AdjustSeconds() int {
	return int(r.AdjustDuration / time.Second)
}

// Scenario bundles a catalog with its rules.
type Scenario struct {
	Name    string
	Rules   Rules
	Catalog Catalog
}

// Default values of the built-in scenario.
const (
	DefaultBaselineIncome = 10000
	DefaultShockIncome    = 5000
	DefaultRevealDelay    = 4 * time.Second
	DefaultAdjustDuration = 30 * time.Second
	DefaultCurrency       = "RM"
)

// Default returns the built-in "Life Shock" scenario.
func Default() Scenario {
	return Scenario{
		Name: "Life Shock",
		Rules: Rules{
			BaselineIncome: DefaultBaselineIncome,
			ShockIncome:    DefaultShockIncome,
			RevealDelay:    DefaultRevealDelay,
			AdjustDuration: DefaultAdjustDuration,
			Currency:       DefaultCurrency,
		},
		Catalog: Catalog{Categories: []Category{
			{
				ID:          "housing",
				Title:       "Housing",
				Description: "Where will you live?",
				Flexible:    false,
				Options: []Option{
					{ID: "fancy_condo", Label: "Fancy Condo", Description: "1-year contract, luxury amenities", Cost: 3500},
					{ID: "basic_apt", Label: "Basic Apartment", Description: "Standard living, close to transit", Cost: 1500},
				},
			},
			{
				ID:          "transport",
				Title:       "Transportation",
				Description: "How will you get around?",
				Flexible:    false,
				Options: []Option{
					{ID: "luxury_car", Label: "Luxury Car", Description: "5-year bank loan, premium status", Cost: 2500},
					{ID: "used_car", Label: "Used Car / Transit", Description: "Reliable A-to-B transport", Cost: 800},
				},
			},
			{
				ID:          "lifestyle",
				Title:       "Lifestyle & Food",
				Description: "How do you spend your free time?",
				Flexible:    true,
				Options: []Option{
					{ID: "fancy_life", Label: "Travel & Fine Dining", Description: "Eating out, weekend getaways", Cost: 2000},
					{ID: "simple_life", Label: "Simple Living", Description: "Home cooking, local hobbies", Cost: 500},
				},
			},
		}},
	}
}
