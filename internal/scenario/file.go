package scenario

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML shape of a scenario.
type File struct {
	Name           string         `yaml:"name" validate:"required"`
	Currency       string         `yaml:"currency,omitempty"`
	BaselineIncome int64          `yaml:"baseline_income" validate:"gte=0"`
	ShockIncome    int64          `yaml:"shock_income" validate:"gte=0"`
	RevealSeconds  int            `yaml:"reveal_seconds" validate:"gt=0"`
	AdjustSeconds  int            `yaml:"adjust_seconds" validate:"gt=0"`
	Categories     []CategoryFile `yaml:"categories" validate:"required,min=1,dive"`
}

// CategoryFile is one category entry in a scenario file.
type CategoryFile struct {
	ID          string       `yaml:"id" validate:"required"`
	Title       string       `yaml:"title" validate:"required"`
	Description string       `yaml:"description,omitempty"`
	Flexible    bool         `yaml:"flexible"`
	Options     []OptionFile `yaml:"options" validate:"required,min=1,dive"`
}

// OptionFile is one option entry in a scenario file.
type OptionFile struct {
	ID          string `yaml:"id" validate:"required"`
	Label       string `yaml:"label" validate:"required"`
	Description string `yaml:"description,omitempty"`
	Cost        int64  `yaml:"cost" validate:"gte=0"`
}

var validate = validator.New()

// Load reads and validates a YAML scenario file.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the local user
	if err != nil {
		return Scenario{}, fmt.Errorf("reading scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML scenario document.
func Parse(data []byte) (Scenario, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Scenario{}, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := f.Validate(); err != nil {
		return Scenario{}, err
	}
	return f.Scenario(), nil
}

// Validate checks struct constraints and id uniqueness.
func (f File) Validate() error {
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid scenario: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid scenario: %w", err)
	}

	seenCat := make(map[string]struct{}, len(f.Categories))
	for _, c := range f.Categories {
		if _, dup := seenCat[c.ID]; dup {
			return fmt.Errorf("invalid scenario: duplicate category %q", c.ID)
		}
		seenCat[c.ID] = struct{}{}

		seenOpt := make(map[string]struct{}, len(c.Options))
		for _, o := range c.Options {
			if _, dup := seenOpt[o.ID]; dup {
				return fmt.Errorf("invalid scenario: duplicate option %q in category %q", o.ID, c.ID)
			}
			seenOpt[o.ID] = struct{}{}
		}
	}
	return nil
}

// Scenario converts the file form into the runtime form.
func (f File) Scenario() Scenario {
	currency := f.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	cats := make([]Category, 0, len(f.Categories))
	for _, c := range f.Categories {
		opts := make([]Option, 0, len(c.Options))
		for _, o := range c.Options {
			opts = append(opts, Option{ID: o.ID, Label: o.Label, Description: o.Description, Cost: o.Cost})
		}
		cats = append(cats, Category{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
			Flexible:    c.Flexible,
			Options:     opts,
		})
	}

	return Scenario{
		Name: f.Name,
		Rules: Rules{
			BaselineIncome: f.BaselineIncome,
			ShockIncome:    f.ShockIncome,
			RevealDelay:    time.Duration(f.RevealSeconds) * time.Second,
			AdjustDuration: time.Duration(f.AdjustSeconds) * time.Second,
			Currency:       currency,
		},
		Catalog: Catalog{Categories: cats},
	}
}

// ToFile converts a runtime scenario into its file form.
func ToFile(s Scenario) File {
	f := File{
		Name:           s.Name,
		Currency:       s.Rules.Currency,
		BaselineIncome: s.Rules.BaselineIncome,
		ShockIncome:    s.Rules.ShockIncome,
		RevealSeconds:  int(s.Rules.RevealDelay / time.Second),
		AdjustSeconds:  s.Rules.AdjustSeconds(),
	}
	for _, c := range s.Catalog.Categories {
		cf := CategoryFile{ID: c.ID, Title: c.Title, Description: c.Description, Flexible: c.Flexible}
		for _, o := range c.Options {
			cf.Options = append(cf.Options, OptionFile{ID: o.ID, Label: o.Label, Description: o.Description, Cost: o.Cost})
		}
		f.Categories = append(f.Categories, cf)
	}
	return f
}

// Marshal encodes a scenario as YAML.
func Marshal(s Scenario) ([]byte, error) {
	return yaml.Marshal(ToFile(s))
}

// WriteFile exports a scenario to path as YAML.
func WriteFile(path string, s Scenario) error {
	data, err := Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding scenario: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // scenario files are not secret
		return fmt.Errorf("writing scenario: %w", err)
	}
	return nil
}

// Resolve loads the scenario at path, or the built-in default when path is empty.
func Resolve(path string) (Scenario, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
