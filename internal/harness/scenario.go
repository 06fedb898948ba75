package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bookshelf/internal/catalog"
)

// Scenario drives a catalog store through a sequence of steps and checks
// the derived views after each one.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalogs are named book sets the data source can serve.
	Catalogs map[string][]catalog.Book `yaml:"catalogs"`

	// Initial names the catalog served to the load run at construction.
	// Empty serves no books.
	Initial string `yaml:"initial,omitempty"`

	// Steps run in order. Each step performs exactly one action.
	Steps []Step `yaml:"steps"`
}

// Step is one action against the store with optional expectations checked
// afterwards.
type Step struct {
	// Load switches the data source to the named catalog and reloads.
	Load string `yaml:"load,omitempty"`

	// SortBy sets the sort key.
	SortBy string `yaml:"sort_by,omitempty"`

	// Select selects a book ID.
	Select string `yaml:"select,omitempty"`

	// ClearSelection clears the selection.
	ClearSelection bool `yaml:"clear_selection,omitempty"`

	// Restart closes the store and constructs a new one over the same
	// preferences, as a new session would.
	Restart bool `yaml:"restart,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect lists view values to verify. Unset fields are not checked.
type Expect struct {
	Order      []string `yaml:"order,omitempty"`
	Total      *int     `yaml:"total,omitempty"`
	Earliest   *int     `yaml:"earliest,omitempty"`
	MostRecent *int     `yaml:"most_recent,omitempty"`
	Average    *float64 `yaml:"average,omitempty"`
	Selected   *string  `yaml:"selected,omitempty"`
	Resolved   *bool    `yaml:"resolved,omitempty"`
	SortBy     string   `yaml:"sort_by,omitempty"`
}

// Action returns a short label for the step, used in traces.
func (s Step) Action() string {
	switch {
	case s.Load != "":
		return "load " + s.Load
	case s.SortBy != "":
		return "sort_by " + s.SortBy
	case s.Select != "":
		return "select " + s.Select
	case s.ClearSelection:
		return "clear_selection"
	case s.Restart:
		return "restart"
	default:
		return ""
	}
}

func (s Step) actionCount() int {
	n := 0
	for _, set := range []bool{s.Load != "", s.SortBy != "", s.Select != "", s.ClearSelection, s.Restart} {
		if set {
			n++
		}
	}
	return n
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if s.Initial != "" {
		if _, ok := s.Catalogs[s.Initial]; !ok {
			return fmt.Errorf("initial: unknown catalog %q", s.Initial)
		}
	}

	for i, step := range s.Steps {
		if n := step.actionCount(); n != 1 {
			return fmt.Errorf("step %d: exactly one action required, got %d", i+1, n)
		}
		if step.Load != "" {
			if _, ok := s.Catalogs[step.Load]; !ok {
				return fmt.Errorf("step %d: unknown catalog %q", i+1, step.Load)
			}
		}
		if step.SortBy != "" {
			if _, err := catalog.ParseSortKey(step.SortBy); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		}
		if step.Expect != nil && step.Expect.SortBy != "" {
			if _, err := catalog.ParseSortKey(step.Expect.SortBy); err != nil {
				return fmt.Errorf("step %d: expect: %w", i+1, err)
			}
		}
	}

	return nil
}
