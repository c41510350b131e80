package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Scenario describes one search input: grid size, endpoints and obstacles.
type Scenario struct {
	Name        string  `json:"name,omitempty" yaml:"name,omitempty" validate:"omitempty,max=64"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Rows        int     `json:"rows" yaml:"rows" validate:"gt=0"`
	Cols        int     `json:"cols" yaml:"cols" validate:"gt=0"`
	Source      Point   `json:"source" yaml:"source"`
	Destination Point   `json:"destination" yaml:"destination"`
	Blocked     []Point `json:"blocked,omitempty" yaml:"blocked,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateScenario checks a scenario before any grid is allocated. Every
// failure wraps ErrInvalidScenario; bounds failures also wrap ErrOutOfBounds.
func ValidateScenario(s *Scenario) error {
	if s == nil {
		return fmt.Errorf("%w: scenario is nil", ErrInvalidScenario)
	}

	if err := validate.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%w: %s fails %q (got %v)", ErrInvalidScenario, strings.ToLower(fe.Field()), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	if !pointInBounds(s.Source, s.Rows, s.Cols) {
		return fmt.Errorf("%w: source %s outside %dx%d grid: %w", ErrInvalidScenario, s.Source, s.Rows, s.Cols, ErrOutOfBounds)
	}
	if !pointInBounds(s.Destination, s.Rows, s.Cols) {
		return fmt.Errorf("%w: destination %s outside %dx%d grid: %w", ErrInvalidScenario, s.Destination, s.Rows, s.Cols, ErrOutOfBounds)
	}

	for i, p := range s.Blocked {
		if !pointInBounds(p, s.Rows, s.Cols) {
			return fmt.Errorf("%w: blocked[%d] %s outside %dx%d grid: %w", ErrInvalidScenario, i, p, s.Rows, s.Cols, ErrOutOfBounds)
		}
		if p == s.Source || p == s.Destination {
			return fmt.Errorf("%w: blocked[%d] %s collides with an endpoint: %w", ErrInvalidScenario, i, p, ErrOutOfBounds)
		}
	}

	return nil
}

// Build allocates the grid and applies the blocks in order. The first
// failing block aborts the build; earlier blocks are not rolled back.
func (s *Scenario) Build(opts ...Option) (*Grid, error) {
	grid, err := NewGrid(s.Rows, s.Cols, s.Source, s.Destination, opts...)
	if err != nil {
		return nil, err
	}
	for _, p := range s.Blocked {
		if err := grid.Block(p); err != nil {
			return grid, err
		}
	}
	return grid, nil
}

// LoadScenarioFile reads a .json, .yaml or .yml scenario file and validates it.
// A scenario without a name takes the file's base name.
func LoadScenarioFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s, err := DecodeScenario(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario %s: %w", filepath.Base(path), err)
	}

	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if err := ValidateScenario(s); err != nil {
		return nil, err
	}
	return s, nil
}

// DecodeScenario parses data according to a file extension (".json", ".yaml", ".yml").
func DecodeScenario(ext string, data []byte) (*Scenario, error) {
	var s Scenario
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported scenario format %q", ext)
	}
	return &s, nil
}

// IsScenarioFile reports whether name has a supported scenario extension.
func IsScenarioFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
