// Package rulesfile reads and writes alert rule sets as YAML so they can be
// kept under version control and pushed to the server with `dash rules push`.
package rulesfile

import (
	"errors"
	"fmt"
	"os"

	"optimus-dashboard/pkg/model"

	"gopkg.in/yaml.v3"
)

var ErrInvalidRules = errors.New("invalid alert rules")

type File struct {
	Rules []model.AlertRule `yaml:"rules"`
}

func Load(path string) ([]model.AlertRule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

func Parse(raw []byte) ([]model.AlertRule, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	f.applyDefaults()
	if err := f.validate(); err != nil {
		return nil, err
	}
	return f.Rules, nil
}

// Save writes rules to path, replacing any existing file.
func Save(path string, rules []model.AlertRule) error {
	raw, err := yaml.Marshal(File{Rules: rules})
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}

func (f *File) applyDefaults() {
	for i := range f.Rules {
		if f.Rules[i].Severity == "" {
			f.Rules[i].Severity = model.SeverityWarning
		}
	}
}

func (f *File) validate() error {
	if len(f.Rules) == 0 {
		return fmt.Errorf("%w: no rules defined", ErrInvalidRules)
	}
	seen := make(map[string]bool, len(f.Rules))
	for i, r := range f.Rules {
		if r.Name == "" {
			return fmt.Errorf("%w: rule %d has no name", ErrInvalidRules, i)
		}
		if seen[r.Name] {
			return fmt.Errorf("%w: duplicate rule %q", ErrInvalidRules, r.Name)
		}
		seen[r.Name] = true
		if r.Condition == "" {
			return fmt.Errorf("%w: rule %q has no condition", ErrInvalidRules, r.Name)
		}
		switch r.Severity {
		case model.SeverityInfo, model.SeverityWarning, model.SeverityError:
		default:
			return fmt.Errorf("%w: rule %q has unknown severity %q", ErrInvalidRules, r.Name, r.Severity)
		}
	}
	return nil
}
