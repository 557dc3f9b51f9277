package profile

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Bundle is the on-disk form of a pre-standardized analysis input: one job,
// the candidate set, and optional criteria. It lets the ranking run without
// any AI provider when profiles were standardized elsewhere.
type Bundle struct {
	Job         *JobProfile         `yaml:"job"`
	Candidates  []*CandidateProfile `yaml:"candidates"`
	Preferences *Preferences        `yaml:"preferences,omitempty"`
	Killer      *KillerCriteria     `yaml:"killer,omitempty"`
	Weights     Weights             `yaml:"weights,omitempty"`
}

// LoadBundle reads a YAML bundle from path and validates the contained
// profiles. Candidate validation failures are not fatal here; they surface
// later as per-candidate failures during ranking.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles file: %w", err)
	}

	var bundle Bundle
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("parsing profiles file %q: %w", path, err)
	}

	if bundle.Job == nil {
		return nil, fmt.Errorf("profiles file %q has no job section", path)
	}
	if err := bundle.Job.Validate(); err != nil {
		return nil, fmt.Errorf("profiles file %q: %w", path, err)
	}
	if len(bundle.Candidates) == 0 {
		return nil, fmt.Errorf("profiles file %q has no candidates", path)
	}
	if err := bundle.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("profiles file %q: %w", path, err)
	}

	return &bundle, nil
}

// SaveBundle writes the bundle to path as YAML, so a standardization run can
// be replayed later without calling the AI provider again.
func (b *Bundle) SaveBundle(path string) error {
	data, err := yaml.Marshal(b)
	if err != nil {
		return fmt.Errorf("encoding profiles bundle: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing profiles file: %w", err)
	}
	return nil
}
