package profile

import (
	"fmt"
	"strings"
)

// Component names used for scoring weights and breakdowns.
const (
	ComponentSkills      = "skills"
	ComponentExperience  = "experience"
	ComponentEducation   = "education"
	ComponentPreferences = "recruiter_preferences"
)

// Components lists every scoring component in a stable order.
var Components = []string{
	ComponentSkills,
	ComponentExperience,
	ComponentEducation,
	ComponentPreferences,
}

// JobProfile is the standardized form of a job description. It is produced by
// an external standardization step and consumed read-only by the ranking core.
type JobProfile struct {
	Title           string   `yaml:"title" json:"title"`
	RequiredSkills  []string `yaml:"required_skills" json:"required_skills"`
	Experience      string   `yaml:"experience" json:"experience"`
	Education       string   `yaml:"education" json:"education"`
	PreferredSkills []string `yaml:"preferred_skills,omitempty" json:"preferred_skills,omitempty"`
}

// Validate reports whether the job profile carries every field the scorer needs.
func (j *JobProfile) Validate() error {
	if j == nil {
		return &ValidationError{Subject: "job", Field: "profile"}
	}
	if strings.TrimSpace(j.Title) == "" {
		return &ValidationError{Subject: "job", Field: "title"}
	}
	if len(j.RequiredSkills) == 0 {
		return &ValidationError{Subject: "job", Field: "required_skills"}
	}
	if strings.TrimSpace(j.Experience) == "" {
		return &ValidationError{Subject: "job", Field: "experience"}
	}
	if strings.TrimSpace(j.Education) == "" {
		return &ValidationError{Subject: "job", Field: "education"}
	}
	return nil
}

// CandidateProfile is the standardized form of a single résumé. Raw keeps the
// unstructured extraction output for audit only; the scorer never reads it.
type CandidateProfile struct {
	Name       string         `yaml:"name" json:"name"`
	Skills     []string       `yaml:"skills" json:"skills"`
	Experience string         `yaml:"experience" json:"experience"`
	Education  string         `yaml:"education" json:"education"`
	Raw        map[string]any `yaml:"raw,omitempty" json:"raw,omitempty"`
}

// Validate reports whether the candidate profile carries every field the
// scorer needs. The candidate name is required so failures can be attributed.
func (c *CandidateProfile) Validate() error {
	if c == nil {
		return &ValidationError{Subject: "candidate", Field: "profile"}
	}
	subject := strings.TrimSpace(c.Name)
	if subject == "" {
		return &ValidationError{Subject: "candidate", Field: "name"}
	}
	if len(c.Skills) == 0 {
		return &ValidationError{Subject: subject, Field: "skills"}
	}
	if strings.TrimSpace(c.Experience) == "" {
		return &ValidationError{Subject: subject, Field: "experience"}
	}
	if strings.TrimSpace(c.Education) == "" {
		return &ValidationError{Subject: subject, Field: "education"}
	}
	return nil
}

// Preferences holds the recruiter's nice-to-have skills. An empty value means
// no preference data was supplied and the preferences component stays neutral.
type Preferences struct {
	PreferredSkills []string `yaml:"preferred_skills" json:"preferred_skills"`
}

// Empty reports whether no usable preference data is present.
func (p *Preferences) Empty() bool {
	if p == nil {
		return true
	}
	for _, s := range p.PreferredSkills {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

// ParsePreferences builds Preferences from free recruiter input, one skill per line.
func ParsePreferences(text string) *Preferences {
	var skills []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			skills = append(skills, line)
		}
	}
	return &Preferences{PreferredSkills: skills}
}

// KillerCriteria holds the mandatory requirements. A candidate failing any of
// them is disqualified regardless of the overall score. Absent or empty
// criteria mean no elimination is applied.
type KillerCriteria struct {
	Skills     []string `yaml:"skills" json:"skills" mapstructure:"skills"`
	Experience []string `yaml:"experience" json:"experience" mapstructure:"experience"`
}

// Empty reports whether every criteria category is empty.
func (k *KillerCriteria) Empty() bool {
	return k == nil || (len(k.Skills) == 0 && len(k.Experience) == 0)
}

// Weights maps component names to non-negative weights. Weights need not sum
// to one; the scorer normalizes over the active components.
type Weights map[string]float64

// DefaultWeights returns the stock weight distribution.
func DefaultWeights() Weights {
	return Weights{
		ComponentSkills:      0.3,
		ComponentExperience:  0.3,
		ComponentEducation:   0.3,
		ComponentPreferences: 0.1,
	}
}

// Validate rejects negative weights and unknown component names.
func (w Weights) Validate() error {
	for name, weight := range w {
		known := false
		for _, c := range Components {
			if name == c {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown weight component %q", name)
		}
		if weight < 0 {
			return fmt.Errorf("weight for %q must be non-negative, got %v", name, weight)
		}
	}
	return nil
}

// ValidationError marks a malformed profile. Subject identifies the candidate
// (or "job") so a batch caller can attribute the failure.
type ValidationError struct {
	Subject string
	Field   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("profile %q is missing required field %q", e.Subject, e.Field)
}

// JoinSkills renders a skill list as one text for similarity comparison.
func JoinSkills(skills []string) string {
	parts := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
