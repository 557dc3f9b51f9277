// Package matching combines per-component similarities and killer criteria
// into a single match score per (job, candidate) pair.
package matching

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logutil "github.com/talentfit/cv-ranker/internal/logger"
	"github.com/talentfit/cv-ranker/internal/profile"
	"github.com/talentfit/cv-ranker/internal/similarity"
)

// MatchScore is the scoring result for one candidate. It is created fresh per
// (job, candidate) pair and never mutated afterwards.
type MatchScore struct {
	FinalScore              float64            `json:"final_score" yaml:"final_score"`
	ComponentScores         map[string]float64 `json:"component_scores" yaml:"component_scores"`
	Disqualified            bool               `json:"disqualified" yaml:"disqualified"`
	DisqualificationReasons []string           `json:"disqualification_reasons,omitempty" yaml:"disqualification_reasons,omitempty"`
	Debug                   *Debug             `json:"debug,omitempty" yaml:"debug,omitempty"`
}

// Debug retains the raw scoring inputs for audit reporting.
type Debug struct {
	Similarities      map[string]float64 `json:"similarities" yaml:"similarities"`
	WeightsUsed       map[string]float64 `json:"weights_used" yaml:"weights_used"`
	NeutralComponents []string           `json:"neutral_components,omitempty" yaml:"neutral_components,omitempty"`
}

// ConfigurationError marks degenerate scoring input that must surface to the
// caller instead of being silently defaulted.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("scoring configuration: %s", e.Reason)
}

// Scorer computes MatchScores.
type Scorer struct {
	similarity *similarity.Scorer
	evaluator  *Evaluator
	logger     *zap.Logger
}

func NewScorer(sim *similarity.Scorer, evaluator *Evaluator, logger *zap.Logger) *Scorer {
	if sim == nil {
		sim = similarity.NewScorer(nil, nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{similarity: sim, evaluator: evaluator, logger: logger}
}

// Score computes the match score for one candidate. Killer criteria are
// evaluated first; a failing candidate is disqualified with a zero final
// score, but component scores are still computed so debug reporting gets a
// full breakdown. Malformed profiles fail fast with a ValidationError.
func (s *Scorer) Score(ctx context.Context, job *profile.JobProfile, prefs *profile.Preferences, candidate *profile.CandidateProfile, criteria *profile.KillerCriteria, weights profile.Weights) (*MatchScore, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	if weights == nil {
		weights = profile.DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}

	passes := true
	var reasons []string
	if s.evaluator != nil {
		passes, reasons = s.evaluator.Evaluate(ctx, candidate, criteria)
	}

	scores, neutral := s.componentScores(ctx, job, prefs, candidate)

	active := make(map[string]float64, len(scores))
	for name, score := range scores {
		if !neutral[name] {
			active[name] = score
		}
	}
	if len(active) == 0 {
		return nil, &ConfigurationError{Reason: "no scorable components"}
	}

	var weightSum float64
	for name := range active {
		weightSum += weights[name]
	}

	var finalScore float64
	weightsUsed := make(map[string]float64, len(active))
	if weightSum > 0 {
		for name, score := range active {
			normalized := weights[name] / weightSum
			weightsUsed[name] = normalized
			finalScore += normalized * score
		}
	} else {
		// All active weights zero: plain mean keeps the result defined.
		equal := 1 / float64(len(active))
		for name, score := range active {
			weightsUsed[name] = equal
			finalScore += equal * score
		}
	}
	finalScore = clamp01(finalScore)

	var neutralNames []string
	for _, name := range profile.Components {
		if neutral[name] {
			neutralNames = append(neutralNames, name)
		}
	}

	similarities := make(map[string]float64, len(scores))
	for name, value := range scores {
		similarities[name] = value
	}

	score := &MatchScore{
		FinalScore:      finalScore,
		ComponentScores: scores,
		Debug: &Debug{
			Similarities:      similarities,
			WeightsUsed:       weightsUsed,
			NeutralComponents: neutralNames,
		},
	}

	if !passes {
		score.FinalScore = 0
		score.Disqualified = true
		score.DisqualificationReasons = reasons
	}

	s.logger.Debug("scored candidate",
		zap.String(logutil.FieldCandidate, candidate.Name),
		zap.Float64("final_score", score.FinalScore),
		zap.Bool("disqualified", score.Disqualified),
	)

	return score, nil
}

// componentScores computes the four component similarities. The recruiter
// preferences component is neutral (1.0, excluded from weight normalization)
// when neither the recruiter nor the job supplies preferred skills.
func (s *Scorer) componentScores(ctx context.Context, job *profile.JobProfile, prefs *profile.Preferences, candidate *profile.CandidateProfile) (map[string]float64, map[string]bool) {
	candidateSkills := profile.JoinSkills(candidate.Skills)

	scores := map[string]float64{
		profile.ComponentSkills:     s.similarity.Similarity(ctx, profile.JoinSkills(job.RequiredSkills), candidateSkills),
		profile.ComponentExperience: s.similarity.Similarity(ctx, job.Experience, candidate.Experience),
		profile.ComponentEducation:  s.similarity.Similarity(ctx, job.Education, candidate.Education),
	}
	neutral := make(map[string]bool)

	preferred := job.PreferredSkills
	if !prefs.Empty() {
		preferred = prefs.PreferredSkills
	}
	if len(preferred) == 0 {
		scores[profile.ComponentPreferences] = 1.0
		neutral[profile.ComponentPreferences] = true
	} else {
		scores[profile.ComponentPreferences] = s.similarity.Similarity(ctx, profile.JoinSkills(preferred), candidateSkills)
	}

	return scores, neutral
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
