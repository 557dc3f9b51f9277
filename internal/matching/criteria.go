package matching

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	logutil "github.com/talentfit/cv-ranker/internal/logger"
	"github.com/talentfit/cv-ranker/internal/profile"
	"github.com/talentfit/cv-ranker/internal/similarity"
)

// DefaultKillerThreshold is the cosine similarity above which a mandatory
// term counts as satisfied when no lexical match exists.
const DefaultKillerThreshold = 0.7

// Evaluator checks mandatory requirements against a candidate profile. A term
// is satisfied by a case-insensitive substring match, or by a semantic match
// at or above the configured threshold when a similarity scorer is supplied.
type Evaluator struct {
	similarity *similarity.Scorer
	threshold  float64
	logger     *zap.Logger
}

func NewEvaluator(scorer *similarity.Scorer, threshold float64, logger *zap.Logger) *Evaluator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultKillerThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{similarity: scorer, threshold: threshold, logger: logger}
}

// Evaluate returns whether the candidate passes the killer criteria, together
// with one reason per unmet term. Reasons keep category order: skills first,
// then experience. Absent or empty criteria pass immediately.
func (e *Evaluator) Evaluate(ctx context.Context, candidate *profile.CandidateProfile, criteria *profile.KillerCriteria) (bool, []string) {
	if criteria.Empty() {
		return true, nil
	}

	var reasons []string

	for _, term := range criteria.Skills {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if !e.matchesAny(ctx, term, candidate.Skills) {
			reasons = append(reasons, fmt.Sprintf("missing mandatory skill: %s", term))
		}
	}

	for _, term := range criteria.Experience {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if !e.matchesText(ctx, term, candidate.Experience) {
			reasons = append(reasons, fmt.Sprintf("unmet mandatory experience requirement: %s", term))
		}
	}

	if len(reasons) > 0 {
		e.logger.Debug("candidate failed killer criteria",
			zap.String(logutil.FieldCandidate, candidate.Name),
			zap.Strings("reasons", reasons),
		)
	}

	return len(reasons) == 0, reasons
}

func (e *Evaluator) matchesAny(ctx context.Context, term string, skills []string) bool {
	lowerTerm := strings.ToLower(term)
	for _, skill := range skills {
		if strings.Contains(strings.ToLower(skill), lowerTerm) {
			return true
		}
	}

	if e.similarity == nil {
		return false
	}
	for _, skill := range skills {
		if score := e.similarity.Similarity(ctx, term, skill); score >= e.threshold {
			e.logger.Debug("mandatory skill satisfied semantically",
				zap.String("term", term),
				zap.String("skill", skill),
				zap.Float64("score", score),
			)
			return true
		}
	}
	return false
}

func (e *Evaluator) matchesText(ctx context.Context, term, text string) bool {
	if strings.Contains(strings.ToLower(text), strings.ToLower(term)) {
		return true
	}
	if e.similarity == nil {
		return false
	}
	return e.similarity.Similarity(ctx, term, text) >= e.threshold
}
