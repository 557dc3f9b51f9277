// Package ranking runs match scoring over a candidate set and produces the
// final ordered ranking.
package ranking

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	logutil "github.com/talentfit/cv-ranker/internal/logger"
	"github.com/talentfit/cv-ranker/internal/matching"
	"github.com/talentfit/cv-ranker/internal/profile"
)

const defaultConcurrency = 4

// Scorer is the per-candidate scoring dependency.
type Scorer interface {
	Score(ctx context.Context, job *profile.JobProfile, prefs *profile.Preferences, candidate *profile.CandidateProfile, criteria *profile.KillerCriteria, weights profile.Weights) (*matching.MatchScore, error)
}

// Entry pairs a candidate with its match score.
type Entry struct {
	Candidate *profile.CandidateProfile `json:"candidate" yaml:"candidate"`
	Score     *matching.MatchScore      `json:"score" yaml:"score"`
}

// Failure records a candidate whose scoring failed. Failed candidates never
// abort the batch; they are reported alongside the ranking.
type Failure struct {
	Candidate string `json:"candidate" yaml:"candidate"`
	Reason    string `json:"reason" yaml:"reason"`
}

// Result is the complete ordered ranking. Qualified candidates come first by
// final score descending; disqualified candidates follow, also by score
// descending among themselves. Input order breaks ties.
type Result struct {
	Entries  []Entry   `json:"entries" yaml:"entries"`
	Failures []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Engine scores candidates concurrently and sorts the outcome.
type Engine struct {
	scorer      Scorer
	concurrency int
	logger      *zap.Logger
}

func NewEngine(scorer Scorer, concurrency int, logger *zap.Logger) *Engine {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{scorer: scorer, concurrency: concurrency, logger: logger}
}

// Rank scores every candidate and returns the complete ordered ranking.
// Scoring runs concurrently, bounded by the engine's concurrency limit, with
// each task writing into its own slot of an index-addressed results slice.
// A per-candidate validation failure lands in Result.Failures; a
// configuration error aborts the whole run. When the context is cancelled the
// partial result is returned together with the context error.
func (e *Engine) Rank(ctx context.Context, job *profile.JobProfile, prefs *profile.Preferences, candidates []*profile.CandidateProfile, criteria *profile.KillerCriteria, weights profile.Weights) (*Result, error) {
	type outcome struct {
		score *matching.MatchScore
		err   error
		done  bool
	}

	outcomes := make([]outcome, len(candidates))
	semaphore := make(chan struct{}, e.concurrency)

	var wg sync.WaitGroup
	for i, candidate := range candidates {
		select {
		case <-ctx.Done():
		case semaphore <- struct{}{}:
			wg.Add(1)
			go func(i int, candidate *profile.CandidateProfile) {
				defer wg.Done()
				defer func() { <-semaphore }()

				if ctx.Err() != nil {
					return
				}

				score, err := e.scorer.Score(ctx, job, prefs, candidate, criteria, weights)
				outcomes[i] = outcome{score: score, err: err, done: true}
			}(i, candidate)
		}
		if ctx.Err() != nil {
			break
		}
	}
	wg.Wait()

	result := &Result{}
	var configErr *matching.ConfigurationError
	for i, candidate := range candidates {
		out := outcomes[i]
		if !out.done {
			continue
		}
		if out.err != nil {
			if errors.As(out.err, &configErr) {
				return nil, out.err
			}
			name := candidateName(candidate)
			e.logger.Warn("scoring candidate failed",
				zap.String(logutil.FieldCandidate, name),
				zap.Error(out.err),
			)
			result.Failures = append(result.Failures, Failure{
				Candidate: name,
				Reason:    out.err.Error(),
			})
			continue
		}
		result.Entries = append(result.Entries, Entry{Candidate: candidate, Score: out.score})
	}

	// Stable sort keeps input order on equal scores.
	sort.SliceStable(result.Entries, func(a, b int) bool {
		left, right := result.Entries[a].Score, result.Entries[b].Score
		if left.Disqualified != right.Disqualified {
			return !left.Disqualified
		}
		return left.FinalScore > right.FinalScore
	})

	e.logger.Info("ranking completed",
		zap.Int("candidates", len(candidates)),
		zap.Int("ranked", len(result.Entries)),
		zap.Int("failed", len(result.Failures)),
	)

	if err := ctx.Err(); err != nil {
		return result, err
	}

	return result, nil
}

// candidateName attributes a failure even when the batch carries a nil entry.
func candidateName(c *profile.CandidateProfile) string {
	if c == nil {
		return "<nil candidate>"
	}
	return c.Name
}
