// Package similarity scores the semantic closeness of two texts in [0,1].
// Embedding-based cosine similarity is used when a provider is available,
// with a lexical token-overlap fallback so a provider outage never fails a
// scoring run.
package similarity

import (
	"context"
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/talentfit/cv-ranker/internal/ai"
)

// Scorer computes text similarity. A nil embedder puts the scorer in
// lexical-only mode, which keeps ranking usable without an AI provider.
type Scorer struct {
	embedder ai.Embedder
	logger   *zap.Logger
}

func NewScorer(embedder ai.Embedder, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{embedder: embedder, logger: logger}
}

// Similarity returns a score in [0,1] for the pair of texts. It never fails:
// empty inputs and embedding errors degrade to the token-overlap fallback.
func (s *Scorer) Similarity(ctx context.Context, a, b string) float64 {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)

	if s.embedder == nil || a == "" || b == "" {
		return tokenOverlap(a, b)
	}

	vecA, err := s.embedder.Embed(ctx, a)
	if err != nil {
		s.logDegraded(err)
		return tokenOverlap(a, b)
	}

	vecB, err := s.embedder.Embed(ctx, b)
	if err != nil {
		s.logDegraded(err)
		return tokenOverlap(a, b)
	}

	return clamp01(cosine(vecA, vecB))
}

func (s *Scorer) logDegraded(err error) {
	fields := []zap.Field{zap.Error(err)}
	var provErr *ai.ProviderError
	if errors.As(err, &provErr) {
		fields = append(fields, zap.String("kind", provErr.Kind.String()))
	}
	s.logger.Debug("embedding unavailable, falling back to token overlap", fields...)
}

// cosine returns dot(a,b) / (|a|*|b|). Mismatched or empty vectors score 0.
func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// tokenOverlap is the Jaccard ratio of case-insensitive whitespace tokens.
func tokenOverlap(a, b string) float64 {
	tokensA := tokenize(a)
	tokensB := tokenize(b)
	if len(tokensA) == 0 && len(tokensB) == 0 {
		return 0
	}

	union := make(map[string]struct{}, len(tokensA)+len(tokensB))
	intersection := 0
	for token := range tokensA {
		union[token] = struct{}{}
	}
	for token := range tokensB {
		if _, ok := tokensA[token]; ok {
			intersection++
		}
		union[token] = struct{}{}
	}

	denominator := len(union)
	if denominator < 1 {
		denominator = 1
	}

	return float64(intersection) / float64(denominator)
}

func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, field := range strings.Fields(strings.ToLower(text)) {
		field = strings.Trim(field, ".,;:()[]")
		if field != "" {
			tokens[field] = struct{}{}
		}
	}
	return tokens
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
