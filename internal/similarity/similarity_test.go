package similarity

import (
	"context"
	"math"
	"testing"

	"github.com/talentfit/cv-ranker/internal/ai"
)

type stubEmbedder struct {
	vectors map[string][]float64
	err     error
	calls   int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors[text], nil
}

func TestSimilaritySelfIsOne(t *testing.T) {
	t.Parallel()

	embedder := &stubEmbedder{vectors: map[string][]float64{
		"python developer": {0.3, 0.8, 0.1},
	}}
	scorer := NewScorer(embedder, nil)

	got := scorer.Similarity(context.Background(), "python developer", "python developer")
	if math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("self similarity = %v, want 1.0", got)
	}
}

func TestSimilaritySymmetry(t *testing.T) {
	t.Parallel()

	embedder := &stubEmbedder{vectors: map[string][]float64{
		"go":   {1, 0, 0.5},
		"rust": {0.2, 1, 0},
	}}
	scorer := NewScorer(embedder, nil)

	ab := scorer.Similarity(context.Background(), "go", "rust")
	ba := scorer.Similarity(context.Background(), "rust", "go")
	if math.Abs(ab-ba) > 1e-9 {
		t.Fatalf("similarity not symmetric: %v vs %v", ab, ba)
	}
}

func TestSimilarityClampsNegativeCosine(t *testing.T) {
	t.Parallel()

	embedder := &stubEmbedder{vectors: map[string][]float64{
		"a": {1, 0},
		"b": {-1, 0},
	}}
	scorer := NewScorer(embedder, nil)

	if got := scorer.Similarity(context.Background(), "a", "b"); got != 0 {
		t.Fatalf("opposite vectors = %v, want 0", got)
	}
}

func TestSimilarityFallsBackOnProviderError(t *testing.T) {
	t.Parallel()

	embedder := &stubEmbedder{err: &ai.ProviderError{Kind: ai.KindUnavailable}}
	scorer := NewScorer(embedder, nil)

	got := scorer.Similarity(context.Background(), "python nlp", "python nlp pytorch")
	want := 2.0 / 3.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("fallback overlap = %v, want %v", got, want)
	}
}

func TestSimilarityEmptyInputSkipsEmbedder(t *testing.T) {
	t.Parallel()

	embedder := &stubEmbedder{vectors: map[string][]float64{}}
	scorer := NewScorer(embedder, nil)

	if got := scorer.Similarity(context.Background(), "", "python"); got != 0 {
		t.Fatalf("empty input similarity = %v, want 0", got)
	}
	if embedder.calls != 0 {
		t.Fatalf("embedder called %d times for empty input", embedder.calls)
	}
}

func TestSimilarityNilEmbedderUsesTokenOverlap(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(nil, nil)

	got := scorer.Similarity(context.Background(), "Python, NLP.", "python nlp")
	if math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("lexical similarity = %v, want 1.0", got)
	}
}

func TestTokenOverlapBothEmpty(t *testing.T) {
	t.Parallel()

	if got := tokenOverlap("", ""); got != 0 {
		t.Fatalf("overlap of empties = %v, want 0", got)
	}
}

func TestCosineMismatchedVectors(t *testing.T) {
	t.Parallel()

	if got := cosine([]float64{1, 2}, []float64{1}); got != 0 {
		t.Fatalf("mismatched lengths = %v, want 0", got)
	}
	if got := cosine([]float64{0, 0}, []float64{1, 1}); got != 0 {
		t.Fatalf("zero vector = %v, want 0", got)
	}
}
