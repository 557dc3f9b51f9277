package ai

import (
	"context"
	"fmt"

	"github.com/talentfit/cv-ranker/internal/profile"
)

// ErrorKind classifies provider failures so callers can decide between
// degrading and retrying.
type ErrorKind int

const (
	// KindUnavailable covers transport failures and provider-side errors.
	KindUnavailable ErrorKind = iota
	// KindRateLimited marks quota or throttling rejections.
	KindRateLimited
)

func (k ErrorKind) String() string {
	if k == KindRateLimited {
		return "rate_limited"
	}
	return "unavailable"
}

// ProviderError wraps an embedding or generation failure with its kind.
type ProviderError struct {
	Kind ErrorKind
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("ai provider %s: %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Embedder converts a text into a fixed-length embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Standardizer turns raw job-description and résumé text into typed profiles.
type Standardizer interface {
	StandardizeJob(ctx context.Context, description string) (*profile.JobProfile, error)
	StandardizeResume(ctx context.Context, text string) (*profile.CandidateProfile, error)
}
