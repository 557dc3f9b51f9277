package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/talentfit/cv-ranker/internal/ai"
)

func TestRetryable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", genai.APIError{Code: http.StatusTooManyRequests}, true},
		{"server error", genai.APIError{Code: http.StatusInternalServerError}, true},
		{"bad request", genai.APIError{Code: http.StatusBadRequest}, false},
		{"plain error", errors.New("boom"), false},
		{"wrapped api error", fmt.Errorf("call: %w", genai.APIError{Code: http.StatusServiceUnavailable}), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := retryable(tc.err); got != tc.want {
				t.Fatalf("retryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	if got := classify(nil); got != nil {
		t.Fatalf("classify(nil) = %v", got)
	}

	if got := classify(context.Canceled); !errors.Is(got, context.Canceled) {
		t.Fatalf("cancellation must pass through, got %v", got)
	}

	var provErr *ai.ProviderError
	if got := classify(genai.APIError{Code: http.StatusTooManyRequests}); !errors.As(got, &provErr) || provErr.Kind != ai.KindRateLimited {
		t.Fatalf("429 classify = %v", got)
	}
	if got := classify(errors.New("connection refused")); !errors.As(got, &provErr) || provErr.Kind != ai.KindUnavailable {
		t.Fatalf("transport error classify = %v", got)
	}
}

func TestWithRetryStopsOnNonRetryableError(t *testing.T) {
	t.Parallel()

	g := &Generator{maxRetries: 3, logger: zap.NewNop()}

	calls := 0
	err := g.withRetry(context.Background(), "test", func() error {
		calls++
		return errors.New("fatal")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("non-retryable error retried %d times", calls)
	}
}

func TestWithRetryHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	g := &Generator{maxRetries: 3, logger: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := g.withRetry(ctx, "test", func() error {
		calls++
		return genai.APIError{Code: http.StatusTooManyRequests}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("cancelled retry loop ran %d calls", calls)
	}
}
