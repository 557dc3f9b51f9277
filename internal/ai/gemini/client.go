package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/talentfit/cv-ranker/internal/ai"
	logutil "github.com/talentfit/cv-ranker/internal/logger"
	"github.com/talentfit/cv-ranker/internal/utils"
)

const (
	defaultModel      = "gemini-2.5-flash"
	defaultEmbedModel = "gemini-embedding-001"

	retryBaseDelay = time.Second
)

// Generator wraps the Google GenAI client for prompt-based standardization
// and embedding generation.
type Generator struct {
	client     *genai.Client
	modelName  string
	embedModel string
	maxRetries int
	logger     *zap.Logger
}

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model, embedModel string, maxRetries int, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if embedModel = strings.TrimSpace(embedModel); embedModel == "" {
		embedModel = defaultEmbedModel
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Generator{
		client:     client,
		modelName:  model,
		embedModel: embedModel,
		maxRetries: maxRetries,
		logger:     logutil.WithCommonFields(logger, "gemini", model),
	}, nil
}

// GenerateContent sends the prompt to Gemini and returns the first textual
// response, retrying rate-limited and transient failures.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	var resp *genai.GenerateContentResponse
	err := g.withRetry(ctx, "generate_content", func() error {
		var callErr error
		resp, callErr = g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), nil)
		return callErr
	})
	if err != nil {
		return "", classify(err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

// Embed returns the embedding vector for the provided text. Failures are
// reported as ai.ProviderError so callers can degrade to fallback similarity.
func (g *Generator) Embed(ctx context.Context, text string) ([]float64, error) {
	if g == nil || g.client == nil {
		return nil, &ai.ProviderError{Kind: ai.KindUnavailable, Err: errors.New("gemini generator is not initialized")}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ai.ProviderError{Kind: ai.KindUnavailable, Err: errors.New("text must not be empty")}
	}

	var resp *genai.EmbedContentResponse
	err := g.withRetry(ctx, "embed_content", func() error {
		var callErr error
		resp, callErr = g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
		return callErr
	})
	if err != nil {
		return nil, classify(err)
	}

	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, &ai.ProviderError{Kind: ai.KindUnavailable, Err: errors.New("gemini api returned empty embedding")}
	}

	values := resp.Embeddings[0].Values
	vector := make([]float64, len(values))
	for i, v := range values {
		vector[i] = float64(v)
	}

	return vector, nil
}

// Model returns the configured generation model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

func (g *Generator) withRetry(ctx context.Context, operation string, call func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = call()
		if err == nil {
			return nil
		}
		if attempt >= g.maxRetries || !retryable(err) {
			return err
		}

		delay := retryBaseDelay << attempt
		g.logger.Debug("retrying gemini call",
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if waitErr := utils.WaitFor(ctx, delay); waitErr != nil {
			return waitErr
		}
	}
}

func retryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return false
}

// classify maps transport errors onto the provider error taxonomy. Context
// cancellation passes through untouched so callers can distinguish aborts.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return &ai.ProviderError{Kind: ai.KindRateLimited, Err: err}
	}
	return &ai.ProviderError{Kind: ai.KindUnavailable, Err: err}
}
