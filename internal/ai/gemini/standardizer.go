package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/talentfit/cv-ranker/internal/profile"
	"github.com/talentfit/cv-ranker/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed job_prompt.md
var jobPromptTemplate string

//go:embed resume_prompt.md
var resumePromptTemplate string

const defaultMaxLogLength = 200

// Standardizer converts raw job descriptions and résumés into typed profiles
// via prompt-based extraction.
type Standardizer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewStandardizer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Standardizer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Standardizer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// StandardizeJob extracts a JobProfile from a raw job description.
func (s *Standardizer) StandardizeJob(ctx context.Context, description string) (*profile.JobProfile, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("job description must not be empty")
	}

	data, err := s.extract(ctx, "job", strings.ReplaceAll(jobPromptTemplate, "{{JOB_DESCRIPTION}}", description))
	if err != nil {
		return nil, err
	}

	job := &profile.JobProfile{
		Title:           coerceString(data["title"]),
		RequiredSkills:  coerceStringSlice(data["required_skills"]),
		Experience:      coerceString(data["experience"]),
		Education:       coerceString(data["education"]),
		PreferredSkills: coerceStringSlice(data["preferred_skills"]),
	}
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("standardized job profile is incomplete: %w", err)
	}

	return job, nil
}

// StandardizeResume extracts a CandidateProfile from raw résumé text. The
// parsed extraction output is preserved on the profile for audit.
func (s *Standardizer) StandardizeResume(ctx context.Context, text string) (*profile.CandidateProfile, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("resume text must not be empty")
	}

	data, err := s.extract(ctx, "resume", strings.ReplaceAll(resumePromptTemplate, "{{RESUME_TEXT}}", text))
	if err != nil {
		return nil, err
	}

	candidate := &profile.CandidateProfile{
		Name:       coerceString(data["name"]),
		Skills:     coerceStringSlice(data["skills"]),
		Experience: coerceString(data["experience"]),
		Education:  coerceString(data["education"]),
		Raw:        data,
	}
	if err := candidate.Validate(); err != nil {
		return nil, fmt.Errorf("standardized candidate profile is incomplete: %w", err)
	}

	return candidate, nil
}

func (s *Standardizer) extract(ctx context.Context, kind, prompt string) (map[string]any, error) {
	s.logger.Debug("gemini standardization request",
		zap.String("kind", kind),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("gemini standardization response",
		zap.String("kind", kind),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini %s response: %w", kind, err)
	}

	return data, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ". ")
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStringSlice(v any) []string {
	switch val := v.(type) {
	case []any:
		result := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				result = append(result, s)
			}
		}
		return result
	case []string:
		return val
	case string:
		if trimmed := strings.TrimSpace(val); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	default:
		return nil
	}
}
