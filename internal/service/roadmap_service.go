package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fadilmartias/skillwise/internal/logger"
	"github.com/fadilmartias/skillwise/internal/prompt"
	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidPrompt    = errors.New("invalid prompt")
	ErrGenerationFailed = errors.New("roadmap generation failed")
	errEmptyResponse    = errors.New("empty response")
)

// GenerationError reports that every allowed attempt failed.
type GenerationError struct {
	Attempts int
	Last     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("roadmap generation failed after %d attempt(s): %v", e.Attempts, e.Last)
}

func (e *GenerationError) Unwrap() []error {
	return []error{ErrGenerationFailed, e.Last}
}

type promptInput struct {
	Prompt string `validate:"required,min=50,max=4000"`
}

// RoadmapService validates prompts and calls a Generator under a RetryPolicy.
type RoadmapService struct {
	gen      Generator
	policy   RetryPolicy
	validate *validator.Validate
}

func NewRoadmapService(gen Generator, policy RetryPolicy) *RoadmapService {
	return &RoadmapService{
		gen:      gen,
		policy:   policy.normalized(),
		validate: validator.New(),
	}
}

// ValidatePrompt checks the accepted prompt length in characters.
func (s *RoadmapService) ValidatePrompt(p string) error {
	p = strings.TrimSpace(p)
	if err := s.validate.Struct(promptInput{Prompt: p}); err != nil {
		return fmt.Errorf("%w: must be %d to %d characters, got %d",
			ErrInvalidPrompt, prompt.MinLength, prompt.MaxLength, prompt.Length(p))
	}
	return nil
}

// Generate returns the trimmed text of the first non-empty response. Every
// attempt is a new call; a failed attempt n waits Backoff(n) before the next.
func (s *RoadmapService) Generate(ctx context.Context, p string) (string, error) {
	if err := s.ValidatePrompt(p); err != nil {
		return "", err
	}
	p = strings.TrimSpace(p)
	log := logger.WithContext(ctx)

	var last error
	attempt := 0
	for attempt < s.policy.MaxAttempts {
		attempt++

		text, err := s.gen.Complete(ctx, p)
		if err == nil {
			if text = strings.TrimSpace(text); text != "" {
				log.Info("roadmap generated", "attempt", attempt, "chars", prompt.Length(text))
				return text, nil
			}
			err = errEmptyResponse
		}
		last = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("generate roadmap: %w", ctxErr)
		}
		if !IsRetryable(err) {
			log.Warn("non-retryable generation error", "attempt", attempt, "error", err)
			break
		}
		if attempt == s.policy.MaxAttempts {
			break
		}

		delay := s.policy.Backoff(attempt)
		log.Warn("generation attempt failed, retrying",
			"attempt", attempt,
			"max_attempts", s.policy.MaxAttempts,
			"delay", delay,
			"error", err,
		)
		if err := s.policy.Sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("generate roadmap: %w", err)
		}
	}

	return "", &GenerationError{Attempts: attempt, Last: last}
}
