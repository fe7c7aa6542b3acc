package config

import (
	"strings"
	"sync"
	"time"
)

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// GenerationConfig controls how roadmap text is requested from the model.
type GenerationConfig struct {
	Provider       string
	MaxRetries     int
	BackoffUnit    time.Duration
	RequestTimeout time.Duration
}

var (
	generationConfig *GenerationConfig
	generationOnce   sync.Once
)

func LoadGenerationConfig() *GenerationConfig {
	generationOnce.Do(func() {
		generationConfig = newGenerationConfig()
	})
	return generationConfig
}

func newGenerationConfig() *GenerationConfig {
	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini))
	if provider != ProviderOpenRouter {
		provider = ProviderGemini
	}
	maxRetries := getEnvInt("LLM_MAX_RETRIES", 3)
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &GenerationConfig{
		Provider:       provider,
		MaxRetries:     maxRetries,
		BackoffUnit:    getEnvDuration("LLM_BACKOFF_UNIT", time.Second),
		RequestTimeout: getEnvDuration("LLM_REQUEST_TIMEOUT", 90*time.Second),
	}
}
