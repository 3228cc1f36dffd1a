package services

import (
	"context"
	"fmt"

	"github.com/kshitijlau/AIPM/internal/config"
	"github.com/kshitijlau/AIPM/internal/logger"
	"github.com/kshitijlau/AIPM/internal/storage"
	"github.com/kshitijlau/AIPM/pkg/executor"
)

// NewFromConfig resolves credentials from the secrets file and environment and
// builds the analysis service. A *domain.ConfigurationError is returned
// unwrapped so callers can halt before any provider call.
func NewFromConfig(cfg config.Config, log logger.Logger) (*AnalysisService, error) {
	ctx := context.Background()

	secrets, err := config.LoadSecrets(cfg.SecretsFile)
	if err != nil {
		return nil, err
	}

	creds, err := config.ResolveCredentials(secrets)
	if err != nil {
		return nil, err
	}

	prompt, err := LoadPrompt(cfg.PromptFile)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}

	opts := []Option{
		WithPrompt(prompt),
		WithTimeout(cfg.RequestTimeout),
		WithLogger(log),
		WithBaseURL(cfg.OpenAIBaseURL),
	}

	if creds.HasAudio() {
		compressor, err := storage.NewCompressor(executor.New())
		if err != nil {
			log.Warn(ctx, "audio over %d MB will be rejected: %v", storage.MaxTranscriptionBytes/1024/1024, err)
		} else {
			opts = append(opts, WithCompressor(compressor))
		}
	}

	log.Info(ctx, "using %s provider (chat=%s audio=%t prompt=%s)", creds.Provider, creds.ChatModel, creds.HasAudio(), prompt.Version)
	return NewAnalysisService(creds, opts...), nil
}
