package services

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kshitijlau/AIPM/internal/config"
	"github.com/kshitijlau/AIPM/internal/domain"
	"github.com/kshitijlau/AIPM/internal/logger"
)

var credentialEnv = []string{
	"AZURE_OPENAI_API_KEY",
	"AZURE_OPENAI_ENDPOINT",
	"AZURE_CHAT_DEPLOYMENT_NAME",
	"AZURE_WHISPER_DEPLOYMENT_NAME",
	"OPENAI_API_VERSION",
	"OPENAI_API_KEY",
}

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, key := range credentialEnv {
		t.Setenv(key, "")
	}
}

func TestNewFromConfigMissingCredentials(t *testing.T) {
	clearCredentialEnv(t)

	cfg := config.Default()
	cfg.SecretsFile = filepath.Join(t.TempDir(), "missing.toml")

	_, err := NewFromConfig(cfg, logger.Discard())
	var cfgErr *domain.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestNewFromConfigSecretsSection(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-flat")

	dir := t.TempDir()
	secrets := filepath.Join(dir, "secrets.toml")
	content := "[azure_openai]\napi_key = \"k\"\nendpoint = \"https://example.openai.azure.com\"\ndeployment_name = \"gpt4o\"\n"
	if err := os.WriteFile(secrets, []byte(content), 0o600); err != nil {
		t.Fatalf("write secrets: %v", err)
	}
	promptFile := filepath.Join(dir, "prompt.md")
	if err := os.WriteFile(promptFile, []byte("You are a reviewer."), 0o600); err != nil {
		t.Fatalf("write prompt: %v", err)
	}

	cfg := config.Default()
	cfg.SecretsFile = secrets
	cfg.PromptFile = promptFile
	cfg.RequestTimeout = 5 * time.Second

	svc, err := NewFromConfig(cfg, logger.Discard())
	if err != nil {
		t.Fatalf("new from config: %v", err)
	}
	if svc.Provider() != domain.ProviderAzure {
		t.Fatalf("expected hosted provider, got %s", svc.Provider())
	}
	if svc.ChatModel() != "gpt4o" {
		t.Fatalf("unexpected chat model %q", svc.ChatModel())
	}
	if svc.AudioEnabled() {
		t.Fatalf("audio should be disabled without a whisper deployment")
	}
	if len(svc.PromptVersion()) != len("custom-")+8 {
		t.Fatalf("unexpected prompt version %q", svc.PromptVersion())
	}
}
