package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "SECRETS_FILE", "LOG_LEVEL", "PROMPT_FILE", "OPENAI_BASE_URL",
		"WATCH_INPUT_DIR", "WATCH_OUTPUT_DIR", "REQUEST_TIMEOUT_SECONDS", "MAX_UPLOAD_MB", "MAX_AUDIO_MB",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.RequestTimeout != 120*time.Second {
		t.Errorf("RequestTimeout = %s, want 2m0s", cfg.RequestTimeout)
	}
	if cfg.MaxUploadBytes != 25*megabyte {
		t.Errorf("MaxUploadBytes = %d, want %d", cfg.MaxUploadBytes, 25*megabyte)
	}
	if cfg.SecretsFile != ".streamlit/secrets.toml" {
		t.Errorf("SecretsFile = %q", cfg.SecretsFile)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "30")
	t.Setenv("MAX_UPLOAD_MB", "2")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %s, want 30s", cfg.RequestTimeout)
	}
	if cfg.MaxUploadBytes != 2*megabyte {
		t.Errorf("MaxUploadBytes = %d, want %d", cfg.MaxUploadBytes, 2*megabyte)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoadConfigInvalidInt(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_UPLOAD_MB", "lots")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for non-numeric MAX_UPLOAD_MB")
	}
}

func TestLoadConfigYAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "lighthouse.yaml")
	content := `
port: "7000"
request_timeout: 45s
max_upload_mb: 5
log_level: warn
watch:
  input_dir: /tmp/in
  output_dir: /tmp/out
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7001")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Port != "7001" {
		t.Errorf("Port = %q, want env value 7001 to win over file", cfg.Port)
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Errorf("RequestTimeout = %s, want 45s", cfg.RequestTimeout)
	}
	if cfg.MaxUploadBytes != 5*megabyte {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.Watch.InputDir != "/tmp/in" || cfg.Watch.OutputDir != "/tmp/out" {
		t.Errorf("Watch = %+v", cfg.Watch)
	}
}

func TestLoadConfigYAMLUnknownField(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "lighthouse.yaml")
	if err := os.WriteFile(path, []byte("prot: 8080\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unknown yaml field")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
		{"negative upload limit", func(c *Config) { c.MaxUploadBytes = -1 }, true},
		{"unknown log level", func(c *Config) { c.LogLevel = "trace" }, true},
		{"empty port", func(c *Config) { c.Port = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
