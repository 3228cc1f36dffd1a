package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           string
	SecretsFile    string
	RequestTimeout time.Duration
	MaxUploadBytes int64
	MaxAudioBytes  int64
	LogLevel       string
	PromptFile     string
	OpenAIBaseURL  string
	Watch          WatchConfig
}

type WatchConfig struct {
	InputDir  string
	OutputDir string
}

// fileConfig mirrors the optional YAML settings file. Zero values keep the
// current setting.
type fileConfig struct {
	Port           string        `yaml:"port"`
	SecretsFile    string        `yaml:"secrets_file"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxUploadMB    int64         `yaml:"max_upload_mb"`
	MaxAudioMB     int64         `yaml:"max_audio_mb"`
	LogLevel       string        `yaml:"log_level"`
	PromptFile     string        `yaml:"prompt_file"`
	OpenAIBaseURL  string        `yaml:"openai_base_url"`
	Watch          struct {
		InputDir  string `yaml:"input_dir"`
		OutputDir string `yaml:"output_dir"`
	} `yaml:"watch"`
}

const megabyte = 1024 * 1024

func Default() Config {
	return Config{
		Port:           "8080",
		SecretsFile:    ".streamlit/secrets.toml",
		RequestTimeout: 120 * time.Second,
		MaxUploadBytes: 25 * megabyte,
		MaxAudioBytes:  100 * megabyte,
		LogLevel:       "info",
		Watch: WatchConfig{
			InputDir:  "data/inbox",
			OutputDir: "data/requirements",
		},
	}
}

// LoadConfig layers defaults, the YAML file named by CONFIG_FILE and the
// environment, in that order.
func LoadConfig() (Config, error) {
	cfg := Default()

	if path := envOrDefault("CONFIG_FILE", ""); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	cfg.Port = envOrDefault("PORT", cfg.Port)
	cfg.SecretsFile = envOrDefault("SECRETS_FILE", cfg.SecretsFile)
	cfg.LogLevel = strings.ToLower(envOrDefault("LOG_LEVEL", cfg.LogLevel))
	cfg.PromptFile = envOrDefault("PROMPT_FILE", cfg.PromptFile)
	cfg.OpenAIBaseURL = envOrDefault("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.Watch.InputDir = envOrDefault("WATCH_INPUT_DIR", cfg.Watch.InputDir)
	cfg.Watch.OutputDir = envOrDefault("WATCH_OUTPUT_DIR", cfg.Watch.OutputDir)

	timeoutSeconds, err := parseIntEnv("REQUEST_TIMEOUT_SECONDS", int64(cfg.RequestTimeout/time.Second))
	if err != nil {
		return Config{}, fmt.Errorf("parse REQUEST_TIMEOUT_SECONDS: %w", err)
	}
	cfg.RequestTimeout = time.Duration(timeoutSeconds) * time.Second

	maxUploadMB, err := parseIntEnv("MAX_UPLOAD_MB", cfg.MaxUploadBytes/megabyte)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_UPLOAD_MB: %w", err)
	}
	cfg.MaxUploadBytes = maxUploadMB * megabyte

	maxAudioMB, err := parseIntEnv("MAX_AUDIO_MB", cfg.MaxAudioBytes/megabyte)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_AUDIO_MB: %w", err)
	}
	cfg.MaxAudioBytes = maxAudioMB * megabyte

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_mb must be positive")
	}
	if c.MaxAudioBytes <= 0 {
		return fmt.Errorf("max_audio_mb must be positive")
	}
	if _, ok := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}[c.LogLevel]; !ok {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn or error)", c.LogLevel)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var fc fileConfig
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode yaml: %w", err)
	}

	setString(&cfg.Port, fc.Port)
	setString(&cfg.SecretsFile, fc.SecretsFile)
	setString(&cfg.LogLevel, strings.ToLower(fc.LogLevel))
	setString(&cfg.PromptFile, fc.PromptFile)
	setString(&cfg.OpenAIBaseURL, fc.OpenAIBaseURL)
	setString(&cfg.Watch.InputDir, fc.Watch.InputDir)
	setString(&cfg.Watch.OutputDir, fc.Watch.OutputDir)
	if fc.RequestTimeout != 0 {
		cfg.RequestTimeout = fc.RequestTimeout
	}
	if fc.MaxUploadMB != 0 {
		cfg.MaxUploadBytes = fc.MaxUploadMB * megabyte
	}
	if fc.MaxAudioMB != 0 {
		cfg.MaxAudioBytes = fc.MaxAudioMB * megabyte
	}
	return nil
}

func setString(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseIntEnv(key string, fallback int64) (int64, error) {
	value := envOrDefault(key, "")
	if value == "" {
		return fallback, nil
	}

	num, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return num, nil
}
