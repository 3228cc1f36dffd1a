package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	"github.com/kshitijlau/AIPM/internal/domain"
	"github.com/kshitijlau/AIPM/internal/logger"
	"github.com/kshitijlau/AIPM/internal/storage"
)

const defaultRequestTimeout = 120 * time.Second

// The SDK drops a literal 0 temperature (omitempty), which the API would read
// as its default of 1.
const zeroTemperature = math.SmallestNonzeroFloat32

type AnalysisService struct {
	creds      domain.Credentials
	prompt     Prompt
	client     *openai.Client
	timeout    time.Duration
	log        logger.Logger
	compressor *storage.Compressor
}

type Option func(*serviceOptions)

type serviceOptions struct {
	prompt     Prompt
	timeout    time.Duration
	log        logger.Logger
	httpClient *http.Client
	baseURL    string
	compressor *storage.Compressor
}

func WithPrompt(p Prompt) Option {
	return func(o *serviceOptions) { o.prompt = p }
}

func WithTimeout(d time.Duration) Option {
	return func(o *serviceOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(o *serviceOptions) { o.log = l }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *serviceOptions) { o.httpClient = c }
}

// WithBaseURL overrides the standard provider's API root. Hosted deployments
// always use the endpoint from their credentials.
func WithBaseURL(url string) Option {
	return func(o *serviceOptions) { o.baseURL = url }
}

// WithCompressor enables recompression of audio above the transcription limit.
func WithCompressor(c *storage.Compressor) Option {
	return func(o *serviceOptions) { o.compressor = c }
}

func NewAnalysisService(creds domain.Credentials, opts ...Option) *AnalysisService {
	o := serviceOptions{
		prompt:  DefaultPrompt(),
		timeout: defaultRequestTimeout,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.timeout}
	}

	cfg := clientConfig(creds, o.baseURL)
	cfg.HTTPClient = o.httpClient

	return &AnalysisService{
		creds:      creds,
		prompt:     o.prompt,
		client:     openai.NewClientWithConfig(cfg),
		timeout:    o.timeout,
		log:        o.log,
		compressor: o.compressor,
	}
}

func clientConfig(creds domain.Credentials, baseURL string) openai.ClientConfig {
	switch creds.Provider {
	case domain.ProviderAzure:
		cfg := openai.DefaultAzureConfig(creds.APIKey, creds.Endpoint)
		cfg.APIVersion = creds.APIVersion
		// Deployment names are used as given; the SDK default mapper strips dots.
		cfg.AzureModelMapperFunc = func(model string) string { return model }
		return cfg
	default:
		cfg := openai.DefaultConfig(creds.APIKey)
		if baseURL != "" {
			cfg.BaseURL = strings.TrimRight(baseURL, "/")
		}
		return cfg
	}
}

func (s *AnalysisService) Provider() domain.ProviderKind {
	return s.creds.Provider
}

func (s *AnalysisService) ChatModel() string {
	return s.creds.ChatModel
}

func (s *AnalysisService) AudioEnabled() bool {
	return s.creds.HasAudio()
}

func (s *AnalysisService) PromptVersion() string {
	return s.prompt.Version
}

func (s *AnalysisService) messages(transcript string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: s.prompt.System},
		{Role: openai.ChatMessageRoleUser, Content: s.prompt.UserMessage(transcript)},
	}
}

// Analyze sends one chat completion and returns the first choice verbatim.
// Every provider failure comes back as *domain.ProviderCallError.
func (s *AnalysisService) Analyze(ctx context.Context, transcript string) (result string, err error) {
	if strings.TrimSpace(transcript) == "" {
		return "", &domain.InputDecodeError{Reason: "transcript is empty"}
	}

	defer func() {
		if r := recover(); r != nil {
			result, err = "", &domain.ProviderCallError{Op: "chat completion", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.creds.ChatModel,
		Messages:    s.messages(transcript),
		Temperature: zeroTemperature,
	})
	duration := time.Since(start)

	if err != nil {
		s.log.Error(ctx, "chat completion failed after %s (provider=%s model=%s): %v", duration, s.creds.Provider, s.creds.ChatModel, err)
		return "", &domain.ProviderCallError{Op: "chat completion", Err: err}
	}

	if len(resp.Choices) == 0 {
		s.log.Error(ctx, "chat completion returned no choices after %s", duration)
		return "", &domain.ProviderCallError{Op: "chat completion", Err: errors.New("response contained no choices")}
	}

	s.log.Info(ctx, "chat completion finished in %s (provider=%s model=%s tokens=%d)", duration, s.creds.Provider, s.creds.ChatModel, resp.Usage.TotalTokens)
	return resp.Choices[0].Message.Content, nil
}

// Transcribe converts audio to plain text with the configured audio model.
func (s *AnalysisService) Transcribe(ctx context.Context, audio io.Reader, filename string) (text string, err error) {
	if !s.creds.HasAudio() {
		return "", &domain.ProviderCallError{Op: "transcription", Err: errors.New("no audio model or deployment is configured")}
	}

	defer func() {
		if r := recover(); r != nil {
			text, err = "", &domain.ProviderCallError{Op: "transcription", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.creds.AudioModel,
		FilePath: filename,
		Reader:   audio,
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		s.log.Error(ctx, "transcription of %s failed after %s: %v", filename, time.Since(start), err)
		return "", &domain.ProviderCallError{Op: "transcription", Err: err}
	}

	s.log.Info(ctx, "transcribed %s in %s", filename, time.Since(start))
	return strings.TrimSpace(resp.Text), nil
}

// AnalyzeAudio transcribes then analyzes, sequentially.
func (s *AnalysisService) AnalyzeAudio(ctx context.Context, audio io.Reader, filename string) (string, string, error) {
	transcript, err := s.Transcribe(ctx, audio, filename)
	if err != nil {
		return "", "", err
	}

	result, err := s.Analyze(ctx, transcript)
	if err != nil {
		return transcript, "", err
	}
	return transcript, result, nil
}

// Process runs the whole user action for one upload and stamps the result
// with the time it was generated.
func (s *AnalysisService) Process(ctx context.Context, upload domain.Upload) (domain.Analysis, error) {
	var transcript, result string

	switch upload.Kind {
	case domain.UploadAudio:
		data, name, err := s.prepareAudio(ctx, upload)
		if err != nil {
			return domain.Analysis{}, err
		}
		transcript, result, err = s.AnalyzeAudio(ctx, bytes.NewReader(data), name)
		if err != nil {
			return domain.Analysis{}, err
		}
	default:
		text, err := storage.DecodeTranscript(upload)
		if err != nil {
			return domain.Analysis{}, err
		}
		transcript = text
		result, err = s.Analyze(ctx, transcript)
		if err != nil {
			return domain.Analysis{}, err
		}
	}

	return domain.Analysis{
		ID:            uuid.NewString(),
		SourceName:    upload.Name,
		Transcript:    transcript,
		Result:        result,
		PromptVersion: s.prompt.Version,
		GeneratedAt:   time.Now(),
	}, nil
}

func (s *AnalysisService) prepareAudio(ctx context.Context, upload domain.Upload) ([]byte, string, error) {
	if !s.creds.HasAudio() {
		return nil, "", &domain.InputDecodeError{Name: upload.Name, Reason: "audio uploads are not enabled for this deployment"}
	}
	if len(upload.Data) <= storage.MaxTranscriptionBytes {
		return upload.Data, upload.Name, nil
	}
	if s.compressor == nil {
		return nil, "", &domain.InputDecodeError{Name: upload.Name, Reason: fmt.Sprintf("audio exceeds the %d MB transcription limit", storage.MaxTranscriptionBytes/1024/1024)}
	}

	s.log.Info(ctx, "compressing %s (%d bytes) before transcription", upload.Name, len(upload.Data))
	data, name, err := s.compressor.Compress(ctx, upload.Data, upload.Name)
	if err != nil {
		return nil, "", &domain.InputDecodeError{Name: upload.Name, Reason: err.Error()}
	}
	return data, name, nil
}
