package domain

import "time"

// ProviderKind tags which backend a set of credentials targets.
type ProviderKind string

const (
	// ProviderAzure is a tenant endpoint where a named deployment stands in for a model.
	ProviderAzure ProviderKind = "azure_openai"
	// ProviderOpenAI is the public API reached with a single key.
	ProviderOpenAI ProviderKind = "openai"
)

// Credentials is resolved once at startup and never mutated afterwards.
type Credentials struct {
	Provider   ProviderKind
	APIKey     string
	Endpoint   string
	ChatModel  string
	AudioModel string
	APIVersion string
}

// HasAudio reports whether a transcription model or deployment is configured.
func (c Credentials) HasAudio() bool {
	return c.AudioModel != ""
}

type Analysis struct {
	ID            string    `json:"id"`
	SourceName    string    `json:"sourceName"`
	Transcript    string    `json:"transcript,omitempty"`
	Result        string    `json:"result"`
	PromptVersion string    `json:"promptVersion"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

type UploadKind string

const (
	UploadTranscript UploadKind = "transcript"
	UploadAudio      UploadKind = "audio"
)

// Upload is one file handed over by the user. It lives for a single action.
type Upload struct {
	Name        string
	Kind        UploadKind
	ContentType string
	Data        []byte
}
