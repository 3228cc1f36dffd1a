package config

import (
	"github.com/kshitijlau/AIPM/internal/domain"
)

const SectionAzureOpenAI = "azure_openai"

// Flat keys.
const (
	KeyAzureAPIKey         = "AZURE_OPENAI_API_KEY"
	KeyAzureEndpoint       = "AZURE_OPENAI_ENDPOINT"
	KeyAzureChatDeployment = "AZURE_CHAT_DEPLOYMENT_NAME"
	KeyAzureAudioDeploy    = "AZURE_WHISPER_DEPLOYMENT_NAME"
	KeyAPIVersion          = "OPENAI_API_VERSION"
	KeyOpenAIAPIKey        = "OPENAI_API_KEY"
)

// Keys inside the azure_openai section.
const (
	SectionKeyAPIKey          = "api_key"
	SectionKeyEndpoint        = "endpoint"
	SectionKeyDeployment      = "deployment_name"
	SectionKeyAPIVersion      = "api_version"
	SectionKeyAudioDeployment = "whisper_deployment_name"
)

const (
	DefaultAPIVersion = "2024-02-15-preview"
	DefaultChatModel  = "gpt-4o"
	DefaultAudioModel = "whisper-1"
)

type requirement struct {
	key string
	dst *string
}

// ResolveCredentials picks exactly one provider from src.
//
// A non-empty azure_openai section always wins over flat keys. Among flat
// keys, any hosted-deployment key selects that provider and makes all of its
// keys mandatory; OPENAI_API_KEY is consulted only when none is set.
func ResolveCredentials(src Source) (domain.Credentials, error) {
	if src == nil {
		src = Layered{}
	}

	if section, ok := src.Section(SectionAzureOpenAI); ok {
		return resolveSection(section)
	}
	return resolveFlat(src)
}

func resolveSection(section Source) (domain.Credentials, error) {
	creds := domain.Credentials{Provider: domain.ProviderAzure}

	missing := lookupAll(section,
		requirement{SectionKeyAPIKey, &creds.APIKey},
		requirement{SectionKeyEndpoint, &creds.Endpoint},
		requirement{SectionKeyDeployment, &creds.ChatModel},
	)
	if len(missing) > 0 {
		return domain.Credentials{}, &domain.ConfigurationError{Section: SectionAzureOpenAI, Missing: missing}
	}

	creds.APIVersion = lookupOr(section, SectionKeyAPIVersion, DefaultAPIVersion)
	creds.AudioModel = lookupOr(section, SectionKeyAudioDeployment, "")
	return creds, nil
}

func resolveFlat(src Source) (domain.Credentials, error) {
	hosted := []string{KeyAzureAPIKey, KeyAzureEndpoint, KeyAzureChatDeployment}

	if anyPresent(src, hosted...) {
		creds := domain.Credentials{Provider: domain.ProviderAzure}
		missing := lookupAll(src,
			requirement{KeyAzureAPIKey, &creds.APIKey},
			requirement{KeyAzureEndpoint, &creds.Endpoint},
			requirement{KeyAzureChatDeployment, &creds.ChatModel},
		)
		if len(missing) > 0 {
			return domain.Credentials{}, &domain.ConfigurationError{Missing: missing}
		}

		creds.APIVersion = lookupOr(src, KeyAPIVersion, DefaultAPIVersion)
		creds.AudioModel = lookupOr(src, KeyAzureAudioDeploy, "")
		return creds, nil
	}

	if key, ok := src.Lookup(KeyOpenAIAPIKey); ok {
		return domain.Credentials{
			Provider:   domain.ProviderOpenAI,
			APIKey:     key,
			ChatModel:  DefaultChatModel,
			AudioModel: DefaultAudioModel,
		}, nil
	}

	return domain.Credentials{}, &domain.ConfigurationError{
		Missing:      hosted,
		Alternatives: []string{KeyOpenAIAPIKey, "[" + SectionAzureOpenAI + "] " + SectionKeyAPIKey + "/" + SectionKeyEndpoint + "/" + SectionKeyDeployment},
	}
}

func lookupAll(src Source, reqs ...requirement) []string {
	var missing []string
	for _, r := range reqs {
		val, ok := src.Lookup(r.key)
		if !ok {
			missing = append(missing, r.key)
			continue
		}
		*r.dst = val
	}
	return missing
}

func lookupOr(src Source, key, fallback string) string {
	if val, ok := src.Lookup(key); ok {
		return val
	}
	return fallback
}

func anyPresent(src Source, keys ...string) bool {
	for _, key := range keys {
		if _, ok := src.Lookup(key); ok {
			return true
		}
	}
	return false
}
