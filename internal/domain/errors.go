package domain

import (
	"fmt"
	"strings"
)

// ConfigurationError means a required credential key is absent or empty.
// Processing must stop before any provider call is attempted.
type ConfigurationError struct {
	Section      string
	Missing      []string
	Alternatives []string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	if e.Section != "" {
		fmt.Fprintf(&b, "configuration section [%s] is incomplete: missing %s", e.Section, strings.Join(e.Missing, ", "))
	} else {
		fmt.Fprintf(&b, "missing required configuration keys: %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Alternatives) > 0 {
		fmt.Fprintf(&b, " (or set %s)", strings.Join(e.Alternatives, ", "))
	}
	return b.String()
}

// ProviderCallError wraps any failure raised while calling the transcription or
// chat-completion interface. Op names the call for logs.
type ProviderCallError struct {
	Op  string
	Err error
}

func (e *ProviderCallError) Error() string {
	return fmt.Sprintf("An error occurred while contacting the AI service: %v", e.Err)
}

func (e *ProviderCallError) Unwrap() error {
	return e.Err
}

// InputDecodeError rejects an upload before it reaches the provider.
type InputDecodeError struct {
	Name   string
	Reason string
}

func (e *InputDecodeError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid input %q: %s", e.Name, e.Reason)
}
