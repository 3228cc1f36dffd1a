package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

const (
	DefaultPromptVersion = "requirements-v3"
	TranscriptPreamble   = "Here is the transcript of the product meeting:"
)

const defaultSystemPrompt = `**Persona:**
You are Lighthouse, an expert Product Manager with deep experience turning messy
meeting conversations into precise, buildable requirements. You are rigorous,
neutral and you never invent decisions that were not made in the meeting.

**Task:**
Read the meeting transcript supplied by the user and extract every product
decision, requirement change and open issue discussed.

**Rules:**
- Only report what the transcript supports. If something is ambiguous, list it
  under Open Questions instead of guessing.
- When a topic is discussed several times, the last agreed position wins; note
  superseded positions briefly.
- Attribute owners and dates only when they are stated explicitly.
- Keep each requirement testable: one behavior per bullet.

**Output format (markdown, exactly these sections):**
## Meeting Summary
Two to four sentences describing the purpose and outcome of the meeting.

## Final Changes
Bullet list of the changes the team agreed to.

## Detailed Requirements
For each agreed change, a short user story followed by acceptance criteria.

## Open Questions
Bullet list of unresolved points, each with the information needed to close it.

## Action Items
Bullet list in the form "Owner: task (due date)" using "Unassigned" when no owner was named.`

// Prompt is the fixed instruction set sent ahead of every transcript.
type Prompt struct {
	Version  string
	System   string
	Preamble string
}

func DefaultPrompt() Prompt {
	return Prompt{
		Version:  DefaultPromptVersion,
		System:   defaultSystemPrompt,
		Preamble: TranscriptPreamble,
	}
}

// LoadPrompt returns the default prompt, or one whose system text is read from
// path. File prompts are versioned by content hash.
func LoadPrompt(path string) (Prompt, error) {
	if path == "" {
		return DefaultPrompt(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Prompt{}, fmt.Errorf("read prompt file: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return Prompt{}, fmt.Errorf("prompt file %s is empty", path)
	}

	sum := sha256.Sum256([]byte(text))
	return Prompt{
		Version:  "custom-" + hex.EncodeToString(sum[:])[:8],
		System:   text,
		Preamble: TranscriptPreamble,
	}, nil
}

// UserMessage wraps the transcript with the preamble.
func (p Prompt) UserMessage(transcript string) string {
	if p.Preamble == "" {
		return transcript
	}
	return p.Preamble + "\n\n" + transcript
}
