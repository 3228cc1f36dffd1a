package http

import (
	"bytes"
	"embed"
	"encoding/base64"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.html
var templateFS embed.FS

// Raw HTML in model output is dropped by goldmark's default renderer.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

func loadTemplates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

func renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// The result travels back to /download base64 encoded so the browser cannot
// normalize its line endings.
func encodeResult(result string) string {
	return base64.StdEncoding.EncodeToString([]byte(result))
}

func decodeResult(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type pageData struct {
	Title        string
	Provider     string
	Model        string
	AudioEnabled bool
	Accept       string
	Error        string
	Halted       bool

	SourceName  string
	Transcript  string
	ResultHTML  template.HTML
	ResultB64   string
	Formats     []string
	Timestamp   string
	GeneratedAt string
}
