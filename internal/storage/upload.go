package storage

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/kshitijlau/AIPM/internal/domain"
)

// MaxTranscriptionBytes is the provider's upload cap for one transcription call.
const MaxTranscriptionBytes = 25 * 1024 * 1024

var uploadKinds = map[string]domain.UploadKind{
	".txt": domain.UploadTranscript,
	".mp3": domain.UploadAudio,
	".wav": domain.UploadAudio,
	".m4a": domain.UploadAudio,
}

var mimeExtensionFallback = map[string]string{
	"text/plain":  ".txt",
	"audio/mpeg":  ".mp3",
	"audio/mp3":   ".mp3",
	"audio/mp4":   ".m4a",
	"audio/x-m4a": ".m4a",
	"video/mp4":   ".m4a",
	"audio/wav":   ".wav",
	"audio/wave":  ".wav",
	"audio/x-wav": ".wav",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Limits caps upload sizes per kind.
type Limits struct {
	Transcript int64
	Audio      int64
}

// ReadUpload reads an uploaded file into memory and classifies it by
// extension, falling back to the sniffed content type.
func ReadUpload(r io.Reader, filename string, limits Limits) (domain.Upload, error) {
	ceiling := limits.Transcript
	if limits.Audio > ceiling {
		ceiling = limits.Audio
	}

	data, err := readWithLimit(r, ceiling)
	if err != nil {
		return domain.Upload{}, &domain.InputDecodeError{Name: filename, Reason: err.Error()}
	}

	contentType := http.DetectContentType(data)
	ext := normalizeExtension(filename)
	if ext == "" {
		ext = fallbackExtension(contentType)
	}

	kind, ok := uploadKinds[ext]
	if !ok {
		return domain.Upload{}, &domain.InputDecodeError{Name: filename, Reason: "unsupported file type (expected .txt, .mp3, .wav or .m4a)"}
	}

	limit := limits.Transcript
	if kind == domain.UploadAudio {
		limit = limits.Audio
	}
	if limit > 0 && int64(len(data)) > limit {
		return domain.Upload{}, &domain.InputDecodeError{Name: filename, Reason: fmt.Sprintf("file exceeds maximum size of %d bytes", limit)}
	}

	return domain.Upload{
		Name:        filename,
		Kind:        kind,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// DecodeTranscript returns the upload as text. Invalid UTF-8 and blank
// transcripts are rejected.
func DecodeTranscript(upload domain.Upload) (string, error) {
	data := bytes.TrimPrefix(upload.Data, utf8BOM)
	if !utf8.Valid(data) {
		return "", &domain.InputDecodeError{Name: upload.Name, Reason: "file is not valid UTF-8 text"}
	}

	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", &domain.InputDecodeError{Name: upload.Name, Reason: "transcript is empty"}
	}
	return text, nil
}

func readWithLimit(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds maximum size of %d bytes", limit)
	}
	return data, nil
}

func normalizeExtension(filename string) string {
	return strings.ToLower(strings.TrimSpace(filepath.Ext(filename)))
}

func fallbackExtension(contentType string) string {
	base, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	return mimeExtensionFallback[strings.TrimSpace(base)]
}
