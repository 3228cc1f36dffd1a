package storage

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kshitijlau/AIPM/pkg/executor"
)

const (
	ffmpegBinary     = "ffmpeg"
	compressedSuffix = "_compressed"
	compressedExt    = ".mp3"
)

var compressionProfiles = []struct {
	bitrate    string
	sampleRate string
}{
	{bitrate: "128k", sampleRate: "44100"},
	{bitrate: "96k", sampleRate: "32000"},
	{bitrate: "64k", sampleRate: "22050"},
	{bitrate: "48k", sampleRate: "16000"},
	{bitrate: "32k", sampleRate: "12000"},
}

// Compressor re-encodes oversized audio with ffmpeg. Work files live in a
// temporary directory that is removed before Compress returns.
type Compressor struct {
	exec    executor.Executor
	tempDir string
	limit   int64
}

// NewCompressor fails when ffmpeg is not on PATH.
func NewCompressor(runner executor.Executor) (*Compressor, error) {
	if _, err := lookPath(ffmpegBinary); err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	return newCompressor(runner, "", MaxTranscriptionBytes), nil
}

var lookPath = exec.LookPath

func newCompressor(runner executor.Executor, tempDir string, limit int64) *Compressor {
	return &Compressor{exec: runner, tempDir: tempDir, limit: limit}
}

// Compress tries progressively smaller mono mp3 profiles until the output
// fits the transcription limit.
func (c *Compressor) Compress(ctx context.Context, data []byte, filename string) ([]byte, string, error) {
	dir, err := os.MkdirTemp(c.tempDir, "lighthouse-audio-*")
	if err != nil {
		return nil, "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input"+normalizeExtension(filename))
	if err := os.WriteFile(input, data, 0o600); err != nil {
		return nil, "", fmt.Errorf("write audio: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	name := base + compressedSuffix + compressedExt
	output := filepath.Join(dir, name)

	var lastErr error
	for _, profile := range compressionProfiles {
		_ = os.Remove(output)

		args := []string{
			"-y",
			"-i", input,
			"-vn",
			"-ac", "1",
			"-acodec", "libmp3lame",
			"-b:a", profile.bitrate,
			"-ar", profile.sampleRate,
			output,
		}
		if _, err := c.exec.Execute(ctx, ffmpegBinary, args...); err != nil {
			lastErr = fmt.Errorf("compress audio: %w", err)
			continue
		}

		info, err := os.Stat(output)
		if err != nil {
			lastErr = fmt.Errorf("stat compressed audio: %w", err)
			continue
		}
		if info.Size() > c.limit {
			lastErr = fmt.Errorf("compressed audio size %.2f MB exceeds limit of %.2f MB",
				float64(info.Size())/1024.0/1024.0,
				float64(c.limit)/1024.0/1024.0)
			continue
		}

		out, err := os.ReadFile(output)
		if err != nil {
			return nil, "", fmt.Errorf("read compressed audio: %w", err)
		}
		return out, name, nil
	}

	if lastErr != nil {
		return nil, "", lastErr
	}
	return nil, "", fmt.Errorf("compressed audio still exceeds the transcription limit")
}
