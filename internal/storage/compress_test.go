package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

// fakeFFmpeg writes an output file whose size depends on the requested bitrate.
type fakeFFmpeg struct {
	sizes map[string]int
	calls []string
	fail  bool
}

func (f *fakeFFmpeg) Execute(ctx context.Context, name string, args ...string) (string, error) {
	if f.fail {
		return "", errors.New("exit status 1")
	}

	var bitrate string
	for i, arg := range args {
		if arg == "-b:a" && i+1 < len(args) {
			bitrate = args[i+1]
		}
	}
	f.calls = append(f.calls, bitrate)

	output := args[len(args)-1]
	return "", os.WriteFile(output, bytes.Repeat([]byte("x"), f.sizes[bitrate]), 0o600)
}

func TestCompressorFallsBackToSmallerProfile(t *testing.T) {
	runner := &fakeFFmpeg{sizes: map[string]int{"128k": 300, "96k": 200, "64k": 90}}
	tempDir := t.TempDir()
	c := newCompressor(runner, tempDir, 100)

	data, name, err := c.Compress(context.Background(), []byte("raw audio"), "standup.wav")
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}

	if name != "standup_compressed.mp3" {
		t.Fatalf("name = %q", name)
	}
	if len(data) != 90 {
		t.Fatalf("len(data) = %d, want 90", len(data))
	}
	if strings.Join(runner.calls, ",") != "128k,96k,64k" {
		t.Fatalf("calls = %v", runner.calls)
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestCompressorReportsLastError(t *testing.T) {
	c := newCompressor(&fakeFFmpeg{fail: true}, t.TempDir(), 100)

	if _, _, err := c.Compress(context.Background(), []byte("raw"), "a.mp3"); err == nil {
		t.Fatal("expected error when every profile fails")
	}
}
