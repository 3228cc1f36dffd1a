package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kshitijlau/AIPM/internal/domain"
	"github.com/kshitijlau/AIPM/internal/logger"
	"github.com/kshitijlau/AIPM/internal/services"
	"github.com/kshitijlau/AIPM/internal/storage"
)

type fakeAnalyzer struct {
	result string
	err    error
	seen   []domain.Upload
}

func (f *fakeAnalyzer) Process(ctx context.Context, upload domain.Upload) (domain.Analysis, error) {
	f.seen = append(f.seen, upload)
	if f.err != nil {
		return domain.Analysis{}, f.err
	}
	return domain.Analysis{
		SourceName:  upload.Name,
		Result:      f.result,
		GeneratedAt: time.Date(2024, 3, 5, 14, 7, 9, 0, time.Local),
	}, nil
}

var testLimits = storage.Limits{Transcript: 1 << 20, Audio: 1 << 20}

func TestIsSupported(t *testing.T) {
	tests := map[string]bool{
		"/in/standup.txt":  true,
		"/in/call.M4A":     true,
		"/in/demo.mp4":     false,
		"/in/.standup.txt": false,
		"/in/notes":        false,
	}
	for path, want := range tests {
		if got := isSupported(path); got != want {
			t.Fatalf("isSupported(%q)=%v, want %v", path, got, want)
		}
	}
}

func TestAnalysisHandlerWritesDownload(t *testing.T) {
	in, out := t.TempDir(), filepath.Join(t.TempDir(), "out")
	src := filepath.Join(in, "standup.txt")
	if err := os.WriteFile(src, []byte("Alice: ship it"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	analyzer := &fakeAnalyzer{result: "# Summary\n"}
	handler := NewAnalysisHandler(analyzer, services.NewExporter(), out, testLimits, logger.Discard())

	if err := handler(context.Background(), src); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if err := handler(context.Background(), src); err != nil {
		t.Fatalf("handle again: %v", err)
	}

	first, err := os.ReadFile(filepath.Join(out, "Lighthouse_Requirements_20240305_140709.txt"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(first) != "# Summary\n" {
		t.Fatalf("unexpected output %q", first)
	}
	if _, err := os.Stat(filepath.Join(out, "Lighthouse_Requirements_20240305_140709_2.txt")); err != nil {
		t.Fatalf("expected second output not to overwrite the first: %v", err)
	}
	if analyzer.seen[0].Kind != domain.UploadTranscript {
		t.Fatalf("unexpected upload kind %q", analyzer.seen[0].Kind)
	}
}

func TestAnalysisHandlerPropagatesError(t *testing.T) {
	in := t.TempDir()
	src := filepath.Join(in, "standup.txt")
	if err := os.WriteFile(src, []byte("Alice: ship it"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	cause := &domain.ProviderCallError{Op: "chat completion", Err: errors.New("quota exceeded")}
	handler := NewAnalysisHandler(&fakeAnalyzer{err: cause}, services.NewExporter(), t.TempDir(), testLimits, logger.Discard())

	err := handler(context.Background(), src)
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestWatcherHandlesNewFiles(t *testing.T) {
	dir := t.TempDir()
	handled := make(chan string, 4)

	w, err := New(dir, func(ctx context.Context, path string) error {
		handled <- filepath.Base(path)
		return nil
	}, logger.Discard())
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	w.(*implWatcher).settle = 0
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// give the event loop a moment to start
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "ignored.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "standup.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case name := <-handled:
		if name != "standup.txt" {
			t.Fatalf("unexpected file handled: %s", name)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for watcher")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
