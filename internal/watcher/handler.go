package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kshitijlau/AIPM/internal/domain"
	"github.com/kshitijlau/AIPM/internal/logger"
	"github.com/kshitijlau/AIPM/internal/services"
	"github.com/kshitijlau/AIPM/internal/storage"
)

// Analyzer runs one upload through transcription and analysis.
type Analyzer interface {
	Process(ctx context.Context, upload domain.Upload) (domain.Analysis, error)
}

// NewAnalysisHandler analyzes each file and writes the text download into
// outputDir under its Lighthouse_Requirements_<timestamp>.txt name.
func NewAnalysisHandler(analyzer Analyzer, exporter *services.Exporter, outputDir string, limits storage.Limits, log logger.Logger) EventHandler {
	return func(ctx context.Context, filePath string) error {
		f, err := os.Open(filePath)
		if err != nil {
			return fmt.Errorf("open %s: %w", filePath, err)
		}
		defer f.Close()

		upload, err := storage.ReadUpload(f, filepath.Base(filePath), limits)
		if err != nil {
			return err
		}

		analysis, err := analyzer.Process(ctx, upload)
		if err != nil {
			return err
		}

		dl, err := exporter.Export(analysis.Result, analysis.GeneratedAt, services.FormatText)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		out := uniquePath(outputDir, dl.Filename)
		if err := os.WriteFile(out, dl.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}

		log.Info(ctx, "Requirements for %s written to %s", upload.Name, out)
		return nil
	}
}

// uniquePath appends _2, _3, ... when two results share a timestamp.
func uniquePath(dir, name string) string {
	path := filepath.Join(dir, name)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
	}
}
