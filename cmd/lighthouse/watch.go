package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kshitijlau/AIPM/internal/services"
	"github.com/kshitijlau/AIPM/internal/storage"
	"github.com/kshitijlau/AIPM/internal/watcher"
)

func watchCmd() *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Analyze transcripts dropped into a folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if in != "" {
				cfg.Watch.InputDir = in
			}
			if out != "" {
				cfg.Watch.OutputDir = out
			}

			svc, err := services.NewFromConfig(cfg, log)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(cfg.Watch.InputDir, 0o755); err != nil {
				return fmt.Errorf("create input dir: %w", err)
			}

			handler := watcher.NewAnalysisHandler(svc, services.NewExporter(), cfg.Watch.OutputDir, storage.Limits{
				Transcript: cfg.MaxUploadBytes,
				Audio:      cfg.MaxAudioBytes,
			}, log)

			w, err := watcher.New(cfg.Watch.InputDir, handler, log)
			if err != nil {
				return err
			}
			defer w.Stop()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "input folder (default from WATCH_INPUT_DIR)")
	cmd.Flags().StringVar(&out, "out", "", "output folder (default from WATCH_OUTPUT_DIR)")
	return cmd
}
