package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kshitijlau/AIPM/internal/services"
	"github.com/kshitijlau/AIPM/internal/storage"
)

func analyzeCmd() *cobra.Command {
	var (
		out    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze one transcript or recording",
		Long: `Analyze a transcript (.txt) or, when an audio model is configured,
a recording (.mp3, .wav, .m4a).

Without --out the requirements are printed to stdout. When --out is a
directory the download is written there as Lighthouse_Requirements_<timestamp>.<format>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exportFormat, err := services.ParseFormat(format)
			if err != nil {
				return err
			}

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			svc, err := services.NewFromConfig(cfg, log)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open transcript: %w", err)
			}
			defer f.Close()

			upload, err := storage.ReadUpload(f, filepath.Base(args[0]), storage.Limits{
				Transcript: cfg.MaxUploadBytes,
				Audio:      cfg.MaxAudioBytes,
			})
			if err != nil {
				return err
			}

			analysis, err := svc.Process(context.Background(), upload)
			if err != nil {
				return err
			}

			if out == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), analysis.Result)
				return err
			}

			dl, err := services.NewExporter().Export(analysis.Result, analysis.GeneratedAt, exportFormat)
			if err != nil {
				return err
			}

			path := out
			if info, err := os.Stat(out); err == nil && info.IsDir() {
				path = filepath.Join(out, dl.Filename)
			}
			if err := os.WriteFile(path, dl.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Requirements written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory (default: print to stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "txt", "download format: txt, pdf or docx")
	return cmd
}
