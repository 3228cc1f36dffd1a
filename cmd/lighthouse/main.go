package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kshitijlau/AIPM/internal/config"
	"github.com/kshitijlau/AIPM/internal/domain"
	httpserver "github.com/kshitijlau/AIPM/internal/http"
	"github.com/kshitijlau/AIPM/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=x.y.z"
var version = "dev"

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:           "lighthouse",
	Short:         "Turn product meeting transcripts into structured requirements",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		analyzeCmd(),
		watchCmd(),
		checkCmd(),
		versionCmd(),
	)
}

// exitCode is 2 for configuration problems and 1 for everything else.
func exitCode(err error) int {
	var cfgErr *domain.ConfigurationError
	if errors.As(err, &cfgErr) {
		return 2
	}
	return 1
}

func loadConfig() (config.Config, logger.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, logger.New(cfg.LogLevel), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			srv, err := httpserver.NewServer(cfg, log)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			if err := srv.Run(); err != nil {
				return fmt.Errorf("server stopped with error: %w", err)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print application version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lighthouse %s\n", version)
		},
	}
}
