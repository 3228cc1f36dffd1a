package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kshitijlau/AIPM/internal/config"
	"github.com/kshitijlau/AIPM/internal/domain"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Show which provider the current configuration selects",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			secrets, err := config.LoadSecrets(cfg.SecretsFile)
			if err != nil {
				return err
			}
			return runCheck(cmd.OutOrStdout(), secrets)
		},
	}
}

func runCheck(w io.Writer, secrets config.Source) error {
	creds, err := config.ResolveCredentials(secrets)
	if err != nil {
		return err
	}

	shape := "flat keys"
	if _, ok := secrets.Section(config.SectionAzureOpenAI); ok {
		shape = "[" + config.SectionAzureOpenAI + "] section"
	}

	fmt.Fprintf(w, "Provider:    %s (%s)\n", creds.Provider, shape)
	fmt.Fprintf(w, "API key:     %s\n", maskAPIKey(creds.APIKey))
	if creds.Provider == domain.ProviderAzure {
		fmt.Fprintf(w, "Endpoint:    %s\n", creds.Endpoint)
		fmt.Fprintf(w, "API version: %s\n", creds.APIVersion)
	}
	fmt.Fprintf(w, "Chat model:  %s\n", creds.ChatModel)
	if creds.HasAudio() {
		fmt.Fprintf(w, "Audio model: %s\n", creds.AudioModel)
	} else {
		fmt.Fprintln(w, "Audio model: <not set> (transcript uploads only)")
	}
	return nil
}

func maskAPIKey(key string) string {
	if key == "" {
		return "<not set>"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
