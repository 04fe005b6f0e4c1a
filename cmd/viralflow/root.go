package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sanhariharan/ViralFlow.ai/internal/app"
	"github.com/sanhariharan/ViralFlow.ai/internal/config"
	"github.com/sanhariharan/ViralFlow.ai/providers/observability/slogobs"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	options := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "viralflow",
		Short:         "Repurpose one piece of content for every social platform",
		Long:          `ViralFlow analyzes source content, drafts a post per platform, researches hashtags and images, polishes the drafts and suggests posting times.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&options.configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&options.logLevel, "log-level", "", "Log level (TRACE, DEBUG, INFO, WARN, ERROR); overrides LOG_LEVEL")

	rootCmd.AddCommand(
		newServeCmd(options),
		newGenerateCmd(options),
		newVisualsCmd(options),
	)
	return rootCmd
}

// loadConfig applies the persistent flags on top of the layered configuration.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		if _, err := slogobs.ParseLogLevel(o.logLevel); err != nil {
			return nil, err
		}
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

// build loads the configuration and wires the application, logging to the
// command's error stream so stdout stays machine readable.
func (o *rootOptions) build(cmd *cobra.Command) (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg, app.WithLogOutput(cmd.ErrOrStderr()))
}

func printJSON(output io.Writer, payload any) error {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// splitList splits a comma separated flag value, dropping blanks.
func splitList(value string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
