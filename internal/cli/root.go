// Package cli implements the similarity command line: the HTTP server, offline
// scoring of request files and weight table inspection.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/gcbaptista/go-trademark-similarity/config"
)

const version = "1.0.0"

type rootOptions struct {
	configFile string
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "similarity",
		Short: "Trademark similarity - score and rank candidate marks against a query logo",
		Long: `similarity combines per-candidate similarity signals (visual embeddings, text,
color, font, shape) into one weighted percentage and ranks the candidates.

Example usage:
  similarity serve --config similarity.yaml   # Start the HTTP API
  similarity score --input "requests/*.json"  # Score request files offline
  similarity weights                          # Show and validate the weight table`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (YAML); environment variables take precedence")

	rootCmd.AddCommand(
		newServeCommand(opts),
		newScoreCommand(opts),
		newWeightsCommand(opts),
	)
	return rootCmd
}

// loadConfig loads configuration and joins every problem into one error.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, errs := config.Load(o.configFile)
	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, nil
}
