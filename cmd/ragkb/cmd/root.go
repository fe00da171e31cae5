// Package cmd provides the CLI commands for ragkb.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ragkb/ragkb/pkg/version"
)

var debugMode bool

// NewRootCmd creates the root command for the ragkb CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ragkb",
		Short: "Retrieval-augmented knowledge base engine",
		Long: `ragkb ingests documents into per-topic knowledge bases and answers
questions against them, combining HNSW vector search with a bounded
query orchestrator and a five-dimension confidence scorer.`,
		Version: version.Version,
	}

	cmd.SetVersionTemplate("ragkb version {{.Version}}\n")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging to ~/.ragkb/logs/")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newKBCmd())
	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
