package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragkb/ragkb/internal/mcpserver"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `serve exposes ask, ingest, and kb_* as MCP tools over the stdio
transport. Per the MCP protocol, stdout carries JSON-RPC exclusively; all
diagnostic output goes to the debug log file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			srv := mcpserver.New(a.Orchestrator, a.Pipeline, a.KB, a.Logger)
			if err := srv.Serve(cmd.Context()); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}
	return cmd
}
