package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragkb/ragkb/internal/ingest"
	"github.com/ragkb/ragkb/internal/output"
)

func newIngestCmd() *cobra.Command {
	var persistSource bool

	cmd := &cobra.Command{
		Use:   "ingest <kb-id> <path>",
		Short: "Ingest a source file into a knowledge base",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kbID, path := args[0], args[1]

			a, cleanup, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := a.Pipeline.IngestFile(cmd.Context(), kbID, path, ingest.Options{
				PersistSourceCopy: persistSource,
			})
			if err != nil {
				return fmt.Errorf("ingest %s: %w", path, err)
			}

			out := output.New(cmd.OutOrStdout())
			out.Successf("ingested %s as document %s (%d chunks)", summary.Filename, summary.DocumentID, summary.ChunkCount)
			return nil
		},
	}

	cmd.Flags().BoolVar(&persistSource, "persist-source", false, "keep a durable copy of the source file")
	return cmd
}
