package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ragkb/ragkb/internal/ingest"
	"github.com/ragkb/ragkb/internal/output"
)

func newKBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Manage knowledge bases",
	}
	cmd.AddCommand(newKBCreateCmd())
	cmd.AddCommand(newKBListCmd())
	cmd.AddCommand(newKBDeleteCmd())
	cmd.AddCommand(newKBWatchCmd())
	return cmd
}

func newKBCreateCmd() *cobra.Command {
	var description string
	var tags []string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			k, err := a.KB.Create(cmd.Context(), args[0], description, tags)
			if err != nil {
				return fmt.Errorf("create knowledge base: %w", err)
			}

			out := output.New(cmd.OutOrStdout())
			out.Successf("created knowledge base %s (%s)", k.Name, k.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "knowledge base description")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable)")
	return cmd
}

func newKBListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List knowledge bases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			kbs, err := a.KB.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list knowledge bases: %w", err)
			}

			out := output.New(cmd.OutOrStdout())
			if len(kbs) == 0 {
				out.Status("", "no knowledge bases yet")
				return nil
			}
			rows := make([][2]string, 0, len(kbs))
			for _, k := range kbs {
				rows = append(rows, [2]string{k.ID, fmt.Sprintf("%s (%d docs, %d chunks, tags: %s)",
					k.Name, k.DocumentCount, k.TotalChunks, strings.Join(k.Tags, ","))})
			}
			out.Table(rows)
			return nil
		},
	}
	return cmd
}

func newKBDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Destroy a knowledge base and everything ingested into it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.KB.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete knowledge base: %w", err)
			}

			out := output.New(cmd.OutOrStdout())
			out.Successf("deleted knowledge base %s", args[0])
			return nil
		},
	}
	return cmd
}

func newKBWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <kb-id> <dir>",
		Short: "Keep a knowledge base in sync with a source directory",
		Long: `watch re-ingests files under dir whenever they change, debouncing
bursts of saves into one pass. It runs until interrupted (Ctrl-C).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kbID, dir := args[0], args[1]

			a, cleanup, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := ingest.NewWatcher(a.Pipeline, kbID, dir)
			out := output.New(cmd.OutOrStdout())
			out.Statusf("", "watching %s for knowledge base %s, press Ctrl-C to stop", dir, kbID)

			errCh := make(chan error, 1)
			go func() { errCh <- w.Start(ctx) }()

			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()

			for {
				select {
				case err := <-errCh:
					if err != nil {
						return fmt.Errorf("watch: %w", err)
					}
					out.Status("", "watcher stopped")
					return nil
				case <-ticker.C:
					snap := w.Status()
					out.Statusf("", "watch status: %s, %d paths reconciled in last batch", snap.Status, snap.FilesProcessed)
				}
			}
		},
	}
	return cmd
}
