package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ragkb/ragkb/internal/orchestrator"
	"github.com/ragkb/ragkb/internal/output"
)

func newAskCmd() *cobra.Command {
	var conversationID string

	cmd := &cobra.Command{
		Use:   "ask <kb-id> <question...>",
		Short: "Ask a question against a knowledge base",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kbID := args[0]
			question := strings.Join(args[1:], " ")

			a, cleanup, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			resp, err := a.Orchestrator.Run(cmd.Context(), orchestrator.Request{
				KBID:           kbID,
				Question:       question,
				ConversationID: conversationID,
			})
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			out := output.New(cmd.OutOrStdout())
			out.Status("", resp.Answer)
			out.Newline()
			out.Statusf("", "confidence: %.2f (%s)", resp.Confidence.Overall, resp.Confidence.Level)
			if resp.FromCache {
				out.Status("", "(served from cache)")
			}
			if resp.Error != "" {
				out.Warning(resp.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "fuse attached files from this conversation")
	return cmd
}
