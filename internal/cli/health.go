package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/codingworldcup/internal/api/response"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that a match server can report match status",
		Long: `Ask the match server whether its status store is readable and how many
matches it is tracking. Exits non-zero when the store is unreachable, in which
case spectators would see no scores.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var health response.Health
			if err := client.Get("/api/v1/health", &health); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(health)
			return nil
		},
	}
}
