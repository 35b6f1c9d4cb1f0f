package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/codingworldcup/internal/api/response"
)

func newMatchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "matches",
		Short: "List live matches on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.MatchList
			if err := client.Get("/api/v1/matches", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	var snapshot bool

	cmd := &cobra.Command{
		Use:   "status <match-id>",
		Short: "Show the live status of a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/matches/" + url.PathEscape(args[0])
			if snapshot {
				path += "?snapshot=true"
			}

			var result response.Match
			if err := client.Get(path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&snapshot, "snapshot", false, "Include the full snapshot of the last turn")

	return cmd
}
