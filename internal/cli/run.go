package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/codingworldcup/internal/factory"
	"github.com/mcoot/codingworldcup/internal/model"
	"github.com/mcoot/codingworldcup/internal/services/match"
)

// matchFlags are the match settings shared by run and serve
type matchFlags struct {
	codec        string
	agentTimeout time.Duration
	players      int
	length       float64
	aiInterval   float64
	calcInterval float64
	running      float64
	passing      float64
}

func (f *matchFlags) register(cmd *cobra.Command) {
	defaults := match.DefaultConfig()

	cmd.Flags().StringVar(&f.codec, "codec", getEnvOrDefault("CWC_CODEC", defaults.Codec), "Wire format: json, msgpack (env: CWC_CODEC)")
	cmd.Flags().DurationVar(&f.agentTimeout, "agent-timeout", getEnvDuration("CWC_AGENT_TIMEOUT", defaults.AgentTimeout), "How long to wait for an agent each turn, 0 waits forever (env: CWC_AGENT_TIMEOUT)")
	cmd.Flags().IntVar(&f.players, "players", defaults.Engine.PlayersPerTeam, "Outfield players per team")
	cmd.Flags().Float64Var(&f.length, "length", defaults.Engine.GameLengthSeconds, "Match length in seconds of virtual time")
	cmd.Flags().Float64Var(&f.aiInterval, "ai-interval", defaults.Engine.AIUpdateIntervalSeconds, "Seconds of virtual time per turn")
	cmd.Flags().Float64Var(&f.calcInterval, "calc-interval", defaults.Engine.CalculationIntervalSeconds, "Seconds of virtual time per calculation tick")
	cmd.Flags().Float64Var(&f.running, "running-ability", defaults.Engine.RunningAbility, "Running ability of every player, 0-100")
	cmd.Flags().Float64Var(&f.passing, "passing-ability", defaults.Engine.PassingAbility, "Passing ability of every player, 0-100")
}

func (f *matchFlags) config() match.Config {
	c := match.DefaultConfig()
	c.Codec = f.codec
	c.AgentTimeout = f.agentTimeout
	c.Engine.PlayersPerTeam = f.players
	c.Engine.GameLengthSeconds = f.length
	c.Engine.AIUpdateIntervalSeconds = f.aiInterval
	c.Engine.CalculationIntervalSeconds = f.calcInterval
	c.Engine.RunningAbility = f.running
	c.Engine.PassingAbility = f.passing
	return c
}

func newRunCmd() *cobra.Command {
	var (
		flags     matchFlags
		team1     string
		team2     string
		matchID   string
		thinkTime time.Duration
		seed      uint64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play a local match between two built-in bots",
		Long: `Play a match between two built-in bot strategies and print the result.

Strategies:
  - random: every player moves, turns or kicks at random
  - chaser: the nearest player chases the ball and shoots when in range`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			matchCfg := flags.config()
			app, err := factory.New(factory.Config{
				Logger: cfg.Logger(cmd.ErrOrStderr()),
				Match:  &matchCfg,
				Seed:   seed,
			})
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			id := model.MatchID(matchID)
			if id == "" {
				id = app.NewMatchID()
			}

			result, err := app.PlayBots(ctx, id, team1, team2, thinkTime)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&team1, "team1", model.BotStrategyChaser, "Strategy for team1")
	cmd.Flags().StringVar(&team2, "team2", model.BotStrategyRandom, "Strategy for team2")
	cmd.Flags().StringVar(&matchID, "match-id", "", "Match ID (default: random)")
	cmd.Flags().DurationVar(&thinkTime, "think-time", 0, "Delay before each bot response")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for kick accuracy and bot choices (default: random)")

	return cmd
}
