package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/codingworldcup/internal/api"
	"github.com/mcoot/codingworldcup/internal/factory"
	"github.com/mcoot/codingworldcup/internal/services/match"
	redisstorage "github.com/mcoot/codingworldcup/internal/storage/redis"
)

// ServeOptions configures a match server
type ServeOptions struct {
	Host        string
	Port        int
	StorageType string
	RedisURL    string
	RedisPrefix string
	Match       match.Config

	// Matches is how many matches to host before returning. Zero hosts
	// matches until ctx is cancelled.
	Matches int

	// OnListening, if set, is called with the bound address once the
	// server accepts connections
	OnListening func(addr string)
}

// DefaultServeOptions reads the server settings from the environment
func DefaultServeOptions() ServeOptions {
	m := match.DefaultConfig()
	m.Codec = getEnvOrDefault("CWC_CODEC", m.Codec)
	m.AgentTimeout = getEnvDuration("CWC_AGENT_TIMEOUT", m.AgentTimeout)

	return ServeOptions{
		Port:        getEnvInt("CWC_PORT", api.DefaultServerConfig().Port),
		StorageType: os.Getenv("STORAGE_TYPE"),
		RedisURL:    os.Getenv("REDIS_URL"),
		RedisPrefix: getEnvOrDefault("CWC_REDIS_PREFIX", redisstorage.DefaultConfig().KeyPrefix),
		Match:       m,
	}
}

// Serve hosts matches for agents connecting over websockets, one match at a
// time, with live status and events on the HTTP API
func Serve(ctx context.Context, opts ServeOptions, logger *slog.Logger) error {
	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: opts.StorageType,
		Match:       &opts.Match,
	}
	if opts.StorageType == factory.StorageTypeRedis {
		if opts.RedisURL == "" {
			return errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = opts.RedisURL
		if opts.RedisPrefix != "" {
			redisCfg.KeyPrefix = opts.RedisPrefix
		}
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() { _ = app.Close() }()

	lobby := app.NewLobby()
	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Storage:    app.Storage,
		HubManager: app.HubManager,
		Agents:     lobby,
	})

	serverCfg := api.DefaultServerConfig()
	serverCfg.Host = opts.Host
	serverCfg.Port = opts.Port
	server := api.NewServer(router, serverCfg, logger)
	if err := server.Listen(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var serverErr error
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		if serverErr = server.Start(); serverErr != nil {
			cancel()
		}
	}()
	if opts.OnListening != nil {
		opts.OnListening(server.Addr())
	}

	for played := 0; opts.Matches == 0 || played < opts.Matches; played++ {
		id := app.NewMatchID()
		result, err := app.PlayLobby(ctx, lobby, id)
		if ctx.Err() != nil {
			break
		}
		if err != nil {
			// The agents are dropped; the next pair gets a fresh match
			logger.Error("match aborted",
				slog.String("match_id", string(id)),
				slog.String("error", err.Error()),
			)
			continue
		}
		logger.Info("match result",
			slog.String("match_id", string(id)),
			slog.String("winner", string(result.Winner())),
			slog.Int("team1_score", result.Score.Team1),
			slog.Int("team2_score", result.Score.Team2),
		)
	}

	if err := server.Shutdown(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	<-serverDone
	return serverErr
}

func newServeCmd() *cobra.Command {
	var (
		flags   matchFlags
		opts    = DefaultServeOptions()
		matches int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host matches for agents connecting over websockets",
		Long: `Start the HTTP server and host matches one after another.

Agents connect to /agents/team1 and /agents/team2. A match starts as soon as
both slots are filled; when it ends both agents are disconnected and the slots
open for the next match. Live status is served on /api/v1/matches.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts.Match = flags.config()
			opts.Matches = matches
			opts.OnListening = func(addr string) {
				NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(fmt.Sprintf("Listening on %s", addr))
			}
			return Serve(ctx, opts, cfg.Logger(cmd.ErrOrStderr()))
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&opts.Host, "host", opts.Host, "Host to listen on")
	cmd.Flags().IntVar(&opts.Port, "port", opts.Port, "Port to listen on (env: CWC_PORT)")
	cmd.Flags().StringVar(&opts.StorageType, "storage", opts.StorageType, "Status storage: memory, redis (env: STORAGE_TYPE)")
	cmd.Flags().StringVar(&opts.RedisURL, "redis-url", opts.RedisURL, "Redis URL (env: REDIS_URL)")
	cmd.Flags().StringVar(&opts.RedisPrefix, "redis-prefix", opts.RedisPrefix, "Prefix for match status keys (env: CWC_REDIS_PREFIX)")
	cmd.Flags().IntVar(&matches, "matches", 0, "Number of matches to host, 0 for no limit")

	return cmd
}
