package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/codingworldcup/internal/codec"
	"github.com/mcoot/codingworldcup/internal/dependencies/clock"
	"github.com/mcoot/codingworldcup/internal/dependencies/random"
	"github.com/mcoot/codingworldcup/internal/model"
	"github.com/mcoot/codingworldcup/internal/services/bot"
	"github.com/mcoot/codingworldcup/internal/services/match"
	"github.com/mcoot/codingworldcup/internal/services/turn"
	"github.com/mcoot/codingworldcup/internal/storage"
	"github.com/mcoot/codingworldcup/internal/storage/memory"
	redisstorage "github.com/mcoot/codingworldcup/internal/storage/redis"
	"github.com/mcoot/codingworldcup/internal/transport/ws"
	"github.com/mcoot/codingworldcup/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

const (
	matchIDLength   = 8
	matchIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Match settings shared by every match the app runs
	MatchConfig match.Config
	Codec       codec.Codec

	// Spectator events
	HubManager  *sse.HubManager
	Broadcaster *sse.Broadcaster

	Logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Match holds the match settings (optional)
	// If nil, defaults to match.DefaultConfig()
	Match *match.Config
	// Seed fixes the random source for repeatable matches
	// If zero, the source is seeded from crypto/rand
	Seed uint64
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	matchCfg := match.DefaultConfig()
	if cfg.Match != nil {
		matchCfg = *cfg.Match
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	var rnd random.Random = random.New()
	if cfg.Seed != 0 {
		rnd = random.NewSeeded(cfg.Seed)
	}

	return newWithDependencies(store, clock.New(), rnd, matchCfg, logger)
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	matchCfg match.Config,
	logger *slog.Logger,
) (*App, error) {
	if err := matchCfg.Validate(); err != nil {
		return nil, err
	}
	c, err := codec.ByName(matchCfg.Codec)
	if err != nil {
		return nil, err
	}

	hubManager := sse.NewHubManager(logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		MatchConfig: matchCfg,
		Codec:       c,
		HubManager:  hubManager,
		Broadcaster: sse.NewBroadcaster(hubManager, logger),
		Logger:      logger,
	}, nil
}

// Close releases the storage backend's connections, if it holds any
func (a *App) Close() error {
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// NewMatchID mints a new match ID
func (a *App) NewMatchID() model.MatchID {
	return model.MatchID(a.Random.String(matchIDLength, matchIDAlphabet))
}

// NewLobby creates a lobby whose agents speak the app's codec
func (a *App) NewLobby() *ws.Lobby {
	return ws.NewLobby(a.Codec, a.Logger)
}

// NewRunner creates a runner for a match between the given agents, with
// spectator events published to the match's hub
func (a *App) NewRunner(id model.MatchID, agents []turn.Agent) (*match.Runner, error) {
	return match.NewRunner(id, a.MatchConfig, agents, a.Storage, a.Broadcaster, a.Clock, a.Random, a.Logger)
}

// PlayBots plays a match between two built-in strategies
func (a *App) PlayBots(ctx context.Context, id model.MatchID, strategy1, strategy2 string, thinkTime time.Duration) (*model.MatchResult, error) {
	names := map[model.AgentID]string{model.AgentTeam1: strategy1, model.AgentTeam2: strategy2}

	bots := make([]*bot.Agent, 0, len(names))
	for _, agentID := range model.AgentIDs() {
		strategy, err := bot.NewStrategy(names[agentID], a.Random)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", agentID, err)
		}
		bots = append(bots, bot.NewAgent(agentID, strategy, a.Codec, a.Clock, thinkTime, a.Logger))
	}

	agents := make([]turn.Agent, len(bots))
	for i, b := range bots {
		agents[i] = b
	}
	runner, err := a.NewRunner(id, agents)
	if err != nil {
		return nil, err
	}
	for _, b := range bots {
		b.Attach(runner.Deliver)
	}
	return a.play(ctx, runner)
}

// PlayLobby waits for two agents to join the lobby and plays a match between
// them. The lobby is reset afterwards, ready for the next pair.
func (a *App) PlayLobby(ctx context.Context, lobby *ws.Lobby, id model.MatchID) (*model.MatchResult, error) {
	defer lobby.Reset()

	a.Logger.Info("waiting for agents", slog.String("match_id", string(id)))
	connected, err := lobby.Await(ctx)
	if err != nil {
		return nil, err
	}

	runner, err := a.NewRunner(id, ws.TurnAgents(connected))
	if err != nil {
		return nil, err
	}
	for _, agent := range connected {
		agent.Attach(runner.Deliver)
	}
	return a.play(ctx, runner)
}

func (a *App) play(ctx context.Context, runner *match.Runner) (*model.MatchResult, error) {
	a.HubManager.GetOrCreateHub(runner.ID())
	defer a.HubManager.RemoveHub(runner.ID())

	return runner.Run(ctx)
}
