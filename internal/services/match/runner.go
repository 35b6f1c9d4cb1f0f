package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/codingworldcup/internal/codec"
	"github.com/mcoot/codingworldcup/internal/dependencies/clock"
	"github.com/mcoot/codingworldcup/internal/dependencies/random"
	"github.com/mcoot/codingworldcup/internal/engine"
	"github.com/mcoot/codingworldcup/internal/model"
	"github.com/mcoot/codingworldcup/internal/services/turn"
	"github.com/mcoot/codingworldcup/internal/storage"
)

// inboxSize bounds the responses queued between the transports and the runner
const inboxSize = 16

// Publisher receives match events for spectators
type Publisher interface {
	Publish(event model.Event)
}

type delivery struct {
	agentID    model.AgentID
	payload    []byte
	receivedAt time.Time
}

// Runner plays one match between two agents.
//
// All game state is owned by the goroutine calling Run. Transports hand
// agent responses over with Deliver, which is safe to call from any goroutine.
type Runner struct {
	id      model.MatchID
	cfg     Config
	game    *engine.Game
	sync    *turn.Synchronizer
	storage storage.Storage
	events  Publisher
	clock   clock.Clock
	logger  *slog.Logger

	inbox    chan delivery
	stopped  chan struct{}
	stopOnce sync.Once

	phase     Phase
	turns     int
	completed *turn.Result
	timedOut  map[model.AgentID]int
}

// NewRunner creates a runner for a new match. Both agents must already be
// connected; the runner starts sending to them when Run is called.
func NewRunner(
	id model.MatchID,
	cfg Config,
	agents []turn.Agent,
	storage storage.Storage,
	events Publisher,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c, err := codec.ByName(cfg.Codec)
	if err != nil {
		return nil, err
	}
	game, err := engine.New(cfg.Engine, random)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		id:       id,
		cfg:      cfg,
		game:     game,
		storage:  storage,
		events:   events,
		clock:    clock,
		logger:   logger.With(slog.String("component", "match"), slog.String("match_id", string(id))),
		inbox:    make(chan delivery, inboxSize),
		stopped:  make(chan struct{}),
		timedOut: make(map[model.AgentID]int),
	}

	r.sync, err = turn.New(agents, c, clock, logger, r.onTurnComplete)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ID returns the match ID
func (r *Runner) ID() model.MatchID {
	return r.id
}

// Game returns the match's game. It must not be used while Run is in progress.
func (r *Runner) Game() *engine.Game {
	return r.game
}

// Deliver hands an agent's raw response to the runner
func (r *Runner) Deliver(agentID model.AgentID, payload []byte) error {
	select {
	case <-r.stopped:
		return model.ErrMatchEnded
	default:
	}

	select {
	case r.inbox <- delivery{agentID: agentID, payload: payload, receivedAt: r.clock.Now()}:
		return nil
	case <-r.stopped:
		return model.ErrMatchEnded
	}
}

// Done is closed once Run has returned
func (r *Runner) Done() <-chan struct{} {
	return r.stopped
}

// Run plays the match to full time. It returns early with the context's
// error if ctx is cancelled, or if a snapshot cannot be sent to an agent.
func (r *Runner) Run(ctx context.Context) (*model.MatchResult, error) {
	defer r.stopOnce.Do(func() { close(r.stopped) })

	r.logger.Info("match started",
		slog.Int("players_per_team", r.cfg.Engine.PlayersPerTeam),
		slog.Float64("game_length_seconds", r.cfg.Engine.GameLengthSeconds),
		slog.String("codec", r.cfg.Codec),
	)

	r.enter(NewKickoff())
	for r.phase.Name() != model.PhaseEnded {
		if r.phase.Request() == "" {
			r.enter(r.phase.Next(r.game))
			continue
		}
		if err := r.playTurn(ctx); err != nil {
			return nil, err
		}
	}

	r.saveStatus(ctx)
	result := r.result()
	r.publish(model.EventMatchFinished, result)
	r.logger.Info("match finished",
		slog.Int("team1_score", result.Score.Team1),
		slog.Int("team2_score", result.Score.Team2),
		slog.Int("turns", result.Turns),
		slog.Float64("team1_processing_seconds", result.ProcessingTimeSeconds[model.AgentTeam1]),
		slog.Float64("team2_processing_seconds", result.ProcessingTimeSeconds[model.AgentTeam2]),
	)
	return result, nil
}

// playTurn sends one snapshot, runs the turn's ticks and applies both
// agents' responses
func (r *Runner) playTurn(ctx context.Context) error {
	snapshot := r.game.Snapshot(r.phase.Request(), r.phase.Name(), true)
	r.completed = nil
	if err := r.sync.BeginTurn(snapshot); err != nil {
		return fmt.Errorf("starting turn %d: %w", r.turns+1, err)
	}

	if r.phase.Ticks() {
		r.runTicks()
	}

	if err := r.await(ctx); err != nil {
		return err
	}
	r.apply(*r.completed)
	r.turns++
	r.saveStatus(ctx)
	r.publish(model.EventTurnComplete, r.status())

	if next := r.phase.Next(r.game); next != r.phase {
		r.enter(next)
	}
	return nil
}

// runTicks advances the game by one AI interval, stopping early on a goal
func (r *Runner) runTicks() {
	before := r.game.Score()
	for range r.cfg.Engine.TicksPerTurn() {
		r.game.Calculate()
		if r.game.PendingGoal() != "" {
			break
		}
	}

	scorer := r.game.PendingGoal()
	if scorer == "" || r.game.Score() == before {
		return
	}
	payload := model.GoalPayload{
		Scorer:      scorer,
		Score:       r.game.Score(),
		TimeSeconds: r.game.TimeSeconds(),
	}
	r.logger.Info("goal",
		slog.String("scorer", string(scorer)),
		slog.Int("team1_score", payload.Score.Team1),
		slog.Int("team2_score", payload.Score.Team2),
		slog.Float64("time_seconds", payload.TimeSeconds),
	)
	r.publish(model.EventGoal, payload)
}

// await feeds inbox responses to the synchronizer until the turn completes
func (r *Runner) await(ctx context.Context) error {
	var timeout <-chan time.Time
	if r.cfg.AgentTimeout > 0 {
		timeout = r.clock.After(r.cfg.AgentTimeout)
	}

	for r.completed == nil {
		select {
		case d := <-r.inbox:
			if err := r.sync.OnResponseAt(d.agentID, d.payload, d.receivedAt); err != nil {
				r.logger.Warn("response rejected",
					slog.String("agent", string(d.agentID)),
					slog.String("error", err.Error()),
				)
			}
		case <-timeout:
			r.sync.Expire()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (r *Runner) onTurnComplete(result turn.Result) {
	r.completed = &result
}

// apply merges both agents' commands into the game. Bad commands are logged
// and skipped; they never stop the match.
func (r *Runner) apply(result turn.Result) {
	for _, id := range model.AgentIDs() {
		resp := result.Response(id)
		if resp.TimedOut {
			r.timedOut[id]++
		}
		if resp.Err != nil {
			continue
		}
		if err := r.game.ApplyCommands(id, resp.Commands); err != nil {
			r.logCommandErrors(id, err)
		}
	}
}

func (r *Runner) logCommandErrors(id model.AgentID, err error) {
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	for _, e := range errs {
		attrs := []any{
			slog.String("agent", string(id)),
			slog.String("error", e.Error()),
		}
		var cmdErr *model.CommandError
		if errors.As(e, &cmdErr) {
			attrs = append(attrs,
				slog.Int("player", cmdErr.PlayerNumber),
				slog.String("field", cmdErr.Field),
			)
		}
		r.logger.Warn("invalid command", attrs...)
	}
}

func (r *Runner) enter(next Phase) {
	var from model.Phase
	if r.phase != nil {
		from = r.phase.Name()
	}
	next.Enter(r.game)
	r.phase = next

	r.logger.Info("phase changed",
		slog.String("from", string(from)),
		slog.String("to", string(next.Name())),
		slog.Float64("time_seconds", r.game.TimeSeconds()),
	)
	r.publish(model.EventPhaseChanged, model.PhaseChangedPayload{From: from, To: next.Name()})
}

// Phase returns the name of the current phase
func (r *Runner) Phase() model.Phase {
	if r.phase == nil {
		return ""
	}
	return r.phase.Name()
}

func (r *Runner) status() *model.MatchStatus {
	snapshot := r.game.Snapshot(r.phase.Request(), r.phase.Name(), true)
	snapshot.TurnID = r.sync.TurnID()
	return &model.MatchStatus{
		ID:                    r.id,
		Phase:                 r.phase.Name(),
		Turn:                  r.turns,
		TimeSeconds:           r.game.TimeSeconds(),
		Score:                 r.game.Score(),
		ProcessingTimeSeconds: r.sync.ProcessingTimes(),
		Snapshot:              snapshot,
		UpdatedAt:             r.clock.Now(),
	}
}

func (r *Runner) saveStatus(ctx context.Context) {
	if r.storage == nil {
		return
	}
	if err := r.storage.SaveMatchStatus(ctx, r.status()); err != nil {
		r.logger.Warn("failed to save match status",
			slog.Int("turn", r.turns),
			slog.String("error", err.Error()),
		)
	}
}

func (r *Runner) publish(eventType model.EventType, payload any) {
	if r.events == nil {
		return
	}
	r.events.Publish(model.Event{
		Type:      eventType,
		Timestamp: r.clock.Now(),
		MatchID:   r.id,
		Payload:   payload,
	})
}

func (r *Runner) result() *model.MatchResult {
	timedOut := make(map[model.AgentID]int, len(r.timedOut))
	for id, n := range r.timedOut {
		timedOut[id] = n
	}
	return &model.MatchResult{
		ID:                    r.id,
		Score:                 r.game.Score(),
		Turns:                 r.turns,
		TimeSeconds:           r.game.TimeSeconds(),
		ProcessingTimeSeconds: r.sync.ProcessingTimes(),
		TimedOutTurns:         timedOut,
	}
}
