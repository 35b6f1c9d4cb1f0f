package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/codingworldcup/internal/codec"
	"github.com/mcoot/codingworldcup/internal/dependencies/clock"
	"github.com/mcoot/codingworldcup/internal/model"
)

// DeliverFunc hands a response back to the match, usually Runner.Deliver
type DeliverFunc func(agentID model.AgentID, payload []byte) error

// Agent is an in-process agent that plays a strategy. It answers each
// snapshot from its own goroutine, after an optional thinking delay, the same
// way a remote agent would.
type Agent struct {
	id        model.AgentID
	strategy  Strategy
	codec     codec.Codec
	clock     clock.Clock
	thinkTime time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	deliver DeliverFunc
}

// NewAgent creates a bot agent for one team
func NewAgent(
	id model.AgentID,
	strategy Strategy,
	c codec.Codec,
	clk clock.Clock,
	thinkTime time.Duration,
	logger *slog.Logger,
) *Agent {
	return &Agent{
		id:        id,
		strategy:  strategy,
		codec:     c,
		clock:     clk,
		thinkTime: thinkTime,
		logger:    logger.With(slog.String("component", "bot"), slog.String("agent", string(id))),
	}
}

// Attach sets where responses are delivered. It must be called before the
// first snapshot is sent.
func (a *Agent) Attach(deliver DeliverFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deliver = deliver
}

func (a *Agent) ID() model.AgentID {
	return a.id
}

// Send decodes the snapshot and chooses actions straight away, then delivers
// the encoded response in the background
func (a *Agent) Send(data []byte) error {
	a.mu.Lock()
	deliver := a.deliver
	a.mu.Unlock()
	if deliver == nil {
		return fmt.Errorf("bot %s: %w", a.id, model.ErrAgentClosed)
	}

	var snap model.Snapshot
	if err := a.codec.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("bot %s decoding snapshot: %w", a.id, err)
	}

	commands := a.strategy.ChooseActions(&snap, a.id)
	commands.TurnID = snap.TurnID
	payload, err := a.codec.Marshal(commands)
	if err != nil {
		return fmt.Errorf("bot %s encoding commands: %w", a.id, err)
	}

	go func() {
		if a.thinkTime > 0 {
			<-a.clock.After(a.thinkTime)
		}
		if err := deliver(a.id, payload); err != nil {
			if errors.Is(err, model.ErrMatchEnded) {
				return
			}
			a.logger.Warn("failed to deliver response",
				slog.String("turn_id", snap.TurnID),
				slog.String("error", err.Error()),
			)
		}
	}()
	return nil
}
