package ws

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mcoot/codingworldcup/internal/codec"
	"github.com/mcoot/codingworldcup/internal/model"
	"github.com/mcoot/codingworldcup/internal/services/turn"
)

// Lobby holds the two agent slots for the next match.
//
// Agents connect to /agents/{slot}, where slot is team1 or team2. Once both
// slots are filled, Await returns the pair. Reset empties the lobby for the
// following match.
type Lobby struct {
	codec    codec.Codec
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu       sync.Mutex
	reserved map[model.AgentID]bool
	agents   map[model.AgentID]*Agent
	ready    chan struct{}
	started  bool
}

// NewLobby creates an empty lobby whose agents speak the given codec
func NewLobby(c codec.Codec, logger *slog.Logger) *Lobby {
	return &Lobby{
		codec: c,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Agents are programs, not browsers
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:   logger.With(slog.String("component", "lobby")),
		reserved: make(map[model.AgentID]bool),
		agents:   make(map[model.AgentID]*Agent),
		ready:    make(chan struct{}),
	}
}

// ServeHTTP upgrades an agent connection into the slot named by the
// "slot" route variable. It blocks until the connection closes.
func (l *Lobby) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := model.AgentID(mux.Vars(r)["slot"])
	if !id.Valid() {
		http.Error(w, fmt.Sprintf("%s: %s", model.ErrUnknownAgent, id), http.StatusNotFound)
		return
	}
	if err := l.reserve(id); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the error response
		l.release(id)
		l.logger.Warn("agent upgrade failed",
			slog.String("agent", string(id)),
			slog.String("error", err.Error()),
		)
		return
	}

	agent := newAgent(id, conn, l.codec.Binary(), l.logger)
	l.join(agent)
	l.logger.Info("agent connected",
		slog.String("agent", string(id)),
		slog.String("remote_addr", r.RemoteAddr),
	)

	agent.run()

	l.leave(agent)
	l.logger.Info("agent disconnected", slog.String("agent", string(id)))
}

func (l *Lobby) reserve(id model.AgentID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.reserved[id] {
		return fmt.Errorf("%w: %s", model.ErrSlotTaken, id)
	}
	l.reserved[id] = true
	return nil
}

func (l *Lobby) release(id model.AgentID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.reserved, id)
}

func (l *Lobby) join(agent *Agent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.agents[agent.ID()] = agent
	if len(l.agents) == len(model.AgentIDs()) && !l.started {
		l.started = true
		close(l.ready)
	}
}

// leave frees the agent's slot, unless its match has already started
func (l *Lobby) leave(agent *Agent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started || l.agents[agent.ID()] != agent {
		return
	}
	delete(l.agents, agent.ID())
	delete(l.reserved, agent.ID())
}

// Connected reports whether an agent currently holds the slot
func (l *Lobby) Connected(id model.AgentID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.agents[id]
	return ok
}

// Await blocks until both slots are filled and returns the agents in team order
func (l *Lobby) Await(ctx context.Context) ([]*Agent, error) {
	l.mu.Lock()
	ready := l.ready
	l.mu.Unlock()

	select {
	case <-ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	agents := make([]*Agent, 0, len(model.AgentIDs()))
	for _, id := range model.AgentIDs() {
		agents = append(agents, l.agents[id])
	}
	return agents, nil
}

// Reset disconnects any agents and empties both slots
func (l *Lobby) Reset() {
	l.mu.Lock()
	agents := l.agents
	l.agents = make(map[model.AgentID]*Agent)
	l.reserved = make(map[model.AgentID]bool)
	l.ready = make(chan struct{})
	l.started = false
	l.mu.Unlock()

	for _, a := range agents {
		a.Close()
	}
}

// TurnAgents converts connected agents for use by a turn synchronizer
func TurnAgents(agents []*Agent) []turn.Agent {
	out := make([]turn.Agent, len(agents))
	for i, a := range agents {
		out[i] = a
	}
	return out
}
