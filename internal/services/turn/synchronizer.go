package turn

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/codingworldcup/internal/codec"
	"github.com/mcoot/codingworldcup/internal/dependencies/clock"
	"github.com/mcoot/codingworldcup/internal/model"
)

// Agent is the engine's view of an external decision-maker controlling one team
type Agent interface {
	ID() model.AgentID
	Send(data []byte) error
}

// Result holds both agents' responses for one completed turn
type Result struct {
	TurnID    string
	Responses map[model.AgentID]model.AgentResponse
}

// Response returns the given agent's response
func (r Result) Response(id model.AgentID) model.AgentResponse {
	return r.Responses[id]
}

// Handler is called exactly once per turn, when the last agent responds or
// the turn expires
type Handler func(result Result)

type state int

const (
	stateIdle state = iota
	statePending
	stateComplete
)

// Synchronizer broadcasts each turn's snapshot to both agents and collects
// their responses. The handler fires once both agents have answered.
//
// The synchronizer is safe for concurrent use. The handler is never called
// with the internal lock held, so it may call back into the synchronizer.
type Synchronizer struct {
	mu sync.Mutex

	agents  []Agent
	codec   codec.Codec
	clock   clock.Clock
	logger  *slog.Logger
	handler Handler

	state     state
	turnID    string
	sentAt    time.Time
	responses map[model.AgentID]*model.AgentResponse
	totals    map[model.AgentID]float64
}

// New creates a synchronizer for exactly two agents with distinct IDs
func New(agents []Agent, c codec.Codec, clk clock.Clock, logger *slog.Logger, handler Handler) (*Synchronizer, error) {
	if len(agents) != 2 {
		return nil, fmt.Errorf("%w: need exactly 2 agents, got %d", model.ErrInvalidConfig, len(agents))
	}
	if agents[0].ID() == agents[1].ID() {
		return nil, fmt.Errorf("%w: both agents have ID %s", model.ErrInvalidConfig, agents[0].ID())
	}
	for _, a := range agents {
		if !a.ID().Valid() {
			return nil, fmt.Errorf("%w: %s", model.ErrUnknownAgent, a.ID())
		}
	}

	totals := make(map[model.AgentID]float64, len(agents))
	for _, a := range agents {
		totals[a.ID()] = 0
	}

	return &Synchronizer{
		agents:    agents,
		codec:     c,
		clock:     clk,
		logger:    logger.With(slog.String("component", "turn")),
		handler:   handler,
		responses: make(map[model.AgentID]*model.AgentResponse),
		totals:    totals,
	}, nil
}

// BeginTurn encodes the snapshot once and sends the same bytes to both agents.
// A new turn ID is written into the snapshot before encoding.
//
// Any previous turn is abandoned; callers must only begin a turn once the
// last one has completed. Send failures are returned, but the turn stays
// pending so that the other agent's response and Expire still work.
func (s *Synchronizer) BeginTurn(snapshot *model.Snapshot) error {
	s.mu.Lock()
	turnID := uuid.NewString()
	snapshot.TurnID = turnID

	data, err := s.codec.Marshal(snapshot)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	s.turnID = turnID
	s.state = statePending
	s.responses = make(map[model.AgentID]*model.AgentResponse, len(s.agents))
	s.sentAt = s.clock.Now()
	s.mu.Unlock()

	s.logger.Debug("turn started",
		slog.String("turn_id", turnID),
		slog.String("request", string(snapshot.Request)),
		slog.Int("bytes", len(data)),
	)

	var errs []error
	for _, a := range s.agents {
		if err := a.Send(data); err != nil {
			s.logger.Warn("failed to send snapshot",
				slog.String("agent", string(a.ID())),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("sending to %s: %w", a.ID(), err))
		}
	}
	return errors.Join(errs...)
}

// OnResponse records an agent's raw response for the current turn.
//
// The first response is stored. A repeat from the same agent before the turn
// completes replaces the earlier one. When the second agent responds, both
// responses are decoded, processing times are added to the running totals and
// the handler is called. Responses after that are rejected with ErrTurnComplete.
func (s *Synchronizer) OnResponse(agentID model.AgentID, raw []byte) error {
	return s.OnResponseAt(agentID, raw, s.clock.Now())
}

// OnResponseAt is OnResponse for a response that arrived at receivedAt, for
// callers that queue responses before handing them over. A response received
// before the current turn was sent, or one carrying another turn's ID, belongs
// to an earlier turn and is rejected with ErrStaleResponse.
func (s *Synchronizer) OnResponseAt(agentID model.AgentID, raw []byte, receivedAt time.Time) error {
	s.mu.Lock()

	if !s.known(agentID) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", model.ErrUnknownAgent, agentID)
	}
	switch s.state {
	case stateIdle:
		s.mu.Unlock()
		return model.ErrNoTurnInProgress
	case stateComplete:
		s.mu.Unlock()
		return model.ErrTurnComplete
	}

	if receivedAt.Before(s.sentAt) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", model.ErrStaleResponse, agentID)
	}
	if turnID := s.peekTurnID(raw); turnID != "" && turnID != s.turnID {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s answered turn %s", model.ErrStaleResponse, agentID, turnID)
	}

	elapsed := receivedAt.Sub(s.sentAt).Seconds()
	if _, ok := s.responses[agentID]; ok {
		s.logger.Debug("replacing earlier response",
			slog.String("agent", string(agentID)),
			slog.String("turn_id", s.turnID),
		)
	}
	s.responses[agentID] = &model.AgentResponse{
		AgentID:               agentID,
		Raw:                   raw,
		ProcessingTimeSeconds: elapsed,
	}

	s.logger.Debug("response received",
		slog.String("agent", string(agentID)),
		slog.String("turn_id", s.turnID),
		slog.Float64("seconds", elapsed),
	)

	if len(s.responses) < len(s.agents) {
		s.mu.Unlock()
		return nil
	}

	result := s.completeLocked()
	s.mu.Unlock()

	s.handler(result)
	return nil
}

// Expire completes a pending turn without waiting for the remaining agents.
// Agents that have not responded get an empty command set and are marked as
// timed out. Returns false if no turn was pending.
func (s *Synchronizer) Expire() bool {
	s.mu.Lock()
	if s.state != statePending {
		s.mu.Unlock()
		return false
	}

	elapsed := s.clock.Since(s.sentAt).Seconds()
	for _, a := range s.agents {
		if _, ok := s.responses[a.ID()]; ok {
			continue
		}
		s.logger.Warn("agent timed out",
			slog.String("agent", string(a.ID())),
			slog.String("turn_id", s.turnID),
			slog.Float64("seconds", elapsed),
		)
		s.responses[a.ID()] = &model.AgentResponse{
			AgentID:               a.ID(),
			ProcessingTimeSeconds: elapsed,
			TimedOut:              true,
		}
	}

	result := s.completeLocked()
	s.mu.Unlock()

	s.handler(result)
	return true
}

// peekTurnID returns the turn ID a response answers. Undecodable payloads
// yield "" and fail later in decode.
func (s *Synchronizer) peekTurnID(raw []byte) string {
	var set model.CommandSet
	if err := s.codec.Unmarshal(raw, &set); err != nil {
		return ""
	}
	return set.TurnID
}

func (s *Synchronizer) completeLocked() Result {
	s.state = stateComplete

	result := Result{
		TurnID:    s.turnID,
		Responses: make(map[model.AgentID]model.AgentResponse, len(s.responses)),
	}
	for id, r := range s.responses {
		s.decode(r)
		s.totals[id] += r.ProcessingTimeSeconds
		result.Responses[id] = *r
	}

	s.logger.Debug("turn complete", slog.String("turn_id", s.turnID))
	return result
}

func (s *Synchronizer) decode(r *model.AgentResponse) {
	if r.TimedOut {
		r.Commands = &model.CommandSet{}
		return
	}
	var commands model.CommandSet
	if err := s.codec.Unmarshal(r.Raw, &commands); err != nil {
		s.logger.Warn("failed to decode response",
			slog.String("agent", string(r.AgentID)),
			slog.String("turn_id", s.turnID),
			slog.String("error", err.Error()),
		)
		r.Err = &model.DecodeError{AgentID: r.AgentID, Err: err}
		return
	}
	r.Commands = &commands
}

func (s *Synchronizer) known(id model.AgentID) bool {
	for _, a := range s.agents {
		if a.ID() == id {
			return true
		}
	}
	return false
}

// Pending reports whether a turn has begun and not yet completed
func (s *Synchronizer) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == statePending
}

// TurnID returns the ID of the current or most recent turn
func (s *Synchronizer) TurnID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnID
}

// ProcessingTimeSeconds returns the total time the agent has spent on
// completed turns
func (s *Synchronizer) ProcessingTimeSeconds(id model.AgentID) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals[id]
}

// ProcessingTimes returns a copy of every agent's processing time total
func (s *Synchronizer) ProcessingTimes() map[model.AgentID]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := make(map[model.AgentID]float64, len(s.totals))
	for id, t := range s.totals {
		totals[id] = t
	}
	return totals
}
