package match

import (
	"github.com/mcoot/codingworldcup/internal/engine"
	"github.com/mcoot/codingworldcup/internal/model"
)

// Phase is one state of a match. The runner asks the current phase what to
// send the agents, whether the clock runs, and which phase follows each turn.
type Phase interface {
	Name() model.Phase

	// Request is the request type sent to agents, or "" if the phase passes
	// straight to the next one without a turn
	Request() model.RequestType

	// Enter is called once when the match moves into the phase
	Enter(g *engine.Game)

	// Ticks reports whether calculation ticks run during the phase's turns
	Ticks() bool

	// Next is called after each turn. Returning the receiver stays in the phase.
	Next(g *engine.Game) Phase
}

// Kickoff lines the teams up and waits one turn for both agents to get ready
type Kickoff struct {
	kickingOff model.AgentID
	secondHalf bool
}

// NewKickoff creates the opening phase of a match
func NewKickoff() *Kickoff {
	return &Kickoff{kickingOff: model.AgentTeam1}
}

func (k *Kickoff) Name() model.Phase { return model.PhaseKickoff }

func (k *Kickoff) Request() model.RequestType { return model.RequestKickoff }

func (k *Kickoff) Enter(g *engine.Game) {
	g.SetupKickoff(k.kickingOff)
}

func (k *Kickoff) Ticks() bool { return false }

func (k *Kickoff) Next(*engine.Game) Phase {
	return &Play{secondHalf: k.secondHalf}
}

// Play runs the clock. It ends on a goal, at half time or at full time.
type Play struct {
	secondHalf bool
}

func (p *Play) Name() model.Phase { return model.PhasePlay }

func (p *Play) Request() model.RequestType { return model.RequestPlay }

func (p *Play) Enter(*engine.Game) {}

func (p *Play) Ticks() bool { return true }

func (p *Play) Next(g *engine.Game) Phase {
	cfg := g.Config()
	elapsed := g.TimeSeconds()

	if reached(elapsed, cfg.GameLengthSeconds) {
		return &Ended{}
	}
	if !p.secondHalf && reached(elapsed, cfg.GameLengthSeconds/2.0) {
		return &HalfTime{}
	}
	if scorer := g.PendingGoal(); scorer != "" {
		return &Kickoff{kickingOff: scorer.Opponent(), secondHalf: p.secondHalf}
	}
	return p
}

// HalfTime swaps ends and hands over to the second-half kickoff
type HalfTime struct{}

func (h *HalfTime) Name() model.Phase { return model.PhaseHalfTime }

func (h *HalfTime) Request() model.RequestType { return "" }

func (h *HalfTime) Enter(g *engine.Game) {
	g.SwapEnds()
}

func (h *HalfTime) Ticks() bool { return false }

func (h *HalfTime) Next(*engine.Game) Phase {
	return &Kickoff{kickingOff: model.AgentTeam2, secondHalf: true}
}

// Ended is the terminal phase
type Ended struct{}

func (e *Ended) Name() model.Phase { return model.PhaseEnded }

func (e *Ended) Request() model.RequestType { return "" }

func (e *Ended) Enter(*engine.Game) {}

func (e *Ended) Ticks() bool { return false }

func (e *Ended) Next(*engine.Game) Phase { return e }

// reached compares virtual times allowing for accumulated float error
func reached(elapsed, target float64) bool {
	return elapsed >= target-1e-6
}
