package model

import "time"

// MatchID uniquely identifies a match
type MatchID string

// Phase is the current phase of a match
type Phase string

const (
	PhaseKickoff  Phase = "kickoff"
	PhasePlay     Phase = "play"
	PhaseHalfTime Phase = "half_time"
	PhaseEnded    Phase = "ended"
)

// Score is the number of goals scored by each team
type Score struct {
	Team1 int `json:"team1" msgpack:"team1"`
	Team2 int `json:"team2" msgpack:"team2"`
}

// For returns the goals scored by the given agent's team
func (s Score) For(id AgentID) int {
	if id == AgentTeam2 {
		return s.Team2
	}
	return s.Team1
}

// MatchStatus is the live state of a running match, overwritten each turn
type MatchStatus struct {
	ID                    MatchID             `json:"id"`
	Phase                 Phase               `json:"phase"`
	Turn                  int                 `json:"turn"`
	TimeSeconds           float64             `json:"time_seconds"`
	Score                 Score               `json:"score"`
	ProcessingTimeSeconds map[AgentID]float64 `json:"processing_time_seconds"`
	Snapshot              *Snapshot           `json:"snapshot,omitempty"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

// MatchResult summarises a finished match
type MatchResult struct {
	ID                    MatchID             `json:"id"`
	Score                 Score               `json:"score"`
	Turns                 int                 `json:"turns"`
	TimeSeconds           float64             `json:"time_seconds"`
	ProcessingTimeSeconds map[AgentID]float64 `json:"processing_time_seconds"`
	TimedOutTurns         map[AgentID]int     `json:"timed_out_turns"`
}

// Winner returns the winning agent, or "" for a draw
func (r *MatchResult) Winner() AgentID {
	switch {
	case r.Score.Team1 > r.Score.Team2:
		return AgentTeam1
	case r.Score.Team2 > r.Score.Team1:
		return AgentTeam2
	default:
		return ""
	}
}
