package model

// AgentID identifies one of the two agents in a match
type AgentID string

const (
	AgentTeam1 AgentID = "team1"
	AgentTeam2 AgentID = "team2"
)

// AgentIDs returns both agent IDs in team order
func AgentIDs() []AgentID {
	return []AgentID{AgentTeam1, AgentTeam2}
}

// Valid reports whether id is one of the two known agents
func (id AgentID) Valid() bool {
	return id == AgentTeam1 || id == AgentTeam2
}

// Opponent returns the other agent
func (id AgentID) Opponent() AgentID {
	if id == AgentTeam1 {
		return AgentTeam2
	}
	return AgentTeam1
}

// AgentResponse is one agent's reply for one turn
type AgentResponse struct {
	AgentID AgentID
	Raw     []byte

	// Commands is populated once both responses for the turn have arrived.
	// It is nil when Err is set.
	Commands *CommandSet

	ProcessingTimeSeconds float64
	TimedOut              bool
	Err                   error
}
