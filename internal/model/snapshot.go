package model

// RequestType tells agents what kind of response the engine expects
type RequestType string

const (
	RequestKickoff RequestType = "KICKOFF"
	RequestPlay    RequestType = "PLAY"
)

// TeamDirection is the end of the pitch a team attacks
type TeamDirection string

const (
	DirectionRight TeamDirection = "RIGHT"
	DirectionLeft  TeamDirection = "LEFT"
)

// GameInfo carries match-level state in a snapshot
type GameInfo struct {
	CurrentTimeSeconds float64 `json:"currentTimeSeconds" msgpack:"currentTimeSeconds"`
	Phase              Phase   `json:"phase" msgpack:"phase"`
	Score              Score   `json:"score" msgpack:"score"`
}

// TeamSnapshot is one team's state as sent to agents
type TeamSnapshot struct {
	AgentID   AgentID          `json:"team" msgpack:"team"`
	Direction TeamDirection    `json:"direction" msgpack:"direction"`
	Players   []PlayerSnapshot `json:"players" msgpack:"players"`
}

// Snapshot is the request payload sent to both agents each turn
type Snapshot struct {
	Request RequestType  `json:"request" msgpack:"request"`
	TurnID  string       `json:"turnId" msgpack:"turnId"`
	Game    GameInfo     `json:"game" msgpack:"game"`
	Team1   TeamSnapshot `json:"team1" msgpack:"team1"`
	Team2   TeamSnapshot `json:"team2" msgpack:"team2"`
	Ball    BallState    `json:"ball" msgpack:"ball"`
}

// Team returns the snapshot of the team controlled by the given agent
func (s *Snapshot) Team(id AgentID) *TeamSnapshot {
	if id == AgentTeam2 {
		return &s.Team2
	}
	return &s.Team1
}
