package engine

import "github.com/mcoot/codingworldcup/internal/model"

// Team is one side's players and the agent that controls them.
// Membership is fixed once the team is created.
type Team struct {
	agentID   model.AgentID
	players   []*Player
	direction model.TeamDirection
	score     int
}

// NewTeam creates a team attacking in the given direction
func NewTeam(agentID model.AgentID, direction model.TeamDirection, players []*Player) *Team {
	return &Team{
		agentID:   agentID,
		players:   players,
		direction: direction,
	}
}

// AgentID returns the agent controlling this team
func (t *Team) AgentID() model.AgentID {
	return t.agentID
}

// Players returns the team's players in shirt-number order
func (t *Team) Players() []*Player {
	return t.players
}

// Player returns the team's player with the given number, or nil
func (t *Team) Player(number int) *Player {
	for _, p := range t.players {
		if p.Number() == number {
			return p
		}
	}
	return nil
}

// Goalkeeper returns the team's goalkeeper
func (t *Team) Goalkeeper() *Player {
	for _, p := range t.players {
		if p.IsGoalkeeper() {
			return p
		}
	}
	return nil
}

// Direction returns the end the team is attacking
func (t *Team) Direction() model.TeamDirection {
	return t.direction
}

// AttacksRight reports whether the team is shooting at the right-hand goal
func (t *Team) AttacksRight() bool {
	return t.direction == model.DirectionRight
}

// Score returns the team's goals
func (t *Team) Score() int {
	return t.score
}

// UpdatePositions runs one tick of every player's action
func (t *Team) UpdatePositions(g *Game) {
	for _, p := range t.players {
		p.ProcessAction(g)
	}
}

// Snapshot returns the team's state for sending to agents
func (t *Team) Snapshot(publicOnly bool) model.TeamSnapshot {
	players := make([]model.PlayerSnapshot, 0, len(t.players))
	for _, p := range t.players {
		players = append(players, p.Snapshot(publicOnly))
	}
	return model.TeamSnapshot{
		AgentID:   t.agentID,
		Direction: t.direction,
		Players:   players,
	}
}

func (t *Team) swapDirection() {
	if t.direction == model.DirectionRight {
		t.direction = model.DirectionLeft
	} else {
		t.direction = model.DirectionRight
	}
}
