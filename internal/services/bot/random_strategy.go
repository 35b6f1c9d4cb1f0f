package bot

import (
	"github.com/mcoot/codingworldcup/internal/dependencies/random"
	"github.com/mcoot/codingworldcup/internal/engine"
	"github.com/mcoot/codingworldcup/internal/geometry"
	"github.com/mcoot/codingworldcup/internal/model"
)

// RandomStrategy gives each player a random move, turn or kick
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// ChooseActions picks MOVE, TURN or KICK for every player. Players without
// the ball that draw KICK are left alone.
func (s *RandomStrategy) ChooseActions(snap *model.Snapshot, team model.AgentID) model.CommandSet {
	var set model.CommandSet
	for _, p := range snap.Team(team).Players {
		number := p.Static.PlayerNumber
		switch s.random.Intn(3) {
		case 0:
			set.Actions = append(set.Actions, model.MoveCommand(number, s.randomPosition(), s.randomSpeed()))
		case 1:
			set.Actions = append(set.Actions, model.TurnCommand(number, s.random.Float64()*360.0))
		case 2:
			if p.Dynamic.HasBall {
				set.Actions = append(set.Actions, model.KickCommand(number, s.randomPosition(), s.randomSpeed()))
			}
		}
	}
	return set
}

func (s *RandomStrategy) randomPosition() geometry.Position {
	return geometry.Position{
		X: s.random.Float64() * engine.PitchWidth,
		Y: s.random.Float64() * engine.PitchHeight,
	}
}

func (s *RandomStrategy) randomSpeed() float64 {
	return s.random.Float64() * 100.0
}
