package bot

import (
	"math"

	"github.com/mcoot/codingworldcup/internal/engine"
	"github.com/mcoot/codingworldcup/internal/geometry"
	"github.com/mcoot/codingworldcup/internal/model"
)

const (
	// shootingRange is how close to goal the holder must be before shooting
	shootingRange = 30.0
	// keeperOffset is how far in front of the goal line the goalkeeper waits
	keeperOffset = 1.0
)

// ChaserStrategy sends the nearest outfield player after the ball, dribbles
// towards goal and shoots once in range. The goalkeeper tracks the ball
// along the goal line. Everyone else holds position.
type ChaserStrategy struct{}

// NewChaserStrategy creates a new ChaserStrategy
func NewChaserStrategy() *ChaserStrategy {
	return &ChaserStrategy{}
}

func (s *ChaserStrategy) ChooseActions(snap *model.Snapshot, team model.AgentID) model.CommandSet {
	own := snap.Team(team)
	attackingRight := own.Direction == model.DirectionRight
	target := engine.GoalCentre(attackingRight)
	ball := snap.Ball.Position
	haveBall := ownsBall(own, snap.Ball)

	var set model.CommandSet
	var chaser *model.PlayerSnapshot
	chaserDistance := math.Inf(1)

	for i := range own.Players {
		p := &own.Players[i]
		number := p.Static.PlayerNumber

		switch {
		case p.Dynamic.HasBall:
			if p.Dynamic.Position.DistanceTo(target) <= shootingRange {
				set.Actions = append(set.Actions, model.KickCommand(number, target, 100))
			} else {
				set.Actions = append(set.Actions, model.MoveCommand(number, target, 100))
			}

		case p.Static.PlayerType == model.PlayerTypeGoalkeeper:
			set.Actions = append(set.Actions, model.MoveCommand(number, keeperPosition(!attackingRight, ball.Y), 100))

		case !haveBall:
			if d := p.Dynamic.Position.DistanceTo(ball); d < chaserDistance {
				chaser = p
				chaserDistance = d
			}
		}
	}

	if chaser != nil {
		set.Actions = append(set.Actions, model.MoveCommand(chaser.Static.PlayerNumber, ball, 100))
	}
	return set
}

// keeperPosition is the point on the goal mouth in line with the ball
func keeperPosition(rightGoal bool, ballY float64) geometry.Position {
	goal := engine.GoalCentre(rightGoal)
	x := goal.X + keeperOffset
	if rightGoal {
		x = goal.X - keeperOffset
	}
	return geometry.Position{X: x, Y: math.Max(engine.GoalY1, math.Min(engine.GoalY2, ballY))}
}

func ownsBall(team *model.TeamSnapshot, ball model.BallState) bool {
	for _, p := range team.Players {
		if p.Static.PlayerNumber == ball.ControllingPlayerNumber {
			return true
		}
	}
	return false
}
