package engine

import "github.com/mcoot/codingworldcup/internal/geometry"

// Pitch dimensions, in metres
const (
	PitchWidth  = 100.0
	PitchHeight = 50.0
	GoalWidth   = 8.0
)

// GoalY1 and GoalY2 bound the goal mouth on both end lines
const (
	GoalY1 = (PitchHeight - GoalWidth) / 2.0
	GoalY2 = (PitchHeight + GoalWidth) / 2.0
)

// Centre returns the centre spot
func Centre() geometry.Position {
	return geometry.Position{X: PitchWidth / 2.0, Y: PitchHeight / 2.0}
}

// GoalCentre returns the centre of the goal on the given end
func GoalCentre(right bool) geometry.Position {
	if right {
		return geometry.Position{X: PitchWidth, Y: PitchHeight / 2.0}
	}
	return geometry.Position{X: 0, Y: PitchHeight / 2.0}
}

func inGoalMouth(y float64) bool {
	return y >= GoalY1 && y <= GoalY2
}
