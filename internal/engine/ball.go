package engine

import (
	"math"

	"github.com/mcoot/codingworldcup/internal/geometry"
	"github.com/mcoot/codingworldcup/internal/model"
)

const (
	// BallMaxSpeed is the speed of a kick at 100%, in metres/second
	BallMaxSpeed = 30.0
	// BallFriction is the ball's deceleration, in metres/second²
	BallFriction = 10.0
)

// Ball is the match ball
type Ball struct {
	State model.BallState
}

// NewBall creates a stationary, uncontrolled ball on the centre spot
func NewBall() *Ball {
	return &Ball{State: model.BallState{
		Position:                Centre(),
		ControllingPlayerNumber: model.NoPlayer,
	}}
}

// MaxSpeed returns the fastest the ball can be kicked
func (b *Ball) MaxSpeed() float64 {
	return BallMaxSpeed
}

// Kick releases the ball with the given unit vector and speed
func (b *Ball) Kick(vector geometry.Vector, speed float64) {
	b.State.Vector = vector
	b.State.Speed = speed
	b.State.ControllingPlayerNumber = model.NoPlayer
}

// UpdatePosition moves a free ball along its vector for one interval and
// applies friction. A controlled ball is moved by its controller instead.
func (b *Ball) UpdatePosition(intervalSeconds float64) {
	if b.State.IsControlled() || b.State.Speed <= 0 {
		return
	}
	distance := b.State.Speed * intervalSeconds
	b.State.Position = b.State.Position.Add(b.State.Vector.Scale(distance))
	b.State.Speed = math.Max(0, b.State.Speed-BallFriction*intervalSeconds)
}

// Stop halts the ball where it is
func (b *Ball) Stop() {
	b.State.Speed = 0
	b.State.Vector = geometry.Vector{}
}

// PlaceAt puts the ball, stationary, at a position
func (b *Ball) PlaceAt(pos geometry.Position) {
	b.Stop()
	b.State.Position = pos
}
