package model

import "github.com/mcoot/codingworldcup/internal/geometry"

// NoPlayer marks a ball that nobody controls
const NoPlayer = -1

// BallState is the position and motion of the ball
type BallState struct {
	Position                geometry.Position `json:"position" msgpack:"position"`
	Vector                  geometry.Vector   `json:"vector" msgpack:"vector"`
	Speed                   float64           `json:"speed" msgpack:"speed"`
	ControllingPlayerNumber int               `json:"controllingPlayerNumber" msgpack:"controllingPlayerNumber"`
}

// IsControlled reports whether a player currently has the ball
func (b BallState) IsControlled() bool {
	return b.ControllingPlayerNumber != NoPlayer
}
