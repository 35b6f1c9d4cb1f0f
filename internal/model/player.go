package model

import "github.com/mcoot/codingworldcup/internal/geometry"

// PlayerType distinguishes outfield players from goalkeepers
type PlayerType string

const (
	PlayerTypePlayer     PlayerType = "P"
	PlayerTypeGoalkeeper PlayerType = "G"
)

// Action is the tag of the action a player is currently performing
type Action string

const (
	ActionNone Action = "NONE"
	ActionMove Action = "MOVE"
	ActionTurn Action = "TURN"
	ActionKick Action = "KICK"
)

// DynamicState is the part of a player's state that changes every tick
type DynamicState struct {
	Position  geometry.Position `json:"position" msgpack:"position"`
	Direction float64           `json:"direction" msgpack:"direction"` // degrees, [0, 360)
	Energy    float64           `json:"energy" msgpack:"energy"`       // [0, 100]
	HasBall   bool              `json:"hasBall" msgpack:"hasBall"`
}

// StaticState holds a player's skills and identity, fixed at creation
type StaticState struct {
	PlayerNumber   int        `json:"playerNumber" msgpack:"playerNumber"`
	PlayerType     PlayerType `json:"playerType" msgpack:"playerType"`
	RunningAbility float64    `json:"runningAbility" msgpack:"runningAbility"` // [0, 100]
	PassingAbility float64    `json:"passingAbility" msgpack:"passingAbility"` // [0, 100]
}

// ActionState is the private, agent-controlled part of a player's state.
// Only the fields relevant to Action are meaningful.
type ActionState struct {
	Action          Action            `json:"action" msgpack:"action"`
	MoveDestination geometry.Position `json:"moveDestination" msgpack:"moveDestination"`
	MoveSpeed       float64           `json:"moveSpeed" msgpack:"moveSpeed"`
	Direction       float64           `json:"direction" msgpack:"direction"`
	KickDestination geometry.Position `json:"kickDestination" msgpack:"kickDestination"`
	KickSpeed       float64           `json:"kickSpeed" msgpack:"kickSpeed"`
}

// PlayerSnapshot is a player's state as sent to agents.
// Action is nil in public snapshots.
type PlayerSnapshot struct {
	Dynamic DynamicState `json:"dynamic" msgpack:"dynamic"`
	Static  StaticState  `json:"config" msgpack:"config"`
	Action  *ActionState `json:"action,omitempty" msgpack:"action,omitempty"`
}
