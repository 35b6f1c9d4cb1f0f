package model

import "github.com/mcoot/codingworldcup/internal/geometry"

// ActionCommand is one agent instruction for one player.
// Pointer fields distinguish an absent field from a zero value.
type ActionCommand struct {
	PlayerNumber *int               `json:"playerNumber,omitempty" msgpack:"playerNumber,omitempty"`
	Action       Action             `json:"action,omitempty" msgpack:"action,omitempty"`
	Destination  *geometry.Position `json:"destination,omitempty" msgpack:"destination,omitempty"`
	Speed        *float64           `json:"speed,omitempty" msgpack:"speed,omitempty"`
	Direction    *float64           `json:"direction,omitempty" msgpack:"direction,omitempty"`
}

// CommandSet is an agent's response to a snapshot. TurnID echoes the
// snapshot's turn ID; an empty TurnID is accepted for the current turn.
type CommandSet struct {
	TurnID  string          `json:"turnId,omitempty" msgpack:"turnId,omitempty"`
	Actions []ActionCommand `json:"actions" msgpack:"actions"`
}

// MoveCommand builds a MOVE command
func MoveCommand(playerNumber int, destination geometry.Position, speed float64) ActionCommand {
	return ActionCommand{
		PlayerNumber: &playerNumber,
		Action:       ActionMove,
		Destination:  &destination,
		Speed:        &speed,
	}
}

// TurnCommand builds a TURN command
func TurnCommand(playerNumber int, direction float64) ActionCommand {
	return ActionCommand{
		PlayerNumber: &playerNumber,
		Action:       ActionTurn,
		Direction:    &direction,
	}
}

// KickCommand builds a KICK command
func KickCommand(playerNumber int, destination geometry.Position, speed float64) ActionCommand {
	return ActionCommand{
		PlayerNumber: &playerNumber,
		Action:       ActionKick,
		Destination:  &destination,
		Speed:        &speed,
	}
}
