package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Command errors
	ErrMissingField    = errors.New("required field missing from command")
	ErrUnknownAction   = errors.New("no handler for action")
	ErrPlayerNotOnTeam = errors.New("player is not controlled by this agent")

	// Turn errors
	ErrUnknownAgent     = errors.New("unknown agent")
	ErrNoTurnInProgress = errors.New("no turn in progress")
	ErrTurnComplete     = errors.New("turn already complete")
	ErrStaleResponse    = errors.New("response predates the current turn")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")

	// Match errors
	ErrMatchNotFound = errors.New("match not found")
	ErrMatchEnded    = errors.New("match has ended")

	// Transport errors
	ErrSlotTaken   = errors.New("agent slot already taken")
	ErrAgentClosed = errors.New("agent connection closed")
)

// CommandError describes an agent command that could not be applied to a player
type CommandError struct {
	PlayerNumber int
	Action       string
	Field        string
	Err          error
}

func (e *CommandError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("player %d: %s: %q in %s action", e.PlayerNumber, e.Err, e.Field, e.Action)
	case e.Action != "":
		return fmt.Sprintf("player %d: %s: %s", e.PlayerNumber, e.Err, e.Action)
	default:
		return fmt.Sprintf("player %d: %s", e.PlayerNumber, e.Err)
	}
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// DecodeError reports an agent payload that could not be decoded
type DecodeError struct {
	AgentID AgentID
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response from %s: %s", e.AgentID, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
