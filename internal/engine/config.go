package engine

import (
	"fmt"
	"math"

	"github.com/mcoot/codingworldcup/internal/model"
)

// Config holds the simulation settings for a game.
// All times are virtual game time, not wall-clock time.
type Config struct {
	// CalculationIntervalSeconds is the length of one physics tick
	CalculationIntervalSeconds float64
	// AIUpdateIntervalSeconds is the length of one turn; a whole number of ticks
	AIUpdateIntervalSeconds float64
	// GameLengthSeconds is the length of the match; a whole number of turns
	GameLengthSeconds float64
	// PlayersPerTeam is the number of outfield players; each team also gets a goalkeeper
	PlayersPerTeam int

	// Skills given to every player at creation, 0-100
	RunningAbility float64
	PassingAbility float64
}

// DefaultConfig returns the standard match settings
func DefaultConfig() Config {
	return Config{
		CalculationIntervalSeconds: 0.1,
		AIUpdateIntervalSeconds:    1.0,
		GameLengthSeconds:          90.0 * 60.0,
		PlayersPerTeam:             5,
		RunningAbility:             50.0,
		PassingAbility:             50.0,
	}
}

// Validate checks that the intervals line up and all values are in range
func (c Config) Validate() error {
	if c.CalculationIntervalSeconds <= 0 {
		return fmt.Errorf("%w: calculation interval must be positive", model.ErrInvalidConfig)
	}
	if c.AIUpdateIntervalSeconds < c.CalculationIntervalSeconds {
		return fmt.Errorf("%w: AI update interval must be at least the calculation interval", model.ErrInvalidConfig)
	}
	if !isWholeMultiple(c.AIUpdateIntervalSeconds, c.CalculationIntervalSeconds) {
		return fmt.Errorf("%w: AI update interval %v is not a multiple of calculation interval %v",
			model.ErrInvalidConfig, c.AIUpdateIntervalSeconds, c.CalculationIntervalSeconds)
	}
	if c.GameLengthSeconds < c.AIUpdateIntervalSeconds || !isWholeMultiple(c.GameLengthSeconds, c.AIUpdateIntervalSeconds) {
		return fmt.Errorf("%w: game length %v is not a multiple of AI update interval %v",
			model.ErrInvalidConfig, c.GameLengthSeconds, c.AIUpdateIntervalSeconds)
	}
	if c.PlayersPerTeam < 1 {
		return fmt.Errorf("%w: players per team must be at least 1", model.ErrInvalidConfig)
	}
	if c.RunningAbility < 0 || c.RunningAbility > 100 || c.PassingAbility < 0 || c.PassingAbility > 100 {
		return fmt.Errorf("%w: abilities must be between 0 and 100", model.ErrInvalidConfig)
	}
	return nil
}

// TicksPerTurn returns the number of calculation ticks in one AI update interval
func (c Config) TicksPerTurn() int {
	return int(math.Round(c.AIUpdateIntervalSeconds / c.CalculationIntervalSeconds))
}

// TotalTurns returns the number of AI turns in a full match
func (c Config) TotalTurns() int {
	return int(math.Round(c.GameLengthSeconds / c.AIUpdateIntervalSeconds))
}

func isWholeMultiple(value, unit float64) bool {
	ratio := value / unit
	return math.Abs(ratio-math.Round(ratio)) < 1e-9
}
