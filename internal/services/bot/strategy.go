package bot

import (
	"fmt"

	"github.com/mcoot/codingworldcup/internal/dependencies/random"
	"github.com/mcoot/codingworldcup/internal/model"
)

// Strategy defines how a bot controls its team
type Strategy interface {
	// ChooseActions returns the commands for the players on the given team.
	// Players without a command keep their current action.
	ChooseActions(snap *model.Snapshot, team model.AgentID) model.CommandSet
}

// NewStrategy returns the named strategy
func NewStrategy(name string, rnd random.Random) (Strategy, error) {
	switch name {
	case model.BotStrategyRandom:
		return NewRandomStrategy(rnd), nil
	case model.BotStrategyChaser:
		return NewChaserStrategy(), nil
	default:
		return nil, fmt.Errorf("unknown bot strategy: %s", name)
	}
}
