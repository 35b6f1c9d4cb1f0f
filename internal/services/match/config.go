package match

import (
	"fmt"
	"time"

	"github.com/mcoot/codingworldcup/internal/codec"
	"github.com/mcoot/codingworldcup/internal/engine"
	"github.com/mcoot/codingworldcup/internal/model"
)

// Config holds the settings for running one match
type Config struct {
	Engine engine.Config

	// Codec is the wire format name used with both agents
	Codec string

	// AgentTimeout is how long to wait for an agent's response before
	// giving it an empty command set. Zero waits indefinitely.
	AgentTimeout time.Duration
}

// DefaultConfig returns the standard match settings
func DefaultConfig() Config {
	return Config{
		Engine: engine.DefaultConfig(),
		Codec:  codec.NameJSON,
	}
}

// Validate checks the engine settings and the match-level options
func (c Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if _, err := codec.ByName(c.Codec); err != nil {
		return fmt.Errorf("%w: %s", model.ErrInvalidConfig, err.Error())
	}
	if c.AgentTimeout < 0 {
		return fmt.Errorf("%w: agent timeout must not be negative", model.ErrInvalidConfig)
	}
	return nil
}
