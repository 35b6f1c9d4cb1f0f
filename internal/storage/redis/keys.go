package redis

import (
	"fmt"

	"github.com/mcoot/codingworldcup/internal/model"
)

// statusKey returns the Redis key for a MatchStatus
func (s *Storage) statusKey(id model.MatchID) string {
	return fmt.Sprintf("%s:match_status:%s", s.cfg.KeyPrefix, id)
}

// indexKey returns the Redis key for the SET of known match IDs
func (s *Storage) indexKey() string {
	return fmt.Sprintf("%s:idx:matches", s.cfg.KeyPrefix)
}
