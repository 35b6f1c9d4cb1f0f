package storage

import (
	"context"

	"github.com/mcoot/codingworldcup/internal/model"
)

// Storage defines the interface for live match state.
// Entries describe matches in progress or just finished; nothing is kept
// as long-term history.
type Storage interface {
	// Match status operations
	SaveMatchStatus(ctx context.Context, status *model.MatchStatus) error
	GetMatchStatus(ctx context.Context, id model.MatchID) (*model.MatchStatus, error)
	DeleteMatchStatus(ctx context.Context, id model.MatchID) error
	ListMatchIDs(ctx context.Context) ([]model.MatchID, error)
}
