package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/codingworldcup/internal/model"
	"github.com/mcoot/codingworldcup/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	statuses map[model.MatchID]*model.MatchStatus
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		statuses: make(map[model.MatchID]*model.MatchStatus),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Match status operations

func (s *Storage) SaveMatchStatus(ctx context.Context, status *model.MatchStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[status.ID] = status
	return nil
}

func (s *Storage) GetMatchStatus(ctx context.Context, id model.MatchID) (*model.MatchStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.statuses[id]
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	return status, nil
}

func (s *Storage) DeleteMatchStatus(ctx context.Context, id model.MatchID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.statuses, id)
	return nil
}

func (s *Storage) ListMatchIDs(ctx context.Context) ([]model.MatchID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]model.MatchID, 0, len(s.statuses))
	for id := range s.statuses {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
