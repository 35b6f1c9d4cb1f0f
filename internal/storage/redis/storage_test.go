package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/codingworldcup/internal/geometry"
	"github.com/mcoot/codingworldcup/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.StatusTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func newStatus(id model.MatchID, turn int) *model.MatchStatus {
	return &model.MatchStatus{
		ID:          id,
		Phase:       model.PhasePlay,
		Turn:        turn,
		TimeSeconds: float64(turn),
		Score:       model.Score{Team1: 2, Team2: 1},
		ProcessingTimeSeconds: map[model.AgentID]float64{
			model.AgentTeam1: 0.5,
			model.AgentTeam2: 0.25,
		},
		Snapshot: &model.Snapshot{
			Request: model.RequestPlay,
			Ball: model.BallState{
				Position:                geometry.Position{X: 50, Y: 25},
				ControllingPlayerNumber: model.NoPlayer,
			},
		},
		UpdatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Match status tests

func (s *StorageSuite) TestSaveAndGetMatchStatus() {
	status := newStatus("match-1", 3)

	err := s.storage.SaveMatchStatus(s.ctx, status)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetMatchStatus(s.ctx, "match-1")
	s.Require().NoError(err)
	s.Equal(status.Turn, retrieved.Turn)
	s.Equal(status.Score, retrieved.Score)
	s.Equal(status.ProcessingTimeSeconds, retrieved.ProcessingTimeSeconds)
	s.True(status.UpdatedAt.Equal(retrieved.UpdatedAt))
	s.Require().NotNil(retrieved.Snapshot)
	s.Equal(status.Snapshot.Ball, retrieved.Snapshot.Ball)
}

func (s *StorageSuite) TestGetMatchStatusNotFound() {
	_, err := s.storage.GetMatchStatus(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *StorageSuite) TestMatchStatusTTL() {
	s.Require().NoError(s.storage.SaveMatchStatus(s.ctx, newStatus("match-1", 1)))

	ttl := s.mini.TTL(s.storage.statusKey("match-1"))
	s.True(ttl > 0, "Match status should have TTL")
}

func (s *StorageSuite) TestKeyPrefixSeparatesServers() {
	cfg := DefaultConfig()
	cfg.KeyPrefix = "cwc-other"
	other := NewWithClient(redis.NewClient(&redis.Options{Addr: s.mini.Addr()}), cfg)
	defer func() { _ = other.Close() }()

	s.Require().NoError(other.SaveMatchStatus(s.ctx, newStatus("match-1", 1)))

	s.True(s.mini.Exists("cwc-other:match_status:match-1"))
	_, err := s.storage.GetMatchStatus(s.ctx, "match-1")
	s.ErrorIs(err, model.ErrMatchNotFound)
	ids, err := s.storage.ListMatchIDs(s.ctx)
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *StorageSuite) TestDeleteMatchStatus() {
	s.Require().NoError(s.storage.SaveMatchStatus(s.ctx, newStatus("match-1", 1)))

	err := s.storage.DeleteMatchStatus(s.ctx, "match-1")
	s.Require().NoError(err)

	_, err = s.storage.GetMatchStatus(s.ctx, "match-1")
	s.ErrorIs(err, model.ErrMatchNotFound)

	ids, err := s.storage.ListMatchIDs(s.ctx)
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *StorageSuite) TestListMatchIDs() {
	s.Require().NoError(s.storage.SaveMatchStatus(s.ctx, newStatus("match-b", 1)))
	s.Require().NoError(s.storage.SaveMatchStatus(s.ctx, newStatus("match-a", 1)))
	s.Require().NoError(s.storage.SaveMatchStatus(s.ctx, newStatus("match-a", 2)))

	ids, err := s.storage.ListMatchIDs(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.MatchID{"match-a", "match-b"}, ids)
}

func (s *StorageSuite) TestListMatchIDsPrunesExpiredStatuses() {
	s.Require().NoError(s.storage.SaveMatchStatus(s.ctx, newStatus("match-1", 1)))
	s.mini.FastForward(2 * time.Hour)
	s.Require().NoError(s.storage.SaveMatchStatus(s.ctx, newStatus("match-2", 1)))

	ids, err := s.storage.ListMatchIDs(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.MatchID{"match-2"}, ids)

	isMember, err := s.mini.SIsMember(s.storage.indexKey(), "match-1")
	s.Require().NoError(err)
	s.False(isMember)
}
