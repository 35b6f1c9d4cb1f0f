package redis

import (
	"context"
	"encoding/json"
	"errors"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/codingworldcup/internal/model"
	"github.com/mcoot/codingworldcup/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Match status operations

func (s *Storage) SaveMatchStatus(ctx context.Context, status *model.MatchStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.statusKey(status.ID), data, s.cfg.StatusTTL)
	pipe.SAdd(ctx, s.indexKey(), string(status.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetMatchStatus(ctx context.Context, id model.MatchID) (*model.MatchStatus, error) {
	data, err := s.client.Get(ctx, s.statusKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrMatchNotFound
		}
		return nil, err
	}

	var status model.MatchStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (s *Storage) DeleteMatchStatus(ctx context.Context, id model.MatchID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.statusKey(id))
	pipe.SRem(ctx, s.indexKey(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

// ListMatchIDs returns the IDs of all matches with a live status.
// Index entries whose status has expired are pruned.
func (s *Storage) ListMatchIDs(ctx context.Context) ([]model.MatchID, error) {
	members, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []model.MatchID{}, nil
	}

	pipe := s.client.Pipeline()
	exists := make([]*redis.IntCmd, len(members))
	for i, member := range members {
		exists[i] = pipe.Exists(ctx, s.statusKey(model.MatchID(member)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	ids := make([]model.MatchID, 0, len(members))
	var stale []any
	for i, member := range members {
		if exists[i].Val() == 0 {
			stale = append(stale, member)
			continue
		}
		ids = append(ids, model.MatchID(member))
	}
	if len(stale) > 0 {
		if err := s.client.SRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			return nil, err
		}
	}

	slices.Sort(ids)
	return ids, nil
}
