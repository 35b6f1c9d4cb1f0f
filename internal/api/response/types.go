package response

import (
	"time"

	"github.com/mcoot/codingworldcup/internal/model"
)

// Health is the response for the health endpoint. Matches counts the match
// statuses the store is tracking.
type Health struct {
	Status  string `json:"status"`
	Matches int    `json:"matches"`
}

// MatchSummary is one entry in the match list
type MatchSummary struct {
	ID          string      `json:"id"`
	Phase       string      `json:"phase"`
	Turn        int         `json:"turn"`
	TimeSeconds float64     `json:"time_seconds"`
	Score       model.Score `json:"score"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// MatchSummaryFromModel converts a model.MatchStatus
func MatchSummaryFromModel(s *model.MatchStatus) MatchSummary {
	return MatchSummary{
		ID:          string(s.ID),
		Phase:       string(s.Phase),
		Turn:        s.Turn,
		TimeSeconds: s.TimeSeconds,
		Score:       s.Score,
		UpdatedAt:   s.UpdatedAt,
	}
}

// MatchList is the response for the match list endpoint
type MatchList struct {
	Matches []MatchSummary `json:"matches"`
}

// Match is the full live status of one match
type Match struct {
	MatchSummary
	ProcessingTimeSeconds map[string]float64 `json:"processing_time_seconds"`
	Snapshot              *model.Snapshot    `json:"snapshot,omitempty"`
}

// MatchFromModel converts a model.MatchStatus. The snapshot is left out
// unless includeSnapshot is set.
func MatchFromModel(s *model.MatchStatus, includeSnapshot bool) Match {
	m := Match{
		MatchSummary:          MatchSummaryFromModel(s),
		ProcessingTimeSeconds: make(map[string]float64, len(s.ProcessingTimeSeconds)),
	}
	for id, seconds := range s.ProcessingTimeSeconds {
		m.ProcessingTimeSeconds[string(id)] = seconds
	}
	if includeSnapshot {
		m.Snapshot = s.Snapshot
	}
	return m
}
