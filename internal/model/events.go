package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventTurnComplete  EventType = "turn_complete"
	EventGoal          EventType = "goal"
	EventPhaseChanged  EventType = "phase_changed"
	EventMatchFinished EventType = "match_finished"
)

// Event is the base structure for all events
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	MatchID   MatchID   `json:"match_id"`
	Payload   any       `json:"payload"`
}

// GoalPayload contains data for goal events
type GoalPayload struct {
	Scorer      AgentID `json:"scorer"`
	Score       Score   `json:"score"`
	TimeSeconds float64 `json:"time_seconds"`
}

// PhaseChangedPayload contains data for phase changed events
type PhaseChangedPayload struct {
	From Phase `json:"from"`
	To   Phase `json:"to"`
}
