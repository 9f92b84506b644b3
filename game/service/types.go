package service

import (
	"time"

	"github.com/wricardo/grid-tactics/game/engine"
)

// MaxBulkClicks caps the clicks processed by one BulkClick call
const MaxBulkClicks = 50

// Event types
const (
	EventSelect      = "select"
	EventDeselect    = "deselect"
	EventMove        = "move"
	EventPass        = "pass"
	EventPhaseChange = "phase_change"
	EventReset       = "reset"
)

// SessionInfo provides information about a match session
type SessionInfo struct {
	ID             string             `json:"id"`
	ScenarioID     string             `json:"scenario_id"`
	ScenarioName   string             `json:"scenario_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	State          *engine.MatchState `json:"state"`
	Scenario       *engine.Scenario   `json:"scenario"`
}

// ActionResult contains the result of one inbound event
type ActionResult struct {
	Outcome engine.ClickOutcome   `json:"outcome"`
	Actions []engine.ActionRecord `json:"actions,omitempty"`
	Events  []GameEvent           `json:"events,omitempty"`
	State   *engine.MatchState    `json:"state"`
	Message string                `json:"message"`
}

// BulkClickResult contains the result of a click sequence
type BulkClickResult struct {
	RequestedClicks int  `json:"requested_clicks"`
	ClicksExecuted  int  `json:"clicks_executed"`
	Truncated       bool `json:"truncated,omitempty"`
	Limit           int  `json:"limit,omitempty"`

	Outcomes []engine.ClickOutcome `json:"outcomes"`
	Actions  []engine.ActionRecord `json:"actions,omitempty"`
	Events   []GameEvent           `json:"events"`
	State    *engine.MatchState    `json:"state"`
	Message  string                `json:"message,omitempty"`

	StoppedReason  string `json:"stopped_reason,omitempty"`
	StoppedOnClick int    `json:"stopped_on_click,omitempty"` // 1-based

	StartTurn int `json:"start_turn"`
	EndTurn   int `json:"end_turn"`
}

// GameEvent represents something that happened while handling an event
type GameEvent struct {
	Type      string           `json:"type"` // select, deselect, move, pass, phase_change, reset
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Unit      *engine.UnitID   `json:"unit,omitempty"`
	Faction   engine.Faction   `json:"faction,omitempty"`
	From      *engine.Cell     `json:"from,omitempty"`
	To        *engine.Cell     `json:"to,omitempty"`
	Phase     engine.TurnPhase `json:"phase,omitempty"`
}

// HistoryOptions configures action history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated action history
type HistoryResponse struct {
	Actions      []engine.ActionRecord `json:"actions"`
	TotalActions int                   `json:"total_actions"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"page_size"`
	TotalPages   int                   `json:"total_pages"`
	HasNext      bool                  `json:"has_next"`
	HasPrevious  bool                  `json:"has_previous"`
}

// ScenarioInfo provides information about a scenario file
type ScenarioInfo struct {
	Filename    string `json:"filename"`
	ScenarioID  string `json:"scenario_id"` // identifier to use for session creation
	Name        string `json:"name"`
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Players     int    `json:"players"`
	Enemies     int    `json:"enemies"`
	StepAI      bool   `json:"step_ai"`
}
