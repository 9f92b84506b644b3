package service

import (
	"context"
	"time"

	"github.com/wricardo/grid-tactics/game/engine"
)

// GameService defines all match-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, scenarioName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Match Operations
	ClickCell(ctx context.Context, sessionID string, cell engine.Cell, reset bool) (*ActionResult, error)
	BulkClick(ctx context.Context, sessionID string, cells []engine.Cell, reset bool) (*BulkClickResult, error)
	Deselect(ctx context.Context, sessionID string) (*ActionResult, error)
	Advance(ctx context.Context, sessionID string) (*ActionResult, error)
	EndTurn(ctx context.Context, sessionID string) (*ActionResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.MatchState, error)

	// Match State
	GetMatchState(ctx context.Context, sessionID string) (*engine.MatchState, error)
	GetActionHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Scenarios
	ListScenarios(ctx context.Context) ([]*ScenarioInfo, error)
	LoadScenario(ctx context.Context, scenarioName string) (*engine.Scenario, error)
	SaveScenario(ctx context.Context, scenarioName string, scenario *engine.Scenario) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, scenarioID string, scenario *engine.Scenario) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id, scenarioID string, scenario *engine.Scenario) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ScenarioManager handles scenario loading
type ScenarioManager interface {
	LoadScenario(name string) (*engine.Scenario, error)
	ListScenarios() ([]*ScenarioInfo, error)
	GetDefault() *engine.Scenario
	SaveScenario(name string, scenario *engine.Scenario) error
}

// Session represents an active match session
type Session struct {
	ID             string
	Match          *engine.Match
	Scenario       *engine.Scenario
	ScenarioID     string // scenario file name without .json, empty for the default
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
