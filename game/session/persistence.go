package session

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/wricardo/grid-tactics/game/engine"
	"github.com/wricardo/grid-tactics/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the stored form of a session. The scenario is
// referenced by its file ID and re-read on load.
type PersistedSessionData struct {
	ID             string             `json:"id"`
	ScenarioID     string             `json:"scenario_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	MatchState     *engine.MatchState `json:"match_state"`
}

// encodeSession serializes a session for any storage backend
func encodeSession(session *service.Session) ([]byte, error) {
	if session == nil {
		return nil, eris.New("session cannot be nil")
	}

	state := session.Match.State()
	state.Board = nil

	data := PersistedSessionData{
		ID:             session.ID,
		ScenarioID:     session.ScenarioID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		MatchState:     state,
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "failed to marshal session data")
	}
	return b, nil
}

// decodeSession rebuilds a session: the scenario is resolved through
// scenarios, a fresh match is built on it and the saved state restored.
func decodeSession(b []byte, scenarios service.ScenarioManager) (*service.Session, error) {
	var data PersistedSessionData
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, eris.Wrap(err, "failed to unmarshal session data")
	}

	scenario, err := resolveScenario(data.ScenarioID, scenarios)
	if err != nil {
		return nil, err
	}

	match, err := engine.NewMatch(scenario)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create match")
	}
	if data.MatchState != nil {
		if err := match.SetState(data.MatchState); err != nil {
			return nil, eris.Wrap(err, "failed to restore match state")
		}
	}

	return &service.Session{
		ID:             data.ID,
		Match:          match,
		Scenario:       match.Scenario(),
		ScenarioID:     data.ScenarioID,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

func resolveScenario(scenarioID string, scenarios service.ScenarioManager) (*engine.Scenario, error) {
	if scenarios == nil {
		if scenarioID != "" {
			return nil, eris.Errorf("no scenario source to load '%s'", scenarioID)
		}
		return engine.DefaultScenario(), nil
	}
	if scenarioID == "" {
		if s := scenarios.GetDefault(); s != nil {
			return s, nil
		}
		return engine.DefaultScenario(), nil
	}
	s, err := scenarios.LoadScenario(scenarioID)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to load scenario '%s'", scenarioID)
	}
	return s, nil
}
