package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/grid-tactics/game/engine"
	"github.com/wricardo/grid-tactics/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = service.ErrSessionAlreadyExists
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Manager handles match session lifecycle. Session IDs are case-insensitive
// and stored lowercased.
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	mu          sync.RWMutex
}

// NewManager creates a new in-memory session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
	}
}

// NewManagerWithPersistence creates a session manager backed by persistence
func NewManagerWithPersistence(persistence SessionPersistence) *Manager {
	return &Manager{
		sessions:    make(map[string]*service.Session),
		persistence: persistence,
	}
}

// Create starts a new match on scenario. An empty id gets a generated one.
func (m *Manager) Create(id, scenarioID string, scenario *engine.Scenario) (*service.Session, error) {
	if id == "" {
		id = m.generateSessionID()
	}
	id = strings.ToLower(id)
	if strings.ContainsAny(id, `/\:`) {
		return nil, eris.Wrapf(ErrInvalidSessionID, "%q", id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; exists {
		return nil, eris.Wrapf(ErrSessionAlreadyExists, "session %s", id)
	}

	match, err := engine.NewMatch(scenario)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create match")
	}
	if scenario == nil {
		scenario = match.Scenario()
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		Match:          match,
		Scenario:       scenario,
		ScenarioID:     scenarioID,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[id] = session

	if m.persistence != nil {
		if err := m.persistence.Save(session); err != nil {
			// creation still succeeds
			log.Warn().Err(err).Str("session", id).Msg("failed to persist session")
		}
	}

	return session, nil
}

// Get retrieves a session by ID, falling back to persistence
func (m *Manager) Get(id string) (*service.Session, error) {
	id = strings.ToLower(id)

	m.mu.RLock()
	session, exists := m.sessions[id]
	m.mu.RUnlock()
	if exists {
		return session, nil
	}

	if m.persistence != nil && m.persistence.Exists(id) {
		session, err := m.persistence.Load(id)
		if err != nil {
			return nil, eris.Wrap(err, "failed to load persisted session")
		}

		m.mu.Lock()
		// another caller may have loaded it first
		if existing, ok := m.sessions[id]; ok {
			session = existing
		} else {
			m.sessions[id] = session
		}
		m.mu.Unlock()

		return session, nil
	}

	return nil, ErrSessionNotFound
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id, scenarioID string, scenario *engine.Scenario) (*service.Session, error) {
	session, err := m.Get(id)
	if err == nil {
		return session, nil
	}
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, scenarioID, scenario)
	}
	return nil, err
}

// List returns all in-memory sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

// Delete removes a session from memory and persistence
func (m *Manager) Delete(id string) error {
	id = strings.ToLower(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	_, inMemory := m.sessions[id]
	delete(m.sessions, id)

	if m.persistence != nil && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return eris.Wrap(err, "failed to delete persisted session")
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory evicts a session without touching persistence
func (m *Manager) DeleteFromMemory(id string) error {
	id = strings.ToLower(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// UpdateLastAccessed touches the session's access time. The new time is
// written out by the next Save.
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}
	session.LastAccessedAt = time.Now()
	return nil
}

// Save writes one session to persistence; a no-op without persistence
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	// held while encoding so UpdateLastAccessed cannot race the write
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}
	return m.persistence.Save(session)
}

// CleanupExpiredSessions evicts sessions idle for longer than maxAge from
// memory. Persisted copies stay loadable.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Count returns the number of in-memory sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID returns 4 random hex characters
func (m *Manager) generateSessionID() string {
	b := make([]byte, 2)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// LoadPersistedSessions loads every persisted session into memory. Sessions
// that fail to load are logged and skipped.
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return eris.Wrap(err, "failed to list persisted sessions")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for _, id := range ids {
		id = strings.ToLower(id)
		if _, exists := m.sessions[id]; exists {
			continue
		}

		session, err := m.persistence.Load(id)
		if err != nil {
			log.Warn().Err(err).Str("session", id).Msg("failed to load persisted session")
			continue
		}
		m.sessions[id] = session
		loaded++
	}

	if loaded > 0 {
		log.Info().Int("count", loaded).Msg("loaded persisted sessions")
	}
	return nil
}

// SaveAllSessions writes every in-memory session to persistence
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	failed := 0
	for _, session := range m.sessions {
		if err := m.persistence.Save(session); err != nil {
			log.Warn().Err(err).Str("session", session.ID).Msg("failed to save session")
			failed++
		}
	}

	if failed > 0 {
		return eris.Errorf("failed to save %d sessions", failed)
	}
	return nil
}
