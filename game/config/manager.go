package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/grid-tactics/game/engine"
	"github.com/wricardo/grid-tactics/game/service"
)

var (
	ErrScenarioNotFound = service.ErrScenarioNotFound
	ErrInvalidScenario  = service.ErrInvalidScenario
)

// DefaultScenarioName is the file name (without .json) preferred as default
const DefaultScenarioName = "classic"

// Manager handles scenario loading and caching
type Manager struct {
	configDir       string
	defaultScenario *engine.Scenario
	scenarios       map[string]*engine.Scenario
	mu              sync.RWMutex
}

// NewManager creates a new scenario manager over configDir
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, eris.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		scenarios: make(map[string]*engine.Scenario),
	}

	m.loadDefaultScenario()
	return m, nil
}

// LoadScenario loads a scenario by name
func (m *Manager) LoadScenario(name string) (*engine.Scenario, error) {
	name = strings.TrimSuffix(name, ".json")

	m.mu.RLock()
	if s, exists := m.scenarios[name]; exists {
		m.mu.RUnlock()
		return s, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// double-check after acquiring write lock
	if s, exists := m.scenarios[name]; exists {
		return s, nil
	}

	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, eris.Wrapf(ErrScenarioNotFound, "invalid scenario name %q", name)
	}

	data, err := os.ReadFile(filepath.Join(m.configDir, name+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrScenarioNotFound, "scenario %q", name)
		}
		return nil, eris.Wrap(err, "failed to read scenario file")
	}

	s, err := engine.ParseScenario(data)
	if err != nil {
		return nil, eris.Wrapf(ErrInvalidScenario, "%s: %v", name, err)
	}

	m.scenarios[name] = s
	return s, nil
}

// ListScenarios returns information about every valid scenario file
func (m *Manager) ListScenarios() ([]*service.ScenarioInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, eris.Wrap(err, "failed to read config directory")
	}

	var scenarios []*service.ScenarioInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")
		s, err := m.LoadScenario(name)
		if err != nil {
			log.Debug().Err(err).Str("file", entry.Name()).Msg("skipping invalid scenario")
			continue
		}

		players, enemies, _ := s.Spawns()
		grid := s.Grid()
		scenarios = append(scenarios, &service.ScenarioInfo{
			Filename:    entry.Name(),
			ScenarioID:  name,
			Name:        s.Name,
			Description: s.Description,
			Width:       grid.Width,
			Height:      grid.Height,
			Players:     len(players),
			Enemies:     len(enemies),
			StepAI:      s.StepAI,
		})
	}

	return scenarios, nil
}

// GetDefault returns the default scenario
func (m *Manager) GetDefault() *engine.Scenario {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultScenario
}

// SetDefault sets the default scenario by name
func (m *Manager) SetDefault(name string) error {
	s, err := m.LoadScenario(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultScenario = s
	return nil
}

// RefreshCache drops every cached scenario and reloads the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.scenarios = make(map[string]*engine.Scenario)
	m.mu.Unlock()

	m.loadDefaultScenario()
}

// loadDefaultScenario prefers classic.json, then the first valid file, then
// the built-in scenario.
func (m *Manager) loadDefaultScenario() {
	s, err := m.LoadScenario(DefaultScenarioName)
	if err != nil {
		s = engine.DefaultScenario()
		if infos, listErr := m.ListScenarios(); listErr == nil && len(infos) > 0 {
			if first, err := m.LoadScenario(infos[0].ScenarioID); err == nil {
				s = first
			}
		}
	}

	m.mu.Lock()
	m.defaultScenario = s
	m.mu.Unlock()
}

// SaveScenario validates and writes a scenario to disk
func (m *Manager) SaveScenario(name string, s *engine.Scenario) error {
	name = strings.TrimSuffix(name, ".json")
	if name == "" || strings.ContainsAny(name, `/\`) {
		return eris.Wrapf(ErrInvalidScenario, "invalid scenario name %q", name)
	}
	if err := engine.ValidateScenario(s); err != nil {
		return eris.Wrapf(ErrInvalidScenario, "%s: %v", name, err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return eris.Wrap(err, "failed to marshal scenario")
	}

	if err := os.WriteFile(filepath.Join(m.configDir, name+".json"), data, 0644); err != nil {
		return eris.Wrap(err, "failed to write scenario file")
	}

	m.mu.Lock()
	m.scenarios[name] = s
	m.mu.Unlock()

	log.Info().Str("scenario", name).Msg("scenario saved")
	return nil
}
