package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/grid-tactics/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions  SessionManager
	scenarios ScenarioManager
	mu        sync.Mutex
	now       func() time.Time
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, scenarios ScenarioManager) GameService {
	return &gameServiceImpl{
		sessions:  sessions,
		scenarios: scenarios,
		now:       time.Now,
	}
}

// CreateSession creates a new match session on the named scenario, or on the
// default scenario when the name is empty.
func (s *gameServiceImpl) CreateSession(ctx context.Context, scenarioName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var scenario *engine.Scenario
	if scenarioName != "" {
		var err error
		scenario, err = s.scenarios.LoadScenario(scenarioName)
		if err != nil {
			return nil, s.scenarioLoadError(scenarioName, err)
		}
	} else if scenario = s.scenarios.GetDefault(); scenario == nil {
		scenario = engine.DefaultScenario()
	}

	// the session manager generates the 4-character ID
	sess, err := s.sessions.Create("", scenarioName, scenario)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create session")
	}

	log.Info().Str("session", sess.ID).Str("scenario", scenario.Name).Msg("session created")
	return s.sessionInfo(sess), nil
}

// scenarioLoadError lists the valid scenario IDs when name does not exist
func (s *gameServiceImpl) scenarioLoadError(name string, err error) error {
	if !IsNotFound(err) {
		return eris.Wrapf(err, "failed to load scenario %s", name)
	}
	available, listErr := s.scenarios.ListScenarios()
	if listErr != nil || len(available) == 0 {
		return eris.Wrapf(ErrScenarioNotFound, "scenario '%s' not found. Use /api/scenarios to list available scenarios", name)
	}
	ids := make([]string, 0, len(available))
	for _, info := range available {
		ids = append(ids, info.ScenarioID)
	}
	return eris.Wrapf(ErrScenarioNotFound, "scenario '%s' not found. Available scenarios: %v", name, ids)
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	scenarioID := sess.ScenarioID
	if scenarioID == "" {
		scenarioID = "default"
	}
	return &SessionInfo{
		ID:             sess.ID,
		ScenarioID:     scenarioID,
		ScenarioName:   sess.Scenario.Name,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          sess.Match.State(),
		Scenario:       sess.Scenario,
	}
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return eris.Wrapf(err, "failed to delete session %s", sessionID)
	}
	log.Info().Str("session", sessionID).Msg("session deleted")
	return nil
}

// getSession touches the access time, so callers hold the write lock.
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, eris.Wrapf(err, "session %s", sessionID)
	}
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		log.Debug().Err(err).Str("session", sessionID).Msg("failed to update last access")
	}
	return sess, nil
}

// persist saves the session after a mutation; failures are logged only
func (s *gameServiceImpl) persist(sessionID, op string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Str("op", op).Msg("failed to persist session")
	}
}

// ClickCell feeds one click into the session's match
func (s *gameServiceImpl) ClickCell(ctx context.Context, sessionID string, cell engine.Cell, reset bool) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	events := []GameEvent{}
	if reset {
		sess.Match.Reset()
		events = append(events, s.resetEvent())
	}

	before := sess.Match.CurrentPhase()
	r, err := sess.Match.OnCellClicked(cell)
	if err != nil {
		return nil, eris.Wrapf(err, "click %s", cell)
	}

	log.Debug().
		Str("session", sessionID).
		Str("cell", cell.String()).
		Str("outcome", string(r.Outcome)).
		Str("phase", string(r.Phase)).
		Msg("cell clicked")

	result := s.actionResult(sess, before, r)
	result.Events = append(events, result.Events...)
	s.persist(sessionID, "click")
	return result, nil
}

// BulkClick feeds a click sequence, stopping at the first rejected move
func (s *gameServiceImpl) BulkClick(ctx context.Context, sessionID string, cells []engine.Cell, reset bool) (*BulkClickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkClickResult{
		RequestedClicks: len(cells),
		Outcomes:        []engine.ClickOutcome{},
		Events:          []GameEvent{},
	}

	if reset {
		sess.Match.Reset()
		result.Events = append(result.Events, s.resetEvent())
	}
	result.StartTurn = sess.Match.Turn()

	if len(cells) > MaxBulkClicks {
		result.Truncated = true
		result.Limit = MaxBulkClicks
		cells = cells[:MaxBulkClicks]
	}

	for i, cell := range cells {
		if err := ctx.Err(); err != nil {
			result.StoppedReason = "cancelled"
			result.StoppedOnClick = i + 1
			break
		}

		before := sess.Match.CurrentPhase()
		r, err := sess.Match.OnCellClicked(cell)
		if err != nil {
			result.StoppedReason = err.Error()
			result.StoppedOnClick = i + 1
			break
		}

		result.ClicksExecuted++
		result.Outcomes = append(result.Outcomes, r.Outcome)
		result.Actions = append(result.Actions, r.Actions...)
		result.Events = append(result.Events, s.buildEvents(sess.Match, before, r)...)
	}

	result.State = sess.Match.State()
	result.Message = result.State.Message
	result.EndTurn = sess.Match.Turn()

	s.persist(sessionID, "bulk_click")
	return result, nil
}

// Deselect clears the session's selection
func (s *gameServiceImpl) Deselect(ctx context.Context, sessionID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	before := sess.Match.CurrentPhase()
	result := s.actionResult(sess, before, sess.Match.ClearSelection())
	s.persist(sessionID, "deselect")
	return result, nil
}

// Advance lets one enemy unit act when the scenario steps the AI. Outside
// the enemy phase it reports an ignored outcome.
func (s *gameServiceImpl) Advance(ctx context.Context, sessionID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	before := sess.Match.CurrentPhase()
	r, advanced := sess.Match.OnAdvanceSimulation()
	result := s.actionResult(sess, before, r)
	if !advanced {
		result.Message = "Nothing to advance: it is not the enemy turn"
		return result, nil
	}

	s.persist(sessionID, "advance")
	return result, nil
}

// EndTurn forfeits the remaining player actions of the phase
func (s *gameServiceImpl) EndTurn(ctx context.Context, sessionID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	before := sess.Match.CurrentPhase()
	result := s.actionResult(sess, before, sess.Match.EndTurn())
	log.Debug().Str("session", sessionID).Int("turn", result.State.Turn).Msg("turn ended")
	s.persist(sessionID, "end_turn")
	return result, nil
}

// Reset restarts the session's scenario
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.MatchState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Match.Reset()
	s.persist(sessionID, "reset")
	return state, nil
}

// GetMatchState retrieves the current match state
func (s *gameServiceImpl) GetMatchState(ctx context.Context, sessionID string) (*engine.MatchState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Match.State(), nil
}

// GetActionHistory returns paginated action history
func (s *gameServiceImpl) GetActionHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Match.History()
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	actions := []engine.ActionRecord{}
	if start < total {
		if opts.Order == "desc" {
			// most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				actions = append(actions, history[i])
			}
		} else {
			actions = append(actions, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Actions:      actions,
		TotalActions: total,
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   totalPages,
		HasNext:      opts.Page < totalPages,
		HasPrevious:  opts.Page > 1,
	}, nil
}

// ListScenarios returns available scenarios
func (s *gameServiceImpl) ListScenarios(ctx context.Context) ([]*ScenarioInfo, error) {
	return s.scenarios.ListScenarios()
}

// LoadScenario loads a specific scenario
func (s *gameServiceImpl) LoadScenario(ctx context.Context, scenarioName string) (*engine.Scenario, error) {
	return s.scenarios.LoadScenario(scenarioName)
}

// SaveScenario saves a scenario to disk
func (s *gameServiceImpl) SaveScenario(ctx context.Context, scenarioName string, scenario *engine.Scenario) error {
	if scenario == nil {
		return eris.Wrap(ErrInvalidInput, "scenario is required")
	}
	return s.scenarios.SaveScenario(scenarioName, scenario)
}

func (s *gameServiceImpl) actionResult(sess *Session, before engine.TurnPhase, r engine.ClickResult) *ActionResult {
	state := sess.Match.State()
	return &ActionResult{
		Outcome: r.Outcome,
		Actions: r.Actions,
		Events:  s.buildEvents(sess.Match, before, r),
		State:   state,
		Message: state.Message,
	}
}

func (s *gameServiceImpl) resetEvent() GameEvent {
	return GameEvent{
		Type:      EventReset,
		Message:   "Match reset to initial state",
		Timestamp: s.now(),
	}
}

// buildEvents turns a click result into ordered events. Phase changes are
// interleaved before the first action recorded in the new phase.
func (s *gameServiceImpl) buildEvents(m *engine.Match, before engine.TurnPhase, r engine.ClickResult) []GameEvent {
	now := s.now()
	events := []GameEvent{}

	switch r.Outcome {
	case engine.OutcomeSelected:
		ev := GameEvent{Type: EventSelect, Timestamp: now, Unit: r.Unit, Faction: engine.Player}
		if r.Unit != nil {
			if u, ok := m.Registry().Unit(*r.Unit); ok {
				pos := u.Position
				ev.To = &pos
				ev.Message = fmt.Sprintf("Selected unit %d at %s, %d destinations", u.ID, pos, len(m.HighlightedCells()))
			}
		}
		events = append(events, ev)
	case engine.OutcomeDeselected:
		events = append(events, GameEvent{Type: EventDeselect, Message: "Selection cleared", Timestamp: now, Unit: r.Unit})
	}

	phase := before
	transitions := r.Transitions
	for _, a := range r.Actions {
		for a.Phase != phase && len(transitions) > 0 {
			phase = transitions[0]
			transitions = transitions[1:]
			events = append(events, phaseEvent(phase, now))
		}
		events = append(events, actionEvent(a, now))
	}
	for _, p := range transitions {
		events = append(events, phaseEvent(p, now))
	}
	return events
}

func actionEvent(a engine.ActionRecord, now time.Time) GameEvent {
	unit := a.Unit
	from, to := a.From, a.To
	ev := GameEvent{
		Timestamp: now,
		Unit:      &unit,
		Faction:   a.Faction,
		From:      &from,
		To:        &to,
		Phase:     a.Phase,
	}
	if a.Kind == engine.ActionMove {
		ev.Type = EventMove
		ev.Message = fmt.Sprintf("%s unit %d moved %s -> %s", a.Faction, a.Unit, a.From, a.To)
	} else {
		ev.Type = EventPass
		ev.Message = fmt.Sprintf("%s unit %d held position at %s", a.Faction, a.Unit, a.From)
	}
	return ev
}

func phaseEvent(p engine.TurnPhase, now time.Time) GameEvent {
	msg := "Enemy turn begins"
	if p == engine.PlayerTurn {
		msg = "Player turn begins"
	}
	return GameEvent{Type: EventPhaseChange, Message: msg, Timestamp: now, Phase: p}
}
