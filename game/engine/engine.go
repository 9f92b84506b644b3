package engine

import (
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// Engine provides the main interface for match operations
type Engine interface {
	// Inbound events
	OnCellClicked(c Cell) (ClickResult, error)
	OnAdvanceSimulation() (ClickResult, bool)
	EndTurn() ClickResult
	ClearSelection() ClickResult

	// Queries polled by the presentation layer
	CurrentPhase() TurnPhase
	HighlightedCells() []Cell
	SelectedUnit() (UnitID, bool)
	UnitSnapshot() []UnitSnapshot
	Turn() int

	// State management
	State() *MatchState
	SetState(state *MatchState) error
	Reset() *MatchState
	Scenario() *Scenario

	// History
	History() []ActionRecord
	LastAction() *ActionRecord
}

var _ Engine = (*Match)(nil)

// Match owns every piece of state of one running scenario. It is not safe
// for concurrent use; the session layer serialises access.
type Match struct {
	scenario  *Scenario
	grid      Grid
	registry  *Registry
	selection *SelectionController
	turns     *TurnCoordinator
	ai        *ChaseAI

	message      string
	history      []ActionRecord
	totalActions int
	current      []ActionRecord

	now func() time.Time
}

// NewMatch validates the scenario and spawns its units, players first, each
// faction in listed order.
func NewMatch(scenario *Scenario) (*Match, error) {
	if scenario == nil {
		scenario = DefaultScenario()
	}
	if err := ValidateScenario(scenario); err != nil {
		return nil, err
	}

	m := &Match{
		scenario: scenario,
		history:  []ActionRecord{},
		current:  []ActionRecord{},
		now:      time.Now,
	}
	if err := m.setup(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Match) setup() error {
	players, enemies, err := m.scenario.Spawns()
	if err != nil {
		return err
	}

	m.grid = m.scenario.Grid()
	m.registry = NewRegistry(m.grid)
	for _, c := range players {
		if _, err := m.registry.Spawn(Player, c); err != nil {
			return err
		}
	}
	for _, c := range enemies {
		if _, err := m.registry.Spawn(Enemy, c); err != nil {
			return err
		}
	}

	m.selection = NewSelectionController(m.registry)
	m.turns = NewTurnCoordinator()
	m.ai = NewChaseAI(m.registry)
	m.message = m.scenario.WelcomeMessage()
	return nil
}

// OnCellClicked routes a click to selection or move confirmation. Clicks
// during the enemy phase are ignored. The only error is ErrIllegalMove,
// which a highlighted destination never produces.
func (m *Match) OnCellClicked(c Cell) (result ClickResult, err error) {
	result.Outcome = OutcomeIgnored
	defer m.finish(&result)

	if m.turns.Phase() != PlayerTurn {
		m.message = "Enemy turn in progress"
		return result, nil
	}
	active := m.turns.ActiveFaction()

	selected, hasSelection := m.selection.Selected()
	if hasSelection && m.selection.IsHighlighted(c) {
		before, _ := m.registry.Unit(selected)
		moved, moveErr := m.selection.ConfirmMove(c)
		if moveErr != nil {
			err = moveErr
			return result, err
		}
		if moved {
			result.Outcome = OutcomeMoved
			result.Unit = &selected
			result.Actions = append(result.Actions, m.record(before, ActionMove, c, nil))
			m.message = "Unit moved to " + c.String()
			m.afterAction(Player, &result)
		}
		return result, nil
	}

	if id, ok := m.registry.OccupantAt(c); ok {
		if u, _ := m.registry.Unit(id); u.Faction == active {
			m.selection.Select(c, active)
			result.Outcome = OutcomeSelected
			result.Unit = &id
			if u.HasActed {
				m.message = "Unit has already acted this turn"
			} else {
				m.message = "Unit selected"
			}
			return result, nil
		}
	}

	if !hasSelection {
		// empty cell or the inactive faction's unit
		m.selection.Select(c, active)
		m.message = "Nothing to select at " + c.String()
	}
	return result, nil
}

// ClickAll feeds clicks in order and stops at the first error
func (m *Match) ClickAll(cells []Cell) ([]ClickResult, error) {
	results := make([]ClickResult, 0, len(cells))
	for _, c := range cells {
		r, err := m.OnCellClicked(c)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

// ClearSelection drops the current selection
func (m *Match) ClearSelection() ClickResult {
	result := ClickResult{Outcome: OutcomeIgnored}
	if id, ok := m.selection.Selected(); ok {
		m.selection.Clear()
		result.Outcome = OutcomeDeselected
		result.Unit = &id
		m.message = "Selection cleared"
	}
	m.finish(&result)
	return result
}

// OnAdvanceSimulation lets the lowest-ID unacted enemy take its action. It
// reports false when the enemy phase is not active.
func (m *Match) OnAdvanceSimulation() (result ClickResult, advanced bool) {
	result.Outcome = OutcomeIgnored
	defer m.finish(&result)

	if m.turns.Phase() != EnemyTurn {
		return result, false
	}

	result.Outcome = OutcomeAdvanced
	id, ok := m.ai.NextUnacted()
	if !ok {
		m.afterAction(Enemy, &result)
		return result, true
	}
	m.advanceEnemy(id, &result)
	return result, true
}

// EndTurn forfeits the remaining player actions of the phase. Each unacted
// player unit passes, which triggers the normal phase transition.
func (m *Match) EndTurn() (result ClickResult) {
	result.Outcome = OutcomeIgnored
	defer m.finish(&result)

	if m.turns.Phase() != PlayerTurn {
		return result
	}

	result.Outcome = OutcomeTurnEnded
	m.selection.Clear()
	for _, u := range m.registry.UnitsOf(Player) {
		if u.HasActed {
			continue
		}
		if err := m.registry.MarkActed(u.ID); err == nil {
			result.Actions = append(result.Actions, m.record(u, ActionPass, u.Position, nil))
		}
	}
	m.message = "Turn ended"
	m.afterAction(Player, &result)
	return result
}

// advanceEnemy applies one ChaseAI decision through the same registry path
// the player uses.
func (m *Match) advanceEnemy(id UnitID, result *ClickResult) {
	before, ok := m.registry.Unit(id)
	if !ok {
		return
	}

	d := m.ai.Decide(id)
	var target *Cell
	if d.HasTarget {
		tc := d.TargetCell
		target = &tc
	}

	kind := ActionPass
	to := before.Position
	if d.Move && m.registry.MoveUnit(id, d.To) == nil {
		kind = ActionMove
		to = d.To
	} else if err := m.registry.MarkActed(id); err != nil {
		return
	}

	result.Actions = append(result.Actions, m.record(before, kind, to, target))
	m.selection.Refresh()
	m.afterAction(Enemy, result)
}

// afterAction runs the transition check and, on entering the enemy phase,
// the full AI pass unless the scenario steps it.
func (m *Match) afterAction(acted Faction, result *ClickResult) {
	if !m.turns.CheckTransition(m.registry, m.selection, acted) {
		return
	}
	result.Transitions = append(result.Transitions, m.turns.Phase())

	if m.turns.Phase() == PlayerTurn {
		m.message = "Player turn " + strconv.Itoa(m.turns.Turn())
		return
	}
	m.message = "Enemy turn"
	if m.scenario.StepAI && m.registry.Count(Enemy) > 0 {
		return
	}
	m.runEnemyPass(result)
}

func (m *Match) runEnemyPass(result *ClickResult) {
	for m.turns.Phase() == EnemyTurn {
		id, ok := m.ai.NextUnacted()
		if !ok {
			m.afterAction(Enemy, result)
			return
		}
		m.advanceEnemy(id, result)
	}
}

func (m *Match) record(before Unit, kind ActionKind, to Cell, target *Cell) ActionRecord {
	m.totalActions++
	rec := ActionRecord{
		Number:    m.totalActions,
		Turn:      m.turns.Turn(),
		Phase:     m.turns.Phase(),
		Unit:      before.ID,
		Faction:   before.Faction,
		Kind:      kind,
		From:      before.Position,
		To:        to,
		Target:    target,
		Timestamp: m.now().Unix(),
	}
	m.history = append(m.history, rec)
	m.current = append(m.current, rec)
	return rec
}

func (m *Match) finish(result *ClickResult) {
	result.Phase = m.turns.Phase()
	result.Turn = m.turns.Turn()
}

// CurrentPhase returns the active turn phase
func (m *Match) CurrentPhase() TurnPhase {
	return m.turns.Phase()
}

// HighlightedCells returns the legal destinations of the selected unit
func (m *Match) HighlightedCells() []Cell {
	return m.selection.Highlights()
}

// SelectedUnit returns the selected unit, if any
func (m *Match) SelectedUnit() (UnitID, bool) {
	return m.selection.Selected()
}

// UnitSnapshot returns every unit in ascending ID order for rendering
func (m *Match) UnitSnapshot() []UnitSnapshot {
	units := m.registry.Units()
	snapshot := make([]UnitSnapshot, 0, len(units))
	for _, u := range units {
		snapshot = append(snapshot, UnitSnapshot{ID: u.ID, Faction: u.Faction, Position: u.Position})
	}
	return snapshot
}

// Turn returns the round number
func (m *Match) Turn() int {
	return m.turns.Turn()
}

// Grid returns the match grid
func (m *Match) Grid() Grid {
	return m.grid
}

// Registry exposes the unit registry for read-only queries
func (m *Match) Registry() *Registry {
	return m.registry
}

// Scenario returns the scenario the match was built from
func (m *Match) Scenario() *Scenario {
	return m.scenario
}

// State returns a snapshot of the complete match state
func (m *Match) State() *MatchState {
	units := m.registry.Units()
	state := &MatchState{
		Scenario:            m.scenario.Name,
		Width:               m.grid.Width,
		Height:              m.grid.Height,
		CellSize:            m.grid.CellSize,
		Phase:               m.turns.Phase(),
		Turn:                m.turns.Turn(),
		Units:               units,
		NextUnitID:          m.registry.nextID,
		Highlights:          m.selection.Highlights(),
		Message:             m.message,
		History:             append([]ActionRecord{}, m.history...),
		TotalActions:        m.totalActions,
		CurrentActions:      append([]ActionRecord{}, m.current...),
		CurrentActionsCount: len(m.current),
		Board:               RenderBoard(m.grid, units, m.selection.Highlights()),
	}
	if id, ok := m.selection.Selected(); ok {
		state.Selected = &id
	}
	return state
}

// SetState restores a snapshot taken by State (used for persistence
// loading). Unit placement is re-validated against the grid.
func (m *Match) SetState(state *MatchState) error {
	if state == nil {
		return eris.New("state cannot be nil")
	}
	if state.Width != m.grid.Width || state.Height != m.grid.Height {
		return eris.Wrapf(ErrInvalidPlacement, "state grid %dx%d does not match scenario grid %dx%d",
			state.Width, state.Height, m.grid.Width, m.grid.Height)
	}
	if err := m.registry.restore(state.Units, state.NextUnitID); err != nil {
		return err
	}

	m.turns.restore(state.Phase, state.Turn)
	m.selection.Clear()
	if state.Selected != nil {
		if u, ok := m.registry.Unit(*state.Selected); ok && u.Faction == m.turns.ActiveFaction() {
			m.selection.Select(u.Position, u.Faction)
		}
	}

	m.message = state.Message
	m.history = append([]ActionRecord{}, state.History...)
	m.current = append([]ActionRecord{}, state.CurrentActions...)
	m.totalActions = state.TotalActions
	if m.totalActions < len(m.history) {
		m.totalActions = len(m.history)
	}
	return nil
}

// Reset restarts the scenario. The cumulative action history and total are
// kept; only the current segment is cleared.
func (m *Match) Reset() *MatchState {
	prevHistory := m.history
	prevTotal := m.totalActions

	// the scenario was validated by NewMatch
	_ = m.setup()

	m.history = prevHistory
	m.totalActions = prevTotal
	m.current = []ActionRecord{}
	return m.State()
}

// History returns the complete action history
func (m *Match) History() []ActionRecord {
	return m.history
}

// LastAction returns the most recent action, or nil if none
func (m *Match) LastAction() *ActionRecord {
	if len(m.history) == 0 {
		return nil
	}
	return &m.history[len(m.history)-1]
}
