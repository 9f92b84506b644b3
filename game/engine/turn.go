package engine

// TurnCoordinator is the two-phase turn state machine. It starts in
// PlayerTurn of turn 1 and cycles until the match is discarded.
type TurnCoordinator struct {
	phase TurnPhase
	turn  int
}

// NewTurnCoordinator creates a coordinator at the start of a match
func NewTurnCoordinator() *TurnCoordinator {
	return &TurnCoordinator{phase: PlayerTurn, turn: 1}
}

// Phase returns the current phase
func (t *TurnCoordinator) Phase() TurnPhase {
	return t.phase
}

// ActiveFaction returns the faction allowed to act
func (t *TurnCoordinator) ActiveFaction() Faction {
	return t.phase.Faction()
}

// Turn returns the round number; it increases when the enemy phase ends
func (t *TurnCoordinator) Turn() int {
	return t.turn
}

// CheckTransition flips the phase once every unit of the active faction has
// acted. It must be called after each action of actedFaction. On a flip the
// selection is cleared and the incoming faction's acted flags are reset.
func (t *TurnCoordinator) CheckTransition(registry *Registry, selection *SelectionController, actedFaction Faction) bool {
	if actedFaction != t.ActiveFaction() || !registry.AllActed(actedFaction) {
		return false
	}

	if t.phase == EnemyTurn {
		t.turn++
	}
	t.phase = t.phase.Next()

	selection.Clear()
	registry.ResetActedFlags(t.ActiveFaction())
	return true
}

// restore sets the coordinator state loaded from a snapshot
func (t *TurnCoordinator) restore(phase TurnPhase, turn int) {
	if phase != EnemyTurn {
		phase = PlayerTurn
	}
	if turn < 1 {
		turn = 1
	}
	t.phase = phase
	t.turn = turn
}
