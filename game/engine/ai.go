package engine

// Decision is what ChaseAI wants one enemy unit to do this phase
type Decision struct {
	Unit UnitID
	From Cell

	// Target is the chased player unit; HasTarget is false when no player
	// units remain.
	Target     UnitID
	TargetCell Cell
	HasTarget  bool

	// Move is false for a pass: no target, or no adjacent free cell is
	// closer to the target than From.
	Move bool
	To   Cell
}

// ChaseAI moves each enemy unit one greedy step toward the nearest player
// unit. It only reads the registry; decisions are applied by the caller
// through Registry.MoveUnit or Registry.MarkActed.
type ChaseAI struct {
	registry *Registry
}

// NewChaseAI creates the AI over registry
func NewChaseAI(registry *Registry) *ChaseAI {
	return &ChaseAI{registry: registry}
}

// NearestPlayer returns the player unit closest to from. Ties go to the
// lowest unit ID.
func (a *ChaseAI) NearestPlayer(from Cell) (Unit, int, bool) {
	var nearest Unit
	minDistance := -1
	for _, p := range a.registry.UnitsOf(Player) {
		d := ManhattanDistance(from, p.Position)
		if minDistance == -1 || d < minDistance {
			minDistance = d
			nearest = p
		}
	}
	return nearest, minDistance, minDistance != -1
}

// Decide picks the action for enemy unit id
func (a *ChaseAI) Decide(id UnitID) Decision {
	unit, ok := a.registry.Unit(id)
	if !ok {
		return Decision{Unit: id}
	}
	decision := Decision{Unit: id, From: unit.Position, To: unit.Position}

	target, bestDistance, found := a.NearestPlayer(unit.Position)
	if !found {
		return decision
	}
	decision.Target = target.ID
	decision.TargetCell = target.Position
	decision.HasTarget = true

	// strict improvement keeps the first cell in N,S,E,W order on ties
	for _, c := range a.registry.Grid().Adjacent(unit.Position) {
		if a.registry.IsOccupied(c) {
			continue
		}
		if d := ManhattanDistance(c, target.Position); d < bestDistance {
			bestDistance = d
			decision.To = c
			decision.Move = true
		}
	}
	return decision
}

// NextUnacted returns the lowest-ID enemy unit that has not acted
func (a *ChaseAI) NextUnacted() (UnitID, bool) {
	for _, u := range a.registry.UnitsOf(Enemy) {
		if !u.HasActed {
			return u.ID, true
		}
	}
	return 0, false
}
