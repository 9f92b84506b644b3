package main

import (
	"github.com/rotisserie/eris"

	"github.com/wricardo/grid-tactics/game/engine"
)

// Strategy names
const (
	StrategyEvade = "evade"
	StrategyHunt  = "hunt"
)

// Planner turns a match state into the click sequence for one player turn.
// Each unit that should move contributes two clicks: its own cell to select
// it, then the destination.
type Planner struct {
	strategy string
}

func NewPlanner(strategy string) (*Planner, error) {
	switch strategy {
	case StrategyEvade, StrategyHunt:
		return &Planner{strategy: strategy}, nil
	}
	return nil, eris.Errorf("unknown strategy %q (expected %s or %s)", strategy, StrategyEvade, StrategyHunt)
}

// Plan returns the clicks for every unacted player unit that has a better
// cell to go to. Moves are applied to a scratch registry as they are
// planned so later units see the earlier ones in their new positions.
func (p *Planner) Plan(state *engine.MatchState) ([]engine.Cell, error) {
	if state.Phase != engine.PlayerTurn {
		return nil, nil
	}

	registry, err := engine.RegistryFromState(state)
	if err != nil {
		return nil, err
	}

	var clicks []engine.Cell
	for _, u := range registry.UnitsOf(engine.Player) {
		if u.HasActed {
			continue
		}
		dest, ok := p.bestMove(registry, u)
		if !ok {
			continue
		}
		if err := registry.MoveUnit(u.ID, dest); err != nil {
			return nil, eris.Wrapf(err, "planned move for unit %d", u.ID)
		}
		clicks = append(clicks, u.Position, dest)
	}
	return clicks, nil
}

// bestMove picks the free neighbour that most improves the unit's distance
// to its nearest enemy. Hunting stops once adjacent.
func (p *Planner) bestMove(registry *engine.Registry, u engine.Unit) (engine.Cell, bool) {
	_, current, found := engine.FindNearestEnemy(registry, u.Position)
	if !found {
		return engine.Cell{}, false
	}
	if p.strategy == StrategyHunt && current <= 1 {
		return engine.Cell{}, false
	}

	best, bestScore, ok := engine.Cell{}, p.score(current), false
	for _, c := range registry.Grid().Adjacent(u.Position) {
		if registry.IsOccupied(c) {
			continue
		}
		_, d, _ := engine.FindNearestEnemy(registry, c)
		if s := p.score(d); s > bestScore {
			best, bestScore, ok = c, s, true
		}
	}
	return best, ok
}

func (p *Planner) score(distance int) int {
	if p.strategy == StrategyHunt {
		return -distance
	}
	return distance
}
