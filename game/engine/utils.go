package engine

import "github.com/rotisserie/eris"

// Board characters
const (
	BoardEmpty       = '.'
	BoardHighlight   = '*'
	BoardPlayer      = 'P'
	BoardEnemy       = 'E'
	BoardPlayerActed = 'p'
	BoardEnemyActed  = 'e'
)

// RenderBoard draws the grid as one string per row. Units that already
// acted are drawn in lower case.
func RenderBoard(grid Grid, units []Unit, highlights []Cell) []string {
	if grid.Width <= 0 || grid.Height <= 0 {
		return nil
	}
	rows := make([][]byte, grid.Height)
	for y := range rows {
		rows[y] = make([]byte, grid.Width)
		for x := range rows[y] {
			rows[y][x] = BoardEmpty
		}
	}
	for _, c := range highlights {
		if grid.InBounds(c) {
			rows[c.Y][c.X] = BoardHighlight
		}
	}
	for _, u := range units {
		if !grid.InBounds(u.Position) {
			continue
		}
		ch := byte(BoardPlayer)
		switch {
		case u.Faction == Enemy && u.HasActed:
			ch = BoardEnemyActed
		case u.Faction == Enemy:
			ch = BoardEnemy
		case u.HasActed:
			ch = BoardPlayerActed
		}
		rows[u.Position.Y][u.Position.X] = ch
	}

	board := make([]string, grid.Height)
	for y, row := range rows {
		board[y] = string(row)
	}
	return board
}

// FindNearestEnemy finds the enemy closest to from, ties to the lowest ID
func FindNearestEnemy(registry *Registry, from Cell) (Unit, int, bool) {
	minDistance := -1
	var nearest Unit
	for _, u := range registry.UnitsOf(Enemy) {
		d := ManhattanDistance(from, u.Position)
		if minDistance == -1 || d < minDistance {
			minDistance = d
			nearest = u
		}
	}
	return nearest, minDistance, minDistance != -1
}

// AnalyzeThreat rates how close the enemies are to a player unit
func AnalyzeThreat(registry *Registry, id UnitID) string {
	u, ok := registry.Unit(id)
	if !ok {
		return "UNKNOWN: no such unit"
	}
	_, distance, found := FindNearestEnemy(registry, u.Position)
	switch {
	case !found:
		return "SAFE: no enemies on the field"
	case distance <= 1:
		return "ENGAGED: enemy adjacent"
	case distance == 2:
		return "DANGER: enemy can close in next turn"
	case distance <= 4:
		return "CAUTION: enemy approaching"
	}
	return "SAFE: enemies are far away"
}

// FreeNeighbours counts the unoccupied in-bounds neighbours of c
func FreeNeighbours(registry *Registry, c Cell) int {
	n := 0
	for _, a := range registry.Grid().Adjacent(c) {
		if !registry.IsOccupied(a) {
			n++
		}
	}
	return n
}

// RegistryFromState rebuilds a registry from a state snapshot, e.g. one
// received over the wire.
func RegistryFromState(state *MatchState) (*Registry, error) {
	if state == nil {
		return nil, eris.New("state cannot be nil")
	}
	r := NewRegistry(NewGrid(state.Width, state.Height, state.CellSize))
	if err := r.restore(state.Units, state.NextUnitID); err != nil {
		return nil, err
	}
	return r, nil
}
