package engine

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestGrid_InBounds(t *testing.T) {
	g := NewGrid(3, 2, 0)
	assert.Equal(t, g.CellSize, DefaultCellSize)

	tests := []struct {
		cell Cell
		want bool
	}{
		{Cell{0, 0}, true},
		{Cell{2, 1}, true},
		{Cell{3, 1}, false},
		{Cell{2, 2}, false},
		{Cell{-1, 0}, false},
		{Cell{0, -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.cell.String(), func(t *testing.T) {
			assert.Equal(t, g.InBounds(tt.cell), tt.want)
		})
	}
}

func TestGrid_AdjacentOrder(t *testing.T) {
	g := NewGrid(3, 3, 64)

	t.Run("center has all four in N,S,E,W order", func(t *testing.T) {
		assert.DeepEqual(t, g.Adjacent(Cell{1, 1}), []Cell{{1, 0}, {1, 2}, {2, 1}, {0, 1}})
	})

	t.Run("corner drops out of bounds neighbours", func(t *testing.T) {
		assert.DeepEqual(t, g.Adjacent(Cell{0, 0}), []Cell{{0, 1}, {1, 0}})
		assert.DeepEqual(t, g.Adjacent(Cell{2, 2}), []Cell{{2, 1}, {1, 2}})
	})

	t.Run("out of range input yields nothing", func(t *testing.T) {
		assert.Equal(t, len(g.Adjacent(Cell{5, 5})), 0)
		assert.Equal(t, len(g.Adjacent(Cell{-1, 0})), 0)
	})

	t.Run("single cell grid", func(t *testing.T) {
		assert.Equal(t, len(NewGrid(1, 1, 0).Adjacent(Cell{0, 0})), 0)
	})
}

func TestManhattanDistance(t *testing.T) {
	assert.Equal(t, ManhattanDistance(Cell{0, 0}, Cell{0, 0}), 0)
	assert.Equal(t, ManhattanDistance(Cell{0, 0}, Cell{2, 3}), 5)
	assert.Equal(t, ManhattanDistance(Cell{4, 1}, Cell{1, 5}), 7)
	assert.Equal(t, ManhattanDistance(Cell{1, 5}, Cell{4, 1}), 7)
	assert.Assert(t, IsAdjacent(Cell{1, 1}, Cell{1, 2}))
	assert.Assert(t, !IsAdjacent(Cell{1, 1}, Cell{2, 2}))
}

func TestGrid_WorldConversion(t *testing.T) {
	g := NewGrid(10, 10, 64)

	assert.Equal(t, g.CellAt(0, 0), Cell{0, 0})
	assert.Equal(t, g.CellAt(63.9, 64), Cell{0, 1})
	assert.Equal(t, g.CellAt(-1, 10), Cell{-1, 0})
	assert.Assert(t, !g.InBounds(g.CellAt(-1, 10)))

	x, y := g.Center(Cell{2, 3})
	assert.Equal(t, x, 160.0)
	assert.Equal(t, y, 224.0)
	assert.Equal(t, g.CellAt(x, y), Cell{2, 3})
}

func TestGrid_CellSizeSurvivesState(t *testing.T) {
	m, err := NewMatch(&Scenario{Name: "small cells", Layout: []string{"P.", ".E"}, CellSize: 32})
	assert.NilError(t, err)

	state := m.State()
	assert.Equal(t, state.CellSize, 32.0)

	r, err := RegistryFromState(state)
	assert.NilError(t, err)
	assert.Equal(t, r.Grid().CellAt(40, 10), Cell{1, 0})
}
