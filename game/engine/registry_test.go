package engine

import (
	"testing"

	"gotest.tools/v3/assert"
)

func newTestRegistry(t *testing.T) (*Registry, UnitID, UnitID) {
	t.Helper()
	r := NewRegistry(NewGrid(3, 3, 0))
	p, err := r.Spawn(Player, Cell{0, 0})
	assert.NilError(t, err)
	e, err := r.Spawn(Enemy, Cell{2, 2})
	assert.NilError(t, err)
	return r, p, e
}

func TestRegistry_Spawn(t *testing.T) {
	r, p, e := newTestRegistry(t)
	assert.Equal(t, p, UnitID(1))
	assert.Equal(t, e, UnitID(2))

	id, ok := r.OccupantAt(Cell{0, 0})
	assert.Assert(t, ok)
	assert.Equal(t, id, p)
	_, ok = r.OccupantAt(Cell{1, 1})
	assert.Assert(t, !ok)

	t.Run("out of bounds", func(t *testing.T) {
		_, err := r.Spawn(Player, Cell{3, 0})
		assert.ErrorIs(t, err, ErrInvalidPlacement)
	})
	t.Run("occupied", func(t *testing.T) {
		_, err := r.Spawn(Enemy, Cell{0, 0})
		assert.ErrorIs(t, err, ErrInvalidPlacement)
	})
	t.Run("unknown faction", func(t *testing.T) {
		_, err := r.Spawn(Faction("neutral"), Cell{1, 1})
		assert.ErrorIs(t, err, ErrInvalidPlacement)
	})

	assert.Equal(t, len(r.Units()), 2)
	assert.Equal(t, r.Count(Player), 1)
	assert.Equal(t, r.Count(Enemy), 1)
}

func TestRegistry_MoveUnit(t *testing.T) {
	t.Run("legal move updates occupancy and acted flag", func(t *testing.T) {
		r, p, _ := newTestRegistry(t)
		assert.NilError(t, r.MoveUnit(p, Cell{1, 0}))

		u, _ := r.Unit(p)
		assert.Equal(t, u.Position, Cell{1, 0})
		assert.Assert(t, u.HasActed)
		assert.Assert(t, !r.IsOccupied(Cell{0, 0}))
		id, ok := r.OccupantAt(Cell{1, 0})
		assert.Assert(t, ok)
		assert.Equal(t, id, p)
	})

	t.Run("second move in the same phase is rejected", func(t *testing.T) {
		r, p, _ := newTestRegistry(t)
		assert.NilError(t, r.MoveUnit(p, Cell{1, 0}))
		err := r.MoveUnit(p, Cell{1, 1})
		assert.ErrorIs(t, err, ErrIllegalMove)

		u, _ := r.Unit(p)
		assert.Equal(t, u.Position, Cell{1, 0})
	})

	rejections := []struct {
		name string
		id   UnitID
		dest Cell
	}{
		{"unknown unit", 99, Cell{1, 0}},
		{"out of bounds", 1, Cell{-1, 0}},
		{"not adjacent", 1, Cell{1, 1}},
		{"two cells away", 1, Cell{2, 0}},
		{"same cell", 1, Cell{0, 0}},
		{"occupied", 2, Cell{2, 2}},
	}
	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			r, p, _ := newTestRegistry(t)
			before := r.Units()
			err := r.MoveUnit(tt.id, tt.dest)
			assert.ErrorIs(t, err, ErrIllegalMove)
			assert.DeepEqual(t, r.Units(), before)
			id, _ := r.OccupantAt(Cell{0, 0})
			assert.Equal(t, id, p)
		})
	}

	t.Run("occupied by an adjacent unit", func(t *testing.T) {
		r, _, _ := newTestRegistry(t)
		blocker, err := r.Spawn(Enemy, Cell{1, 0})
		assert.NilError(t, err)
		assert.ErrorIs(t, r.MoveUnit(1, Cell{1, 0}), ErrIllegalMove)
		id, _ := r.OccupantAt(Cell{1, 0})
		assert.Equal(t, id, blocker)
	})
}

func TestRegistry_ActedFlags(t *testing.T) {
	r, p, e := newTestRegistry(t)
	p2, err := r.Spawn(Player, Cell{0, 2})
	assert.NilError(t, err)

	assert.Assert(t, !r.AllActed(Player))
	assert.NilError(t, r.MarkActed(p))
	assert.Assert(t, !r.AllActed(Player))
	assert.ErrorIs(t, r.MarkActed(p), ErrIllegalMove)
	assert.NilError(t, r.MarkActed(p2))
	assert.Assert(t, r.AllActed(Player))
	assert.Assert(t, !r.AllActed(Enemy))

	r.ResetActedFlags(Player)
	assert.Assert(t, !r.AllActed(Player))
	u, _ := r.Unit(e)
	assert.Assert(t, !u.HasActed)

	t.Run("empty faction has trivially acted", func(t *testing.T) {
		empty := NewRegistry(NewGrid(2, 2, 0))
		assert.Assert(t, empty.AllActed(Enemy))
	})
}

func TestRegistry_UnitsOfOrder(t *testing.T) {
	r := NewRegistry(NewGrid(4, 4, 0))
	for _, c := range []Cell{{3, 3}, {0, 0}, {2, 1}} {
		_, err := r.Spawn(Enemy, c)
		assert.NilError(t, err)
	}
	_, err := r.Spawn(Player, Cell{1, 1})
	assert.NilError(t, err)

	enemies := r.UnitsOf(Enemy)
	assert.Equal(t, len(enemies), 3)
	for i, u := range enemies {
		assert.Equal(t, u.ID, UnitID(i+1))
	}
}

func TestRegistry_Restore(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	err := r.restore([]Unit{
		{ID: 1, Faction: Player, Position: Cell{1, 1}},
		{ID: 2, Faction: Enemy, Position: Cell{1, 1}},
	}, 3)
	assert.ErrorIs(t, err, ErrInvalidPlacement)
	// failed restore keeps the previous contents
	assert.Equal(t, len(r.Units()), 2)
	u, _ := r.Unit(1)
	assert.Equal(t, u.Position, Cell{0, 0})

	err = r.restore([]Unit{{ID: 5, Faction: Player, Position: Cell{2, 0}, HasActed: true}}, 0)
	assert.NilError(t, err)
	id, err := r.Spawn(Enemy, Cell{0, 0})
	assert.NilError(t, err)
	assert.Equal(t, id, UnitID(6))
}
