package engine

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestSelection_Select(t *testing.T) {
	r, p, _ := newTestRegistry(t)
	s := NewSelectionController(r)

	assert.Assert(t, s.Select(Cell{0, 0}, Player))
	id, ok := s.Selected()
	assert.Assert(t, ok)
	assert.Equal(t, id, p)
	assert.DeepEqual(t, s.Highlights(), []Cell{{0, 1}, {1, 0}})

	t.Run("selecting the same unit twice is idempotent", func(t *testing.T) {
		before := s.Highlights()
		assert.Assert(t, s.Select(Cell{0, 0}, Player))
		assert.DeepEqual(t, s.Highlights(), before)
	})

	t.Run("inactive faction clears selection", func(t *testing.T) {
		assert.Assert(t, !s.Select(Cell{2, 2}, Player))
		_, ok := s.Selected()
		assert.Assert(t, !ok)
		assert.Equal(t, len(s.Highlights()), 0)
	})

	t.Run("empty cell clears selection", func(t *testing.T) {
		s.Select(Cell{0, 0}, Player)
		assert.Assert(t, !s.Select(Cell{1, 1}, Player))
		_, ok := s.Selected()
		assert.Assert(t, !ok)
	})

	t.Run("out of bounds clears selection", func(t *testing.T) {
		s.Select(Cell{0, 0}, Player)
		assert.Assert(t, !s.Select(Cell{9, 9}, Player))
		_, ok := s.Selected()
		assert.Assert(t, !ok)
	})
}

func TestSelection_HighlightsExcludeOccupied(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	_, err := r.Spawn(Player, Cell{1, 0})
	assert.NilError(t, err)
	_, err = r.Spawn(Enemy, Cell{0, 1})
	assert.NilError(t, err)

	s := NewSelectionController(r)
	assert.Assert(t, s.Select(Cell{0, 0}, Player))
	assert.Equal(t, len(s.Highlights()), 0)
}

func TestSelection_ConfirmMove(t *testing.T) {
	t.Run("highlighted cell moves and clears", func(t *testing.T) {
		r, p, _ := newTestRegistry(t)
		s := NewSelectionController(r)
		s.Select(Cell{0, 0}, Player)

		moved, err := s.ConfirmMove(Cell{1, 0})
		assert.NilError(t, err)
		assert.Assert(t, moved)
		_, ok := s.Selected()
		assert.Assert(t, !ok)
		u, _ := r.Unit(p)
		assert.Equal(t, u.Position, Cell{1, 0})
	})

	t.Run("misclick keeps selection", func(t *testing.T) {
		r, p, _ := newTestRegistry(t)
		s := NewSelectionController(r)
		s.Select(Cell{0, 0}, Player)

		moved, err := s.ConfirmMove(Cell{2, 0})
		assert.NilError(t, err)
		assert.Assert(t, !moved)
		id, ok := s.Selected()
		assert.Assert(t, ok)
		assert.Equal(t, id, p)
		assert.Equal(t, len(s.Highlights()), 2)
	})

	t.Run("no selection is a no-op", func(t *testing.T) {
		r, _, _ := newTestRegistry(t)
		s := NewSelectionController(r)
		moved, err := s.ConfirmMove(Cell{1, 0})
		assert.NilError(t, err)
		assert.Assert(t, !moved)
	})

	t.Run("acted unit has no highlights", func(t *testing.T) {
		r, p, _ := newTestRegistry(t)
		assert.NilError(t, r.MarkActed(p))
		s := NewSelectionController(r)
		assert.Assert(t, s.Select(Cell{0, 0}, Player))
		assert.Equal(t, len(s.Highlights()), 0)
		moved, err := s.ConfirmMove(Cell{1, 0})
		assert.NilError(t, err)
		assert.Assert(t, !moved)
	})
}

func TestSelection_RefreshAfterOccupancyChange(t *testing.T) {
	r, _, e := newTestRegistry(t)
	s := NewSelectionController(r)
	s.Select(Cell{0, 0}, Player)
	assert.Assert(t, s.IsHighlighted(Cell{1, 0}))

	// move the enemy next to the selected unit
	assert.NilError(t, r.MoveUnit(e, Cell{2, 1}))
	r.ResetActedFlags(Enemy)
	assert.NilError(t, r.MoveUnit(e, Cell{2, 0}))
	r.ResetActedFlags(Enemy)
	assert.NilError(t, r.MoveUnit(e, Cell{1, 0}))
	s.Refresh()

	assert.Assert(t, !s.IsHighlighted(Cell{1, 0}))
	assert.DeepEqual(t, s.Highlights(), []Cell{{0, 1}})
}
