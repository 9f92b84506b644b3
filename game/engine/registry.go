package engine

import (
	"sort"

	"github.com/rotisserie/eris"
)

// Registry owns every unit of a match and the cell -> unit occupancy index.
// It is not safe for concurrent use; callers serialise access.
type Registry struct {
	grid      Grid
	units     map[UnitID]*Unit
	occupancy map[Cell]UnitID
	nextID    UnitID
}

// NewRegistry creates an empty registry for the grid
func NewRegistry(grid Grid) *Registry {
	return &Registry{
		grid:      grid,
		units:     make(map[UnitID]*Unit),
		occupancy: make(map[Cell]UnitID),
		nextID:    1,
	}
}

// Grid returns the grid the registry places units on
func (r *Registry) Grid() Grid {
	return r.grid
}

// OccupantAt returns the unit standing on c, if any
func (r *Registry) OccupantAt(c Cell) (UnitID, bool) {
	id, ok := r.occupancy[c]
	return id, ok
}

// IsOccupied reports whether any unit stands on c
func (r *Registry) IsOccupied(c Cell) bool {
	_, ok := r.occupancy[c]
	return ok
}

// Spawn places a new unit of faction f on c
func (r *Registry) Spawn(f Faction, c Cell) (UnitID, error) {
	if !f.Valid() {
		return 0, eris.Wrapf(ErrInvalidPlacement, "unknown faction %q", f)
	}
	if !r.grid.InBounds(c) {
		return 0, eris.Wrapf(ErrInvalidPlacement, "cell %s is outside the %dx%d grid", c, r.grid.Width, r.grid.Height)
	}
	if other, ok := r.occupancy[c]; ok {
		return 0, eris.Wrapf(ErrInvalidPlacement, "cell %s is occupied by unit %d", c, other)
	}

	id := r.nextID
	r.nextID++
	r.units[id] = &Unit{ID: id, Faction: f, Position: c}
	r.occupancy[c] = id
	return id, nil
}

// Unit returns a copy of the unit record
func (r *Registry) Unit(id UnitID) (Unit, bool) {
	u, ok := r.units[id]
	if !ok {
		return Unit{}, false
	}
	return *u, true
}

// Units returns copies of all units in ascending ID order
func (r *Registry) Units() []Unit {
	result := make([]Unit, 0, len(r.units))
	for _, u := range r.units {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// UnitsOf returns copies of the units of faction f in ascending ID order
func (r *Registry) UnitsOf(f Faction) []Unit {
	all := r.Units()
	result := make([]Unit, 0, len(all))
	for _, u := range all {
		if u.Faction == f {
			result = append(result, u)
		}
	}
	return result
}

// Count returns the number of units of faction f
func (r *Registry) Count(f Faction) int {
	n := 0
	for _, u := range r.units {
		if u.Faction == f {
			n++
		}
	}
	return n
}

// CanMove checks every MoveUnit precondition without changing state
func (r *Registry) CanMove(id UnitID, dest Cell) error {
	u, ok := r.units[id]
	if !ok {
		return eris.Wrapf(ErrIllegalMove, "unit %d does not exist", id)
	}
	if u.HasActed {
		return eris.Wrapf(ErrIllegalMove, "unit %d has already acted this phase", id)
	}
	if !r.grid.InBounds(dest) {
		return eris.Wrapf(ErrIllegalMove, "destination %s is out of bounds", dest)
	}
	if other, occupied := r.occupancy[dest]; occupied {
		return eris.Wrapf(ErrIllegalMove, "destination %s is occupied by unit %d", dest, other)
	}
	if !IsAdjacent(u.Position, dest) {
		return eris.Wrapf(ErrIllegalMove, "destination %s is not adjacent to %s", dest, u.Position)
	}
	return nil
}

// MoveUnit moves a unit one step and consumes its action. A rejected move
// leaves the registry untouched.
func (r *Registry) MoveUnit(id UnitID, dest Cell) error {
	if err := r.CanMove(id, dest); err != nil {
		return err
	}

	u := r.units[id]
	delete(r.occupancy, u.Position)
	u.Position = dest
	r.occupancy[dest] = id
	u.HasActed = true
	return nil
}

// MarkActed consumes a unit's action without moving it
func (r *Registry) MarkActed(id UnitID) error {
	u, ok := r.units[id]
	if !ok {
		return eris.Wrapf(ErrIllegalMove, "unit %d does not exist", id)
	}
	if u.HasActed {
		return eris.Wrapf(ErrIllegalMove, "unit %d has already acted this phase", id)
	}
	u.HasActed = true
	return nil
}

// ResetActedFlags clears HasActed for every unit of faction f
func (r *Registry) ResetActedFlags(f Faction) {
	for _, u := range r.units {
		if u.Faction == f {
			u.HasActed = false
		}
	}
}

// AllActed reports whether every unit of faction f has acted. A faction
// without units has trivially finished.
func (r *Registry) AllActed(f Faction) bool {
	for _, u := range r.units {
		if u.Faction == f && !u.HasActed {
			return false
		}
	}
	return true
}

// restore replaces the registry contents with units, checking placement
func (r *Registry) restore(units []Unit, nextID UnitID) error {
	fresh := NewRegistry(r.grid)
	for _, u := range units {
		if u.ID <= 0 {
			return eris.Wrapf(ErrInvalidPlacement, "unit id %d is not positive", u.ID)
		}
		if _, dup := fresh.units[u.ID]; dup {
			return eris.Wrapf(ErrInvalidPlacement, "duplicate unit id %d", u.ID)
		}
		if !u.Faction.Valid() {
			return eris.Wrapf(ErrInvalidPlacement, "unit %d has unknown faction %q", u.ID, u.Faction)
		}
		if !r.grid.InBounds(u.Position) {
			return eris.Wrapf(ErrInvalidPlacement, "unit %d at %s is out of bounds", u.ID, u.Position)
		}
		if other, ok := fresh.occupancy[u.Position]; ok {
			return eris.Wrapf(ErrInvalidPlacement, "units %d and %d share %s", other, u.ID, u.Position)
		}
		unit := u
		fresh.units[u.ID] = &unit
		fresh.occupancy[u.Position] = u.ID
		if u.ID >= fresh.nextID {
			fresh.nextID = u.ID + 1
		}
	}
	if nextID > fresh.nextID {
		fresh.nextID = nextID
	}

	*r = *fresh
	return nil
}
