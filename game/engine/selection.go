package engine

// SelectionController tracks at most one selected unit and the cells it may
// legally move to. It holds the unit by ID only; the Registry stays the
// owner of the record.
type SelectionController struct {
	registry   *Registry
	selected   UnitID
	has        bool
	highlights []Cell
}

// NewSelectionController creates an empty selection over registry
func NewSelectionController(registry *Registry) *SelectionController {
	return &SelectionController{registry: registry}
}

// Select selects the unit on click when it belongs to the active faction,
// and clears the selection otherwise.
func (s *SelectionController) Select(click Cell, active Faction) bool {
	id, ok := s.registry.OccupantAt(click)
	if !ok {
		s.Clear()
		return false
	}
	unit, _ := s.registry.Unit(id)
	if unit.Faction != active {
		s.Clear()
		return false
	}

	s.selected = id
	s.has = true
	s.Refresh()
	return true
}

// ConfirmMove moves the selected unit to click if click is highlighted.
// Clicks outside the highlight set leave the selection as it is.
func (s *SelectionController) ConfirmMove(click Cell) (bool, error) {
	if !s.has || !s.IsHighlighted(click) {
		return false, nil
	}
	if err := s.registry.MoveUnit(s.selected, click); err != nil {
		s.Refresh()
		return false, err
	}
	s.Clear()
	return true, nil
}

// Clear drops the selection and its highlights
func (s *SelectionController) Clear() {
	s.selected = 0
	s.has = false
	s.highlights = nil
}

// Refresh recomputes highlights from the current occupancy. A unit that has
// already acted has no legal destinations.
func (s *SelectionController) Refresh() {
	s.highlights = nil
	if !s.has {
		return
	}
	unit, ok := s.registry.Unit(s.selected)
	if !ok {
		s.Clear()
		return
	}
	if unit.HasActed {
		return
	}
	for _, c := range s.registry.Grid().Adjacent(unit.Position) {
		if !s.registry.IsOccupied(c) {
			s.highlights = append(s.highlights, c)
		}
	}
}

// Selected returns the selected unit, if any
func (s *SelectionController) Selected() (UnitID, bool) {
	return s.selected, s.has
}

// Highlights returns a copy of the highlighted cells in N,S,E,W order
func (s *SelectionController) Highlights() []Cell {
	return append([]Cell{}, s.highlights...)
}

// IsHighlighted reports whether c is a legal destination for the selection
func (s *SelectionController) IsHighlighted(c Cell) bool {
	for _, h := range s.highlights {
		if h == c {
			return true
		}
	}
	return false
}
