package engine

import "math"

// Grid is the immutable playing field
type Grid struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	CellSize float64 `json:"cell_size"`
}

// direction offsets in tie-break order: North, South, East, West
var directions = [4]Cell{
	{X: 0, Y: -1},
	{X: 0, Y: 1},
	{X: 1, Y: 0},
	{X: -1, Y: 0},
}

// NewGrid creates a grid; a non-positive cell size falls back to the default
func NewGrid(width, height int, cellSize float64) Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return Grid{Width: width, Height: height, CellSize: cellSize}
}

// InBounds checks if c lies on the grid
func (g Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

// Adjacent returns the in-bounds 4-neighbours of c in North, South, East,
// West order. Cells off the grid have no neighbours.
func (g Grid) Adjacent(c Cell) []Cell {
	if !g.InBounds(c) {
		return nil
	}
	result := make([]Cell, 0, len(directions))
	for _, d := range directions {
		n := Cell{X: c.X + d.X, Y: c.Y + d.Y}
		if g.InBounds(n) {
			result = append(result, n)
		}
	}
	return result
}

// IsAdjacent reports whether b is a 4-neighbour of a
func IsAdjacent(a, b Cell) bool {
	return ManhattanDistance(a, b) == 1
}

// ManhattanDistance calculates the Manhattan distance between two cells
func ManhattanDistance(from, to Cell) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// CellAt converts world coordinates to the cell containing them
func (g Grid) CellAt(px, py float64) Cell {
	size := g.CellSize
	if size <= 0 {
		size = DefaultCellSize
	}
	return Cell{
		X: int(math.Floor(px / size)),
		Y: int(math.Floor(py / size)),
	}
}

// Center converts a cell to the world coordinates of its centre
func (g Grid) Center(c Cell) (float64, float64) {
	size := g.CellSize
	if size <= 0 {
		size = DefaultCellSize
	}
	return float64(c.X)*size + size/2, float64(c.Y)*size + size/2
}
