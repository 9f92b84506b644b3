package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

var ErrInvalidScenario = errors.New("invalid scenario")

// Layout characters
const (
	LayoutEmpty  = '.'
	LayoutPlayer = 'P'
	LayoutEnemy  = 'E'
)

// Scenario is the configuration a match starts from. When Layout is set it
// defines the grid size and both spawn lists in row-major order.
type Scenario struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	CellSize     float64  `json:"cell_size,omitempty"`
	PlayerSpawns []Cell   `json:"player_spawns,omitempty"`
	EnemySpawns  []Cell   `json:"enemy_spawns,omitempty"`
	Layout       []string `json:"layout,omitempty"`
	StepAI       bool     `json:"step_ai,omitempty"`
	Welcome      string   `json:"welcome,omitempty"`
}

// Grid returns the grid described by the scenario
func (s *Scenario) Grid() Grid {
	w, h := s.Width, s.Height
	if len(s.Layout) > 0 {
		h = len(s.Layout)
		w = len(s.Layout[0])
	}
	return NewGrid(w, h, s.CellSize)
}

// WelcomeMessage returns the message shown when the match starts
func (s *Scenario) WelcomeMessage() string {
	if s.Welcome != "" {
		return s.Welcome
	}
	return "Player turn 1: select a unit"
}

// Spawns resolves the player and enemy spawn cells. Layout spawns come
// first, followed by any explicitly listed spawns.
func (s *Scenario) Spawns() ([]Cell, []Cell, error) {
	var players, enemies []Cell
	for y, row := range s.Layout {
		for x, ch := range row {
			switch ch {
			case LayoutEmpty:
			case LayoutPlayer:
				players = append(players, Cell{X: x, Y: y})
			case LayoutEnemy:
				enemies = append(enemies, Cell{X: x, Y: y})
			default:
				return nil, nil, eris.Wrapf(ErrInvalidScenario, "invalid character '%c' at row %d, col %d", ch, y+1, x+1)
			}
		}
	}
	players = append(players, s.PlayerSpawns...)
	enemies = append(enemies, s.EnemySpawns...)
	return players, enemies, nil
}

// ValidateScenario checks a scenario for correctness before any match starts
func ValidateScenario(s *Scenario) error {
	if s == nil {
		return eris.Wrap(ErrInvalidScenario, "scenario is nil")
	}
	if s.Name == "" {
		return eris.Wrap(ErrInvalidScenario, "name is required")
	}
	if s.CellSize < 0 {
		return eris.Wrapf(ErrInvalidScenario, "cell_size must not be negative, got %g", s.CellSize)
	}

	if len(s.Layout) > 0 {
		width := len(s.Layout[0])
		for i, row := range s.Layout {
			if len(row) != width {
				return eris.Wrapf(ErrInvalidScenario, "row %d must have %d characters, got %d", i+1, width, len(row))
			}
		}
		if (s.Width != 0 && s.Width != width) || (s.Height != 0 && s.Height != len(s.Layout)) {
			return eris.Wrapf(ErrInvalidScenario, "layout is %dx%d but width/height say %dx%d",
				width, len(s.Layout), s.Width, s.Height)
		}
	}

	grid := s.Grid()
	if grid.Width < MinGridSize || grid.Width > MaxGridSize {
		return eris.Wrapf(ErrInvalidScenario, "width must be between %d and %d, got %d", MinGridSize, MaxGridSize, grid.Width)
	}
	if grid.Height < MinGridSize || grid.Height > MaxGridSize {
		return eris.Wrapf(ErrInvalidScenario, "height must be between %d and %d, got %d", MinGridSize, MaxGridSize, grid.Height)
	}

	players, enemies, err := s.Spawns()
	if err != nil {
		return err
	}

	seen := make(map[Cell]Faction, len(players)+len(enemies))
	check := func(f Faction, cells []Cell) error {
		for _, c := range cells {
			if !grid.InBounds(c) {
				return eris.Wrapf(ErrInvalidPlacement, "%s spawn %s is outside the %dx%d grid", f, c, grid.Width, grid.Height)
			}
			if other, ok := seen[c]; ok {
				return eris.Wrapf(ErrInvalidPlacement, "%s spawn %s overlaps a %s spawn", f, c, other)
			}
			seen[c] = f
		}
		return nil
	}
	if err := check(Player, players); err != nil {
		return err
	}
	return check(Enemy, enemies)
}

// ParseScenario decodes and validates a scenario from JSON
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, eris.Wrap(ErrInvalidScenario, err.Error())
	}
	if err := ValidateScenario(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScenario loads a scenario from a JSON file
func LoadScenario(filename string) (*Scenario, error) {
	scenarioPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			scenarioPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(scenarioPath)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read scenario file '%s'", scenarioPath)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid scenario '%s'", filepath.Base(scenarioPath))
	}
	return s, nil
}

// DefaultScenario returns the built-in 10x10 skirmish: two player units in
// the upper left and two enemies in the lower right.
func DefaultScenario() *Scenario {
	return &Scenario{
		Name:         "Classic Skirmish",
		Description:  "Two player units face two chasing enemies on a 10x10 field",
		Width:        DefaultGridSize,
		Height:       DefaultGridSize,
		CellSize:     DefaultCellSize,
		PlayerSpawns: []Cell{{X: 2, Y: 2}, {X: 3, Y: 2}},
		EnemySpawns:  []Cell{{X: 6, Y: 7}, {X: 7, Y: 7}},
	}
}
