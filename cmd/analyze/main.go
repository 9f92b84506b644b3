// Command analyze prints quick heuristics about the scenarios in the configs
// directory. For each scenario it lets the player end every turn without
// moving and reports how many rounds the chasing enemies need to make
// contact, or that they stall.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/grid-tactics/game/engine"
)

const defaultMaxRounds = 50

// Report summarizes one simulated scenario
type Report struct {
	Scenario        string
	Width, Height   int
	Players         int
	Enemies         int
	InitialDistance int // -1 without both factions on the field
	Rounds          int
	Engaged         bool
	Stalled         bool
	EnemyMoves      int
	Board           []string
}

// engaged reports whether any enemy stands next to a player unit
func engaged(registry *engine.Registry) bool {
	for _, u := range registry.UnitsOf(engine.Player) {
		if _, d, ok := engine.FindNearestEnemy(registry, u.Position); ok && d <= 1 {
			return true
		}
	}
	return false
}

func closestDistance(registry *engine.Registry) int {
	best := -1
	for _, u := range registry.UnitsOf(engine.Player) {
		if _, d, ok := engine.FindNearestEnemy(registry, u.Position); ok && (best == -1 || d < best) {
			best = d
		}
	}
	return best
}

func countMoves(actions []engine.ActionRecord) int {
	n := 0
	for _, a := range actions {
		if a.Faction == engine.Enemy && a.Kind == engine.ActionMove {
			n++
		}
	}
	return n
}

// playRound ends the player turn and drives the enemy phase to completion,
// stepping it when the scenario requires. It returns the enemy moves made.
func playRound(m *engine.Match) int {
	moves := countMoves(m.EndTurn().Actions)
	for m.CurrentPhase() == engine.EnemyTurn {
		result, advanced := m.OnAdvanceSimulation()
		if !advanced {
			break
		}
		moves += countMoves(result.Actions)
	}
	return moves
}

// simulate runs up to maxRounds passive rounds of scenario
func simulate(scenario *engine.Scenario, maxRounds int) (*Report, error) {
	m, err := engine.NewMatch(scenario)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to start %s", scenario.Name)
	}

	registry := m.Registry()
	grid := m.Grid()
	report := &Report{
		Scenario:        scenario.Name,
		Width:           grid.Width,
		Height:          grid.Height,
		Players:         registry.Count(engine.Player),
		Enemies:         registry.Count(engine.Enemy),
		InitialDistance: closestDistance(registry),
		Engaged:         engaged(registry),
	}

	for !report.Engaged && report.Rounds < maxRounds {
		moves := playRound(m)
		report.Rounds++
		report.EnemyMoves += moves
		report.Engaged = engaged(registry)
		if moves == 0 && !report.Engaged {
			report.Stalled = true
			break
		}
	}

	report.Board = engine.RenderBoard(grid, registry.Units(), nil)
	return report, nil
}

func printReport(r *Report) {
	fmt.Printf("Name: %s\n", r.Scenario)
	fmt.Printf("Grid: %d x %d\n", r.Width, r.Height)
	fmt.Printf("Units: %d player, %d enemy\n", r.Players, r.Enemies)
	if r.InitialDistance >= 0 {
		fmt.Printf("Closest starting distance: %d\n", r.InitialDistance)
	}

	switch {
	case r.Engaged && r.Rounds == 0:
		fmt.Println("Enemies start in contact")
	case r.Engaged:
		fmt.Printf("Contact after %d round(s), %d enemy move(s)\n", r.Rounds, r.EnemyMoves)
	case r.Stalled:
		fmt.Printf("WARNING: enemies stall after %d round(s) without contact\n", r.Rounds)
	default:
		fmt.Printf("WARNING: no contact within %d rounds\n", r.Rounds)
	}

	for _, row := range r.Board {
		fmt.Println("  " + row)
	}
}

func analyzeFile(path string, maxRounds int) (*Report, error) {
	scenario, err := engine.LoadScenario(path)
	if err != nil {
		return nil, err
	}
	return simulate(scenario, maxRounds)
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "simulate passive play on scenario files",
		ArgsUsage: "[scenario.json ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "configs", Usage: "directory scanned when no files are given", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.IntFlag{Name: "rounds", Value: defaultMaxRounds, Usage: "maximum rounds to simulate"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				files, err = filepath.Glob(filepath.Join(cmd.String("dir"), "*.json"))
				if err != nil {
					return eris.Wrap(err, "error finding scenario files")
				}
			}

			for _, file := range files {
				fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
				report, err := analyzeFile(file, cmd.Int("rounds"))
				if err != nil {
					fmt.Printf("Error: %v\n", err)
					continue
				}
				printReport(report)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
