// Command validate checks the scenario JSON files in a directory. A file is
// invalid when it does not parse or fails engine validation (grid bounds,
// layout characters, spawn placement). Files that load but would give a
// degenerate match get warnings:
//   - no player units or no enemy units
//   - a player unit that starts boxed in with no free neighbour
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/grid-tactics/game/engine"
)

// ValidationResult captures the outcome of validating a single file
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

func validateScenarioFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read file: %v", err))
		return result
	}

	scenario, err := engine.ParseScenario(data)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	match, err := engine.NewMatch(scenario)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.Warnings = startWarnings(match.Registry())

	grid := match.Grid()
	registry := match.Registry()
	aiMode := "instant"
	if scenario.StepAI {
		aiMode = "stepped"
	}

	result.Info = append(result.Info,
		fmt.Sprintf("Name: %s", scenario.Name),
		fmt.Sprintf("Grid: %dx%d", grid.Width, grid.Height),
		fmt.Sprintf("Units: %d player, %d enemy", registry.Count(engine.Player), registry.Count(engine.Enemy)),
		fmt.Sprintf("Enemy AI: %s", aiMode),
	)
	if d, ok := closestEngagement(registry); ok {
		result.Info = append(result.Info, fmt.Sprintf("Closest starting distance: %d", d))
	}

	return result
}

// startWarnings reports spawn setups that make for a degenerate match
func startWarnings(registry *engine.Registry) []string {
	var warnings []string

	if registry.Count(engine.Player) == 0 {
		warnings = append(warnings, "no player units: the player can never act")
	}
	if registry.Count(engine.Enemy) == 0 {
		warnings = append(warnings, "no enemy units: enemy turns are skipped")
	}

	for _, u := range registry.UnitsOf(engine.Player) {
		if engine.FreeNeighbours(registry, u.Position) == 0 {
			warnings = append(warnings, fmt.Sprintf("player unit %d at %s starts boxed in", u.ID, u.Position))
		}
	}

	return warnings
}

// closestEngagement is the smallest Manhattan distance between any player
// and any enemy at the start of the match
func closestEngagement(registry *engine.Registry) (int, bool) {
	best, found := 0, false
	for _, u := range registry.UnitsOf(engine.Player) {
		_, d, ok := engine.FindNearestEnemy(registry, u.Position)
		if ok && (!found || d < best) {
			best, found = d, true
		}
	}
	return best, found
}

// validateDir validates every *.json file in dir and prints a report. It
// returns the number of failed files; warnings count as failures when strict.
func validateDir(dir string, strict bool) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return 0, eris.Wrap(err, "error finding scenario files")
	}
	if len(files) == 0 {
		return 0, eris.Errorf("no scenario files in %s", dir)
	}

	failed := 0
	for _, file := range files {
		result := validateScenarioFile(file)
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		switch {
		case !result.Valid:
			fmt.Println("INVALID")
			for _, e := range result.Errors {
				fmt.Println("  x " + e)
			}
			failed++
			continue
		case len(result.Warnings) > 0:
			fmt.Println("VALID (with warnings)")
			if strict {
				failed++
			}
		default:
			fmt.Println("VALID")
		}

		for _, w := range result.Warnings {
			fmt.Println("  ! " + w)
		}
		for _, info := range result.Info {
			fmt.Println("  - " + info)
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	return failed, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "validate",
		Usage: "validate grid tactics scenario files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "../configs", Usage: "directory containing scenario files", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.BoolFlag{Name: "strict", Usage: "treat warnings as failures"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			failed, err := validateDir(cmd.String("dir"), cmd.Bool("strict"))
			if err != nil {
				return err
			}
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d scenario file(s) failed validation", failed), 1)
			}
			fmt.Println("All scenarios are valid")
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
