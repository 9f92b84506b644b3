package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wricardo/grid-tactics/game/engine"
)

func cornerDuel(stepAI bool) *engine.Scenario {
	return &engine.Scenario{
		Name:         "Corner Duel",
		Width:        3,
		Height:       3,
		PlayerSpawns: []engine.Cell{{X: 0, Y: 0}},
		EnemySpawns:  []engine.Cell{{X: 2, Y: 2}},
		StepAI:       stepAI,
	}
}

func TestSimulate_ContactInCorner(t *testing.T) {
	for _, stepAI := range []bool{false, true} {
		report, err := simulate(cornerDuel(stepAI), defaultMaxRounds)
		if err != nil {
			t.Fatalf("simulate failed: %v", err)
		}

		if !report.Engaged {
			t.Fatalf("step_ai=%v: expected contact, got %+v", stepAI, report)
		}
		if report.Rounds != 3 {
			t.Errorf("step_ai=%v: expected contact after 3 rounds, got %d", stepAI, report.Rounds)
		}
		if report.EnemyMoves != 3 {
			t.Errorf("step_ai=%v: expected 3 enemy moves, got %d", stepAI, report.EnemyMoves)
		}
		if report.InitialDistance != 4 {
			t.Errorf("Expected initial distance 4, got %d", report.InitialDistance)
		}
		if report.Board[0] != "Pe." {
			t.Errorf("Expected first row 'Pe.', got %q", report.Board[0])
		}
	}
}

func TestSimulate_Corridor(t *testing.T) {
	scenario := &engine.Scenario{
		Name: "Corridor",
		Layout: []string{
			"P.....E",
			".......",
			"P.....E",
			".......",
			"P.....E",
		},
	}

	report, err := simulate(scenario, defaultMaxRounds)
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}

	if report.Players != 3 || report.Enemies != 3 {
		t.Errorf("Expected 3 vs 3, got %d vs %d", report.Players, report.Enemies)
	}
	if !report.Engaged || report.Rounds != 5 {
		t.Errorf("Expected contact after 5 rounds, got engaged=%v rounds=%d", report.Engaged, report.Rounds)
	}
	if report.EnemyMoves != 15 {
		t.Errorf("Expected 15 enemy moves, got %d", report.EnemyMoves)
	}
}

func TestSimulate_NoEnemiesStalls(t *testing.T) {
	scenario := &engine.Scenario{Name: "Alone", Layout: []string{"P..", "..."}}

	report, err := simulate(scenario, defaultMaxRounds)
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}

	if report.Engaged {
		t.Error("Expected no contact without enemies")
	}
	if !report.Stalled || report.Rounds != 1 {
		t.Errorf("Expected stall after 1 round, got stalled=%v rounds=%d", report.Stalled, report.Rounds)
	}
	if report.InitialDistance != -1 {
		t.Errorf("Expected initial distance -1, got %d", report.InitialDistance)
	}
}

func TestSimulate_StartsEngaged(t *testing.T) {
	report, err := simulate(&engine.Scenario{Name: "Touch", Layout: []string{"PE"}}, defaultMaxRounds)
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}

	if !report.Engaged || report.Rounds != 0 {
		t.Errorf("Expected contact at round 0, got engaged=%v rounds=%d", report.Engaged, report.Rounds)
	}
}

func TestSimulate_RoundLimit(t *testing.T) {
	report, err := simulate(engine.DefaultScenario(), 1)
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}

	if report.Rounds != 1 {
		t.Errorf("Expected 1 round, got %d", report.Rounds)
	}
	if report.Engaged || report.Stalled {
		t.Errorf("Expected an unfinished chase, got %+v", report)
	}
	if report.EnemyMoves != 2 {
		t.Errorf("Expected both enemies to move, got %d moves", report.EnemyMoves)
	}
}

func TestSimulate_InvalidScenario(t *testing.T) {
	if _, err := simulate(&engine.Scenario{Name: "bad", Width: 0, Height: 3}, 1); err == nil {
		t.Error("Expected error for invalid scenario")
	}
}

func TestAnalyzeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duel.json")
	content := `{"name": "Duel", "layout": ["P..", "...", "..E"]}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write scenario: %v", err)
	}

	report, err := analyzeFile(path, defaultMaxRounds)
	if err != nil {
		t.Fatalf("analyzeFile failed: %v", err)
	}
	if report.Scenario != "Duel" || !report.Engaged {
		t.Errorf("Unexpected report: %+v", report)
	}

	if _, err := analyzeFile(filepath.Join(t.TempDir(), "missing.json"), 1); err == nil {
		t.Error("Expected error for missing file")
	}
}
