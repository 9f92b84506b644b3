// Package engine provides the core simulation of the grid tactics game.
//
// The engine implements the turn, selection, movement and enemy AI rules:
//   - GridModel helpers on Grid (bounds, N,S,E,W adjacency, Manhattan distance)
//   - Registry, the single owner of unit records and cell occupancy
//   - SelectionController, which derives highlighted destinations
//   - TurnCoordinator, the PlayerTurn/EnemyTurn state machine
//   - ChaseAI, a greedy one-step pursuer for enemy units
//
// Match ties them together behind the Engine interface. A Match is driven
// by discrete events (a cell click, one AI step, end of turn) and runs each
// to completion before returning. It is single-threaded and never logs;
// callers serialise access.
//
// Usage:
//
//	scenario, err := engine.LoadScenario("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	match, err := engine.NewMatch(scenario)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// select the unit on (2,2), then move it south
//	match.OnCellClicked(engine.Cell{X: 2, Y: 2})
//	result, _ := match.OnCellClicked(engine.Cell{X: 2, Y: 3})
//
// Errors:
//
// ErrInvalidPlacement and ErrIllegalMove are the only rule errors; they are
// wrapped with context and should be tested with errors.Is. Clicking empty
// space, the inactive faction or a non-highlighted cell is a normal outcome
// reported through ClickResult.Outcome.
package engine
