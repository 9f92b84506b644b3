// Package config loads and caches scenario files from a directory.
//
// A scenario file is JSON decoded into engine.Scenario. The board is given
// either by width/height plus explicit spawn lists, or by a layout of equal
// length rows where '.' is empty, 'P' spawns a player unit and 'E' spawns an
// enemy unit. Files that fail validation are skipped when listing.
//
//	m, err := config.NewManager("configs")
//	s, err := m.LoadScenario("skirmish")
//	all, err := m.ListScenarios()
//
// The default scenario is classic.json when present, otherwise the first
// valid file, otherwise engine.DefaultScenario.
package config
