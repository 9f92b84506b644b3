// Package mcp exposes grid tactics matches to AI agents over the Model
// Context Protocol.
//
// Client registers tools that proxy the REST API, so an agent drives the
// same sessions a browser or the autoplay bot sees:
//   - create_session, list_sessions, get_session: session management
//   - match_state: phase, turn, units and an ASCII board
//   - click_cell, bulk_click, deselect: player input
//   - end_turn, advance_enemy: turn flow
//   - reset_match, action_history: restart and paged history
//   - list_scenarios, game_instructions, describe_cell: reference
//
// Transport modes:
//   - Stdio: ServeStdio for local MCP clients
//   - HTTP: GetMCPServer().HandleMessage behind the /mcp endpoint
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.ServeStdio(); err != nil {
//		log.Fatal().Err(err).Msg("mcp")
//	}
package mcp
