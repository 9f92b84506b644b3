// Package api provides the HTTP REST API for grid tactics matches.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions                   create, body {"scenario_id": "skirmish"}
//   - GET    /api/sessions                   list (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/{id}              session info with state
//   - DELETE /api/sessions/{id}              delete
//
// Match:
//   - GET  /api/sessions/{id}/state          current MatchState
//   - POST /api/sessions/{id}/click          {"x":1,"y":0,"reset":false} or {"cells":[...]}
//   - POST /api/sessions/{id}/bulk-click     {"cells":[{"x":0,"y":0},...],"reset":false}
//   - POST /api/sessions/{id}/deselect       clear the selection
//   - POST /api/sessions/{id}/advance        step one enemy when the scenario steps the AI
//   - POST /api/sessions/{id}/end-turn       pass every remaining player unit
//   - POST /api/sessions/{id}/reset          restart the scenario
//   - GET  /api/sessions/{id}/history        ?page=&limit=&order=asc|desc
//
// Scenarios:
//   - GET  /api/scenarios                    list
//   - GET  /api/scenarios/{name}             load one
//   - POST /api/scenarios                    save, body is a scenario plus optional "id"
//
// Other:
//   - GET /health
//   - GET /ws?session={id}                   WebSocket state updates
//
// Errors are JSON {"error": "..."}: 404 for unknown sessions or scenarios,
// 400 for invalid input, 500 otherwise.
//
// Action responses carry the outcome, the recorded actions, ordered events
// and the full state including a text board:
//
//	"board": ["P*.", "*..", "..E"]
//
// where '*' marks a highlighted destination and lowercase letters mark units
// that already acted this turn.
package api
