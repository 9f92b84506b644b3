// Package service is the orchestration layer between the transports
// (HTTP, WebSocket, MCP) and the match engine.
//
// GameService owns session lifecycle and turns each inbound event into an
// ActionResult carrying the recorded actions, an ordered event list and a
// fresh MatchState snapshot. SessionManager and ScenarioManager are the
// storage seams; game/session and game/config provide the real ones.
//
//	sessions := session.NewManager()
//	scenarios, _ := config.NewManager("configs")
//	svc := service.NewGameService(sessions, scenarios)
//
//	info, err := svc.CreateSession(ctx, "skirmish")
//	res, err := svc.ClickCell(ctx, info.ID, engine.Cell{X: 0, Y: 0}, false)
//
// Sessions are identified by 4-character IDs. Every mutating call is
// serialized by the service and saved through SessionManager.Save.
package service
