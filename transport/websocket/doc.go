// Package websocket pushes match updates to browser clients.
//
// Clients connect with ?session=<id> and receive a JSON Message after every
// state change of that session. Broadcasts are queued on a buffered channel
// and delivered by Hub.Run, so callers never block on slow clients.
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
package websocket
