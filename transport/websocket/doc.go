// Package websocket provides WebSocket transport for encounter sessions.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - Broadcasting of snapshots and events after each state change
//   - Connection lifecycle management
//
// Architecture:
//
// A central Hub tracks the clients of every session. Each connection has a
// read goroutine, which only keeps the connection alive, and a write goroutine
// that drains the client's send buffer. A client whose buffer fills up is
// dropped.
//
// Message Protocol:
//
// Outgoing messages are JSON:
//
//	{"session_id": "a1b2", "event": "state_update", "state": {...}, "events": [...]}
//
// Incoming messages are ignored.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	svc := service.NewGameService(sessions, scenarios, service.WithListener(hub.Notify))
//
// The API server upgrades /ws?session=<id> requests with ServeWS, passing the
// current snapshot so the client starts from a known state.
package websocket
