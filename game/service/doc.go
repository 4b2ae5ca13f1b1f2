// Package service provides the business logic layer for the encounter server.
//
// The service package implements:
//   - Multi-session encounter management
//   - Action dispatch for the active character and for adversaries
//   - Valid move and push queries
//   - Paginated action history
//   - Scenario and job lookup
//
// Core Interfaces:
//
// GameService is the main service interface used by every transport.
// SessionManager handles session creation, retrieval, reset and removal.
// ScenarioRepository loads, lists and saves scenario definitions.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the minigames. Each session owns one minigame, guarded by the session's own
// mutex. Listeners registered with WithListener see every state change after
// the session lock is released, which is how the WebSocket hub broadcasts.
//
// Usage:
//
//	sessions := session.NewManager()
//	scenarios, _ := config.NewManager("scenarios")
//	svc := service.NewGameService(sessions, scenarios)
//
//	info, err := svc.CreateSession(ctx, "warehouse")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	target := engine.Position{X: 1, Y: 2}
//	result, err := svc.ExecuteAction(ctx, info.ID, service.ActionInput{
//		Kind:   engine.KindMove,
//		Target: &target,
//	})
//
// Action input uses ActorID 0 for "whoever holds the turn". Rejected actions
// are not errors; they come back with Success false and a rejected event.
package service
