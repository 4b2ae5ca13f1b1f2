// Package session provides in-memory session management for encounters.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management
//   - Concurrent access control
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// A service.Session holds one minigame built from a scenario definition, plus
// metadata like creation time and last access time. Reset rebuilds the
// minigame from the same definition.
//
// Session Identifiers:
//
// Sessions use 4-character alphanumeric IDs for easy reference. The manager
// ensures IDs are unique and provides collision-resistant generation using
// cryptographic randomness.
//
// Concurrency:
//
// The session manager is thread-safe and supports concurrent operations.
// Minigames are not: callers lock the session before acting on its game.
//
// Usage:
//
//	manager := session.NewManager(minigame.WithAutoAI(true))
//
//	// Create a new session
//	sess, err := manager.Create("", def)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Retrieve existing session
//	sess, err = manager.Get(sessionID)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// List all active sessions
//	sessions := manager.List()
//
// Cleanup:
//
// Sessions can be explicitly deleted or may expire based on inactivity.
// Nothing is persisted; a restart drops every session.
package session
