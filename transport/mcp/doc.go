// Package mcp exposes the encounter engine to AI agents over the Model
// Context Protocol.
//
// The Client registers one MCP tool per game operation and forwards each
// call to the HTTP API, so the MCP server can run beside the API process
// or talk to a remote one.
//
// Tools:
//   - create_session, list_sessions, get_session: session lifecycle
//   - get_state: turn order, active character, text map and entities
//   - valid_moves: reachable cells, legal pushes and legal action kinds
//   - move, push, turn, attack, pass: act as the active character
//   - run_ai: play the active adversary's turn
//   - reset, history: restart a session or page through its actions
//   - list_scenarios, list_jobs, game_instructions: reference material
//
// Every action tool accepts session_id and an optional actor_id. The intent
// argument on move is informational and never sent to the API.
//
// Transport modes:
//
// The server is served over stdio for local MCP clients (ServeStdio) or
// mounted on the /mcp HTTP endpoint of the main server.
//
// Example:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
