// Package minigame wraps an engine encounter built from a scenario definition
// with the rules of a scenario type.
//
// Every minigame runs the same state machine: New builds the world and
// initializes it, ExecuteAction and RunAI dispatch actions while the game is in
// progress, and the game ends once CheckWin or CheckLoss holds. Combat is won at
// the exit or, when declared, by defeating every adversary. Obstacle adds a cap
// on dispatched actions. Trading scenarios are rejected with
// ErrUnsupportedMinigame.
//
// State returns a Snapshot suitable for JSON encoding, including a text
// rendering of the board:
//
//	#####
//	IK..#
//	#...#
//	#.C.O
//	#####
package minigame
