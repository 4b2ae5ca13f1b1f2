// Package engine provides the core rules of a turn-based tactical encounter.
//
// The engine package implements:
//   - An entity/component World with monotonic, never-reused entity ids
//   - A bounded Grid with border walls, an entrance and an exit opening
//   - Tiered movement patterns and push legality
//   - A per-character action point ledger and a round/turn scheduler
//   - The five actions (move, push, turn, attack, pass) and their execution
//   - The exit-zone win check and a greedy adversary AI
//   - A batch path-planning mode with step-indexed conflict detection
//
// Core Types:
//
// World stores components per EntityID. Controller owns the Scheduler and
// the ActionPoints ledger and is the single place actions are accepted from;
// only the active character may act. Every outcome, legal or not, comes back
// as an ExecutionResult rather than an error.
//
// Usage:
//
//	world := engine.NewWorld()
//	grid := engine.NewGrid(10, 10)
//	hero := world.CreateEntity()
//	world.Positions.Set(hero, engine.Position{X: 0, Y: 1})
//	world.Attributes.Set(hero, engine.Attributes{Pwr: 3, Mov: 5})
//	world.Players.Set(hero, engine.PlayerControlled{})
//
//	ctrl := engine.NewController()
//	ctrl.StartRound(world.Characters, world)
//	result := ctrl.ExecuteImmediate(world, grid, hero, engine.MoveAction{Target: engine.Position{X: 1, Y: 1}})
//	if !result.Success {
//		fmt.Println(result.Error)
//	}
//
// Concurrency:
//
// Nothing in this package is safe for concurrent use. Callers serialize all
// access to a World and its Controller.
package engine
