// Package scenario turns declarative encounter definitions into playable
// worlds.
//
// A Definition describes the grid, an ordered list of entity placements and
// the declared win conditions. Build creates one entity per placement in
// order, so the first placement becomes entity 1. Definitions and jobs can be
// stored as JSON or YAML; Load and LoadJob pick the decoder by extension and
// validate the result.
//
// Placement property requirements:
//   - character: name and attributes{pwr,mov,inf,cre}; optional hp gives Stats
//   - npc, enemy: name and attributes; maxHp defaults to 10, stamina to 50
//   - crate: weight
//   - trap, obstacle: accepted, but only the position is placed
package scenario
