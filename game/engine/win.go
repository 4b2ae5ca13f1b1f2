package engine

// CheckWinCondition is true when every party member stands in the exit zone.
// An empty party satisfies it vacuously.
func CheckWinCondition(world *World, grid *Grid, party func() []EntityID) bool {
	for _, id := range party() {
		pos, ok := world.Positions.Get(id)
		if !ok || !grid.IsExitZone(pos.X, pos.Y) {
			return false
		}
	}
	return true
}

// AllDefeated reports whether every listed entity carries Stats with no hit
// points left. It is false for an empty list.
func AllDefeated(world *World, ids []EntityID) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		stats, ok := world.Stats.Get(id)
		if !ok || stats.HP > 0 {
			return false
		}
	}
	return true
}

// AllAlive reports whether none of the listed entities has been defeated
func AllAlive(world *World, ids []EntityID) bool {
	for _, id := range ids {
		if !world.IsAlive(id) {
			return false
		}
	}
	return true
}
