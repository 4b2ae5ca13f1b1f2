package engine

// ActionPoints is the per-character AP ledger. Untracked characters hold the
// default budget. The ledger does not know whose turn it is.
type ActionPoints struct {
	defaultAP int
	points    map[EntityID]int
}

// NewActionPoints creates a ledger with the given default budget
func NewActionPoints(defaultAP int) *ActionPoints {
	return &ActionPoints{
		defaultAP: defaultAP,
		points:    make(map[EntityID]int),
	}
}

// Default returns the per-turn budget
func (a *ActionPoints) Default() int {
	return a.defaultAP
}

// AP returns the remaining budget for the character
func (a *ActionPoints) AP(id EntityID) int {
	if ap, ok := a.points[id]; ok {
		return ap
	}
	return a.defaultAP
}

// Deduct removes amount from the character's budget, never going below zero,
// and returns what is left.
func (a *ActionPoints) Deduct(id EntityID, amount int) int {
	remaining := a.AP(id) - amount
	if remaining < 0 {
		remaining = 0
	}
	a.points[id] = remaining
	return remaining
}

// Reset restores the default budget for the character
func (a *ActionPoints) Reset(id EntityID) {
	a.points[id] = a.defaultAP
}

// CanAfford reports whether the character has at least cost AP left
func (a *ActionPoints) CanAfford(id EntityID, cost int) bool {
	return a.AP(id) >= cost
}

// ResetAll forgets every tracked character
func (a *ActionPoints) ResetAll() {
	a.points = make(map[EntityID]int)
}

// Snapshot copies the tracked entries
func (a *ActionPoints) Snapshot() map[EntityID]int {
	out := make(map[EntityID]int, len(a.points))
	for id, ap := range a.points {
		out[id] = ap
	}
	return out
}
