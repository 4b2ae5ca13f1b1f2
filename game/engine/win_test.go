package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckWinCondition(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	a := addCharacter(w, Position{9, 5}, Attributes{Mov: 3})
	b := addCharacter(w, Position{8, 6}, Attributes{Mov: 3})
	party := func() []EntityID { return []EntityID{a, b} }

	assert.False(t, CheckWinCondition(w, g, party))

	w.Positions.Set(b, Position{9, 8})
	assert.True(t, CheckWinCondition(w, g, party))

	assert.True(t, CheckWinCondition(w, g, func() []EntityID { return nil }), "empty party wins vacuously")
}

func TestDefeatChecks(t *testing.T) {
	w := NewWorld()
	orc := addNPC(w, Position{2, 2}, Attributes{Mov: 1}, 4)
	goblin := addNPC(w, Position{3, 3}, Attributes{Mov: 1}, 4)
	ids := []EntityID{orc, goblin}

	assert.False(t, AllDefeated(w, nil))
	assert.False(t, AllDefeated(w, ids))
	assert.True(t, AllAlive(w, ids))

	w.Stats.Set(orc, Stats{HP: 0, MaxHP: 4})
	assert.False(t, AllDefeated(w, ids))
	assert.False(t, AllAlive(w, ids))

	w.Stats.Set(goblin, Stats{HP: 0, MaxHP: 4})
	assert.True(t, AllDefeated(w, ids))
}

func TestRulesValidateAndMerge(t *testing.T) {
	assert.NoError(t, DefaultRules().Validate())

	bad := DefaultRules()
	bad.PushCost = 60
	assert.Error(t, bad.Validate())

	bad = DefaultRules()
	bad.MinPushPower = 0
	assert.Error(t, bad.Validate())

	merged := DefaultRules().Merge(Rules{MoveCost: 10, EnforceMovementRange: true})
	assert.Equal(t, 10, merged.MoveCost)
	assert.Equal(t, PushCost, merged.PushCost)
	assert.True(t, merged.EnforceMovementRange)
}

func TestManhattanHelpers(t *testing.T) {
	assert.Equal(t, 5, ManhattanDistance(Position{1, 1}, Position{3, 4}))

	idx, dist, ok := FindNearest(Position{0, 0}, []Position{{5, 5}, {1, 2}, {2, 1}})
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 3, dist)

	_, _, ok = FindNearest(Position{0, 0}, nil)
	assert.False(t, ok)
}
