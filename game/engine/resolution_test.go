package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchResolver(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	a := addCharacter(w, Position{2, 2}, Attributes{Pwr: 3, Mov: 1})
	b := addCharacter(w, Position{4, 5}, Attributes{Pwr: 3, Mov: 1})
	crate := addCrate(w, Position{5, 5}, 20)
	party := func() []EntityID { return []EntityID{a, b} }

	r := NewBatchResolver(w, g, DefaultRules(), party)
	assert.Equal(t, ModeBatch, r.Mode())

	assert.True(t, r.Submit(a, MoveAction{Target: Position{2, 3}}).Success)
	assert.True(t, r.Submit(b, PushAction{TargetID: crate}).Success)
	assert.True(t, r.Submit(a, PassAction{}).Success)

	rejected := r.Submit(a, AttackAction{TargetID: b})
	assert.False(t, rejected.Success)
	assert.Contains(t, rejected.Error, "not supported in batch mode")

	unreachable := r.Submit(b, MoveAction{Target: Position{8, 8}})
	assert.False(t, unreachable.Success)

	results := r.Resolve()
	require.Len(t, results, 3)
	for _, res := range results {
		assert.True(t, res.Success, res.Error)
	}

	posA, _ := w.Positions.Get(a)
	posB, _ := w.Positions.Get(b)
	cratePos, _ := w.Positions.Get(crate)
	assert.Equal(t, Position{2, 3}, posA)
	assert.Equal(t, Position{5, 5}, posB)
	assert.Equal(t, Position{6, 5}, cratePos)

	assert.Empty(t, r.Planner().Paths(), "resolving clears the plans")
	assert.Empty(t, r.Resolve())
}

func TestImmediateResolver(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	a := addCharacter(w, Position{0, 1}, Attributes{Mov: 5})
	b := addCharacter(w, Position{0, 2}, Attributes{Mov: 3})

	c := NewController()
	c.StartRound(w.Characters, w)
	r := NewImmediateResolver(c, w, g)
	assert.Equal(t, ModeImmediate, r.Mode())

	result := r.Submit(a, MoveAction{Target: Position{1, 1}})
	require.True(t, result.Success, result.Error)
	assert.Equal(t, 35, c.AP(a))

	result = r.Submit(b, MoveAction{Target: Position{1, 2}})
	assert.Equal(t, MsgNotYourTurn, result.Error)
	assert.Nil(t, r.Resolve())
}

func TestBatchResolverReportsConflicts(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	a := addCharacter(w, Position{2, 2}, Attributes{Mov: 1})
	b := addCharacter(w, Position{4, 2}, Attributes{Mov: 1})
	r := NewBatchResolver(w, g, DefaultRules(), func() []EntityID { return []EntityID{a, b} })

	planned := r.Submit(a, MoveAction{Target: Position{3, 2}})
	require.True(t, planned.Success, planned.Error)
	assert.Nil(t, planned.Conflict)

	clash := r.Submit(b, MoveAction{Target: Position{3, 2}})
	assert.False(t, clash.Success)
	require.NotNil(t, clash.Conflict)
	assert.Equal(t, Conflict{CharacterID: b, Kind: ConflictOccupancy, With: a, Step: 1}, *clash.Conflict)
	assert.Contains(t, clash.Error, "conflicts with another character")

	results := r.Resolve()
	require.Len(t, results, 1)
	posB, _ := w.Positions.Get(b)
	assert.Equal(t, Position{4, 2}, posB)
}
