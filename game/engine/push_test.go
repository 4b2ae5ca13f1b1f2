package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanPush(t *testing.T) {
	tests := []struct {
		name      string
		pusherPos Position
		pwr       int
		crateAt   Position
		weight    int
		dir       Direction
		ok        bool
		reason    string
		stamina   int
	}{
		{"behind and strong enough", Position{4, 5}, 3, Position{5, 5}, 60, Right, true, "", 20},
		{"light crate costs at least one", Position{4, 5}, 5, Position{5, 5}, 1, Right, true, "", 1},
		{"power too low", Position{4, 5}, 2, Position{5, 5}, 10, Right, false, ReasonInsufficientPower, 0},
		{"not adjacent", Position{3, 5}, 3, Position{5, 5}, 10, Right, false, ReasonNotAdjacent, 0},
		{"wrong side", Position{4, 5}, 3, Position{5, 5}, 10, Left, false, ReasonWrongSide, 0},
		{"into wall", Position{7, 2}, 3, Position{8, 2}, 10, Right, false, ReasonDestinationBlocked, 0},
		{"into exit opening", Position{7, 6}, 3, Position{8, 6}, 10, Right, true, "", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorld()
			g := NewGrid(10, 10)
			hero := addCharacter(w, tt.pusherPos, Attributes{Pwr: tt.pwr, Mov: 3})
			crate := addCrate(w, tt.crateAt, tt.weight)

			check := CanPush(w, g, DefaultRules(), hero, crate, tt.dir)
			assert.Equal(t, tt.ok, check.OK)
			assert.Equal(t, tt.reason, check.Reason)
			assert.Equal(t, tt.stamina, check.StaminaCost)
		})
	}
}

func TestCanPushTooHeavy(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	hero := addCharacter(w, Position{4, 5}, Attributes{Pwr: 3})
	crate := addCrate(w, Position{5, 5}, 61)

	check := CanPush(w, g, DefaultRules(), hero, crate, Right)
	assert.False(t, check.OK)
	assert.Contains(t, check.Reason, ReasonTooHeavy)
}

func TestCanPushDestinationOccupied(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	hero := addCharacter(w, Position{4, 5}, Attributes{Pwr: 4})
	crate := addCrate(w, Position{5, 5}, 10)
	addCrate(w, Position{6, 5}, 10)

	check := CanPush(w, g, DefaultRules(), hero, crate, Right)
	assert.Equal(t, ReasonDestinationBlocked, check.Reason)
}

func TestCanPushMissingComponents(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	hero := addCharacter(w, Position{4, 5}, Attributes{Pwr: 4})
	rock := w.CreateEntity()
	w.Positions.Set(rock, Position{5, 5})

	check := CanPush(w, g, DefaultRules(), hero, rock, Right)
	assert.Equal(t, ReasonMissingComponents, check.Reason)
}

func TestValidPushActions(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	hero := addCharacter(w, Position{4, 5}, Attributes{Pwr: 3})
	crate := addCrate(w, Position{5, 5}, 30)

	options := ValidPushActions(w, g, DefaultRules(), hero, crate)
	require.Len(t, options, 1)
	assert.Equal(t, Right, options[0].Direction)
	assert.Equal(t, 10, options[0].StaminaCost)
}

func TestPushObject(t *testing.T) {
	w := NewWorld()
	crate := addCrate(w, Position{5, 5}, 30)
	assert.True(t, PushObject(w, crate, Down))
	pos, _ := w.Positions.Get(crate)
	assert.Equal(t, Position{5, 6}, pos)

	assert.False(t, PushObject(w, w.CreateEntity(), Down))
}
