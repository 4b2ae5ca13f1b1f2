package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovementPatternsTiers(t *testing.T) {
	tests := []struct {
		mov  int
		want int
	}{
		{0, 0},
		{1, 4},
		{3, 4},
		{4, 8},
		{6, 8},
		{7, 12},
		{12, 12},
	}
	for _, tt := range tests {
		if got := len(MovementPatterns(tt.mov)); got != tt.want {
			t.Errorf("MovementPatterns(%d) has %d patterns, want %d", tt.mov, got, tt.want)
		}
	}
}

func TestMovementPatternsAreMonotonic(t *testing.T) {
	for mov := 2; mov <= 10; mov++ {
		lower := MovementPatterns(mov - 1)
		higher := MovementPatterns(mov)
		for i, p := range lower {
			if higher[i] != p {
				t.Fatalf("mov %d lost pattern %v from mov %d", mov, p.Offset, mov-1)
			}
		}
	}
}

func TestValidMovesOrderAndWalls(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	hero := addCharacter(w, Position{1, 1}, Attributes{Mov: 1})

	got := ValidMoves(w, g, hero, Position{1, 1}, 1)
	want := []Position{{1, 2}, {0, 1}, {2, 1}}
	assert.Equal(t, want, got, "up is a wall; down, left (entrance) and right remain in pattern order")
}

func TestValidMovesAllTiersInOpenSpace(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	hero := addCharacter(w, Position{5, 5}, Attributes{Mov: 7})

	got := ValidMoves(w, g, hero, Position{5, 5}, 7)
	assert.Len(t, got, 12)
	assert.Equal(t, Position{5, 3}, got[8])
}

func TestValidMovesLongStepNeedsClearPath(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	hero := addCharacter(w, Position{5, 5}, Attributes{Mov: 7})
	addCrate(w, Position{5, 4}, 10)

	got := ValidMoves(w, g, hero, Position{5, 5}, 7)
	assert.NotContains(t, got, Position{5, 4}, "occupied destination")
	assert.NotContains(t, got, Position{5, 3}, "cannot jump over the crate")
	assert.Contains(t, got, Position{5, 7})
	assert.Len(t, got, 10)
}

func TestValidMovesLongStepBlockedByWall(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	hero := addCharacter(w, Position{1, 6}, Attributes{Mov: 7})

	got := ValidMoves(w, g, hero, Position{1, 6}, 7)
	assert.NotContains(t, got, Position{-1, 6})
	assert.NotContains(t, got, Position{0, 6}, "left column outside the entrance is wall")
}

func TestValidatePathStep(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	hero := addCharacter(w, Position{4, 4}, Attributes{Mov: 1})
	addCrate(w, Position{5, 4}, 10)

	tests := []struct {
		name string
		to   Position
		want error
	}{
		{"legal", Position{4, 5}, nil},
		{"occupied", Position{5, 4}, ErrOccupied},
		{"diagonal needs mov 4", Position{5, 5}, ErrUnreachable},
		{"two cells needs mov 7", Position{4, 6}, ErrUnreachable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathStep(w, g, hero, Position{4, 4}, tt.to, 1)
			if tt.want == nil {
				assert.NoError(t, err)
				assert.True(t, CanMoveFromTo(w, g, hero, Position{4, 4}, tt.to, 1))
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestMoveCharacter(t *testing.T) {
	w := NewWorld()
	hero := addCharacter(w, Position{1, 1}, Attributes{Mov: 1})
	assert.True(t, MoveCharacter(w, hero, Position{3, 3}))
	pos, _ := w.Positions.Get(hero)
	assert.Equal(t, Position{3, 3}, pos)

	ghost := w.CreateEntity()
	assert.False(t, MoveCharacter(w, ghost, Position{1, 1}))
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection(" Up ")
	assert.NoError(t, err)
	assert.Equal(t, Up, d)

	d, err = ParseDirection("down-left")
	assert.NoError(t, err)
	assert.Equal(t, Direction{DX: -1, DY: 1}, d)
	assert.Equal(t, "down-left", DirectionName(d))

	_, err = ParseDirection("sideways")
	assert.ErrorIs(t, err, ErrBadDirection)
}
