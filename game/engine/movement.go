package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Step legality failures reported by ValidatePathStep.
var (
	ErrOutOfBounds  = errors.New("destination out of bounds")
	ErrWall         = errors.New("destination is a wall")
	ErrOccupied     = errors.New("destination is occupied")
	ErrPathBlocked  = errors.New("path through intermediate cell is blocked")
	ErrUnreachable  = errors.New("destination not reachable with current movement")
	ErrNoPosition   = errors.New("entity has no position")
	ErrBadDirection = errors.New("invalid direction")
)

// MovePattern is one offset a character may move by, unlocked at MinMov.
type MovePattern struct {
	Offset Direction `json:"offset"`
	MinMov int       `json:"min_mov"`
}

// IsLong reports whether the pattern crosses an intermediate cell
func (p MovePattern) IsLong() bool {
	return abs(p.Offset.DX) == 2 || abs(p.Offset.DY) == 2
}

var movementTiers = []MovePattern{
	{Offset: Direction{0, -1}, MinMov: 1},
	{Offset: Direction{0, 1}, MinMov: 1},
	{Offset: Direction{-1, 0}, MinMov: 1},
	{Offset: Direction{1, 0}, MinMov: 1},

	{Offset: Direction{-1, -1}, MinMov: 4},
	{Offset: Direction{1, -1}, MinMov: 4},
	{Offset: Direction{-1, 1}, MinMov: 4},
	{Offset: Direction{1, 1}, MinMov: 4},

	{Offset: Direction{0, -2}, MinMov: 7},
	{Offset: Direction{0, 2}, MinMov: 7},
	{Offset: Direction{-2, 0}, MinMov: 7},
	{Offset: Direction{2, 0}, MinMov: 7},
}

// MovementPatterns returns the offsets unlocked by a movement score, in
// declaration order. Higher tiers keep every lower-tier pattern.
func MovementPatterns(mov int) []MovePattern {
	patterns := make([]MovePattern, 0, len(movementTiers))
	for _, p := range movementTiers {
		if mov >= p.MinMov {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// ValidMoves lists every legal destination for the character from the given
// position, in pattern order.
func ValidMoves(world *World, grid *Grid, id EntityID, from Position, mov int) []Position {
	occupied := occupiedInWorld(world, id)
	var moves []Position
	for _, p := range MovementPatterns(mov) {
		if checkPattern(grid, from, p, occupied, occupied) == nil {
			moves = append(moves, from.Add(p.Offset))
		}
	}
	return moves
}

// CanMoveFromTo reports whether to is one of the legal destinations from from
func CanMoveFromTo(world *World, grid *Grid, id EntityID, from, to Position, mov int) bool {
	return ValidatePathStep(world, grid, id, from, to, mov) == nil
}

// ValidatePathStep applies the movement legality test to a single proposed
// step and returns the first failing check.
func ValidatePathStep(world *World, grid *Grid, id EntityID, from, to Position, mov int) error {
	occupied := occupiedInWorld(world, id)
	return ValidateStepWith(grid, from, to, mov, occupied, occupied)
}

// ValidateStepWith is ValidatePathStep with caller-supplied occupancy tests
// for the destination and for the intermediate cell of 2-cell steps. A nil
// test treats every cell as free.
func ValidateStepWith(grid *Grid, from, to Position, mov int, destOccupied, midOccupied func(Position) bool) error {
	offset := to.Sub(from)
	for _, p := range MovementPatterns(mov) {
		if p.Offset == offset {
			return checkPattern(grid, from, p, destOccupied, midOccupied)
		}
	}
	return fmt.Errorf("%w: (%d,%d) to (%d,%d) with mov %d", ErrUnreachable, from.X, from.Y, to.X, to.Y, mov)
}

func occupiedInWorld(world *World, id EntityID) func(Position) bool {
	return func(pos Position) bool { return world.IsOccupied(pos, id) }
}

func checkPattern(grid *Grid, from Position, p MovePattern, destOccupied, midOccupied func(Position) bool) error {
	to := from.Add(p.Offset)
	switch {
	case !grid.IsValid(to.X, to.Y):
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, to.X, to.Y)
	case grid.IsWall(to.X, to.Y):
		return fmt.Errorf("%w: (%d,%d)", ErrWall, to.X, to.Y)
	case destOccupied != nil && destOccupied(to):
		return fmt.Errorf("%w: (%d,%d)", ErrOccupied, to.X, to.Y)
	}
	if p.IsLong() {
		mid := from.Add(p.Offset.Normalize())
		if grid.IsWall(mid.X, mid.Y) || (midOccupied != nil && midOccupied(mid)) {
			return fmt.Errorf("%w at (%d,%d)", ErrPathBlocked, mid.X, mid.Y)
		}
	}
	return nil
}

// MoveCharacter overwrites the entity's position. Callers validate first.
func MoveCharacter(world *World, id EntityID, to Position) bool {
	if !world.Positions.Has(id) {
		return false
	}
	world.Positions.Set(id, to)
	return true
}

var directionNames = map[string]Direction{
	"up":         Up,
	"down":       Down,
	"left":       Left,
	"right":      Right,
	"up-left":    {DX: -1, DY: -1},
	"up-right":   {DX: 1, DY: -1},
	"down-left":  {DX: -1, DY: 1},
	"down-right": {DX: 1, DY: 1},
}

// ParseDirection converts a direction name such as "up" or "down-left"
func ParseDirection(name string) (Direction, error) {
	d, ok := directionNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Direction{}, fmt.Errorf("%w: %q", ErrBadDirection, name)
	}
	return d, nil
}

// DirectionName is the inverse of ParseDirection; unknown vectors print as "dx,dy"
func DirectionName(d Direction) string {
	for name, v := range directionNames {
		if v == d {
			return name
		}
	}
	return fmt.Sprintf("%d,%d", d.DX, d.DY)
}
