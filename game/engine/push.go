package engine

import "fmt"

// Push rejection reasons. Only ReasonInsufficientPower and the boolean are
// contractual; the rest are for display.
const (
	ReasonMissingComponents  = "Missing components"
	ReasonInsufficientPower  = "STR 3+ required to push"
	ReasonTooHeavy           = "Object too heavy"
	ReasonNotAdjacent        = "Object not adjacent"
	ReasonWrongSide          = "Must stand behind the object to push it that way"
	ReasonDestinationBlocked = "Push destination blocked"
)

// PushCheck is the outcome of CanPush.
type PushCheck struct {
	OK          bool   `json:"can_push"`
	Reason      string `json:"reason,omitempty"`
	StaminaCost int    `json:"stamina_cost,omitempty"`
}

// PushOption is a direction an object can currently be pushed in.
type PushOption struct {
	Direction   Direction `json:"direction"`
	StaminaCost int       `json:"stamina_cost"`
}

// CanPush checks whether pusher may push object one cell in dir. The pusher
// must stand directly behind the object, so the vector from pusher to object
// equals dir.
func CanPush(world *World, grid *Grid, rules Rules, pusher, object EntityID, dir Direction) PushCheck {
	attrs, hasAttrs := world.Attributes.Get(pusher)
	pusherPos, hasPusherPos := world.Positions.Get(pusher)
	pushable, hasPushable := world.Pushables.Get(object)
	objPos, hasObjPos := world.Positions.Get(object)
	if !hasAttrs || !hasPusherPos || !hasPushable || !hasObjPos {
		return PushCheck{Reason: ReasonMissingComponents}
	}

	if attrs.Pwr < rules.MinPushPower {
		if rules.MinPushPower == MinPushPower {
			return PushCheck{Reason: ReasonInsufficientPower}
		}
		return PushCheck{Reason: fmt.Sprintf("STR %d+ required to push", rules.MinPushPower)}
	}

	capacity := attrs.Pwr * rules.WeightPerPower
	if pushable.Weight > capacity {
		return PushCheck{Reason: fmt.Sprintf("%s (weight %d, capacity %d)", ReasonTooHeavy, pushable.Weight, capacity)}
	}

	if ManhattanDistance(pusherPos, objPos) != 1 {
		return PushCheck{Reason: ReasonNotAdjacent}
	}

	if objPos.Sub(pusherPos) != dir {
		return PushCheck{Reason: ReasonWrongSide}
	}

	dest := objPos.Add(dir)
	if !grid.IsValid(dest.X, dest.Y) || grid.IsWall(dest.X, dest.Y) || world.IsOccupied(dest, object) {
		return PushCheck{Reason: ReasonDestinationBlocked}
	}

	cost := ceilDiv(pushable.Weight, attrs.Pwr)
	if cost < 1 {
		cost = 1
	}
	return PushCheck{OK: true, StaminaCost: cost}
}

// PushObject translates the object one cell in dir without any checks
func PushObject(world *World, object EntityID, dir Direction) bool {
	pos, ok := world.Positions.Get(object)
	if !ok {
		return false
	}
	world.Positions.Set(object, pos.Add(dir))
	return true
}

// ValidPushActions returns the cardinal directions in which the object can
// currently be pushed by pusher.
func ValidPushActions(world *World, grid *Grid, rules Rules, pusher, object EntityID) []PushOption {
	var options []PushOption
	for _, dir := range CardinalDirections {
		check := CanPush(world, grid, rules, pusher, object, dir)
		if check.OK {
			options = append(options, PushOption{Direction: dir, StaminaCost: check.StaminaCost})
		}
	}
	return options
}
