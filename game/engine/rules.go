package engine

import "fmt"

// Action point costs and thresholds used when no scenario override is given.
const (
	DefaultAP  = 50
	MoveCost   = 15
	PushCost   = 25
	PassCost   = 0
	AttackCost = 20
	TurnCost   = 5

	MinPushPower        = 3
	WeightPerPower      = 20
	MaxAIActionsPerTurn = 16
)

// Rules bundles the tunable numbers of an encounter.
type Rules struct {
	DefaultAP      int `json:"default_ap" yaml:"default_ap"`
	MoveCost       int `json:"move_cost" yaml:"move_cost"`
	PushCost       int `json:"push_cost" yaml:"push_cost"`
	AttackCost     int `json:"attack_cost" yaml:"attack_cost"`
	TurnCost       int `json:"turn_cost" yaml:"turn_cost"`
	MinPushPower   int `json:"min_push_power" yaml:"min_push_power"`
	WeightPerPower int `json:"weight_per_power" yaml:"weight_per_power"`

	// EnforceMovementRange limits Move targets to the destinations offered
	// by the movement patterns.
	EnforceMovementRange bool `json:"enforce_movement_range" yaml:"enforce_movement_range"`
}

// DefaultRules returns the standard cost table
func DefaultRules() Rules {
	return Rules{
		DefaultAP:      DefaultAP,
		MoveCost:       MoveCost,
		PushCost:       PushCost,
		AttackCost:     AttackCost,
		TurnCost:       TurnCost,
		MinPushPower:   MinPushPower,
		WeightPerPower: WeightPerPower,
	}
}

// Validate checks the rules for values the engine cannot work with
func (r Rules) Validate() error {
	if r.DefaultAP <= 0 {
		return fmt.Errorf("rules validation: default_ap must be positive, got %d", r.DefaultAP)
	}
	costs := map[string]int{
		"move_cost":   r.MoveCost,
		"push_cost":   r.PushCost,
		"attack_cost": r.AttackCost,
		"turn_cost":   r.TurnCost,
	}
	for name, cost := range costs {
		if cost <= 0 {
			return fmt.Errorf("rules validation: %s must be positive, got %d", name, cost)
		}
		if cost > r.DefaultAP {
			return fmt.Errorf("rules validation: %s (%d) exceeds default_ap (%d)", name, cost, r.DefaultAP)
		}
	}
	if r.MinPushPower < 1 {
		return fmt.Errorf("rules validation: min_push_power must be at least 1, got %d", r.MinPushPower)
	}
	if r.WeightPerPower < 1 {
		return fmt.Errorf("rules validation: weight_per_power must be at least 1, got %d", r.WeightPerPower)
	}
	return nil
}

// Merge returns r with every non-zero field of o applied on top
func (r Rules) Merge(o Rules) Rules {
	if o.DefaultAP != 0 {
		r.DefaultAP = o.DefaultAP
	}
	if o.MoveCost != 0 {
		r.MoveCost = o.MoveCost
	}
	if o.PushCost != 0 {
		r.PushCost = o.PushCost
	}
	if o.AttackCost != 0 {
		r.AttackCost = o.AttackCost
	}
	if o.TurnCost != 0 {
		r.TurnCost = o.TurnCost
	}
	if o.MinPushPower != 0 {
		r.MinPushPower = o.MinPushPower
	}
	if o.WeightPerPower != 0 {
		r.WeightPerPower = o.WeightPerPower
	}
	if o.EnforceMovementRange {
		r.EnforceMovementRange = true
	}
	return r
}
