package minigame

import (
	"github.com/wricardo/grid-tactics/game/scenario"
)

// Obstacle plays like Combat's exit race under a turn limit: reaching
// MaxTurns party actions without winning loses the scenario. Adversary
// actions do not count; in batch mode each Resolve is one turn.
type Obstacle struct {
	gridGame
}

// NewObstacle wraps a built scenario. A MaxTurns of zero means no limit.
func NewObstacle(def *scenario.Definition, built *scenario.Built, opts ...Option) *Obstacle {
	o := &Obstacle{gridGame: newGridGame(scenario.TypeObstacle, def, built, collect(opts))}
	o.maxTurns = def.Config.MaxTurns
	o.rules = o
	return o
}

// TurnsRemaining is how many party turns are left, or -1 without a limit
func (o *Obstacle) TurnsRemaining() int {
	if o.maxTurns <= 0 {
		return -1
	}
	if left := o.maxTurns - o.turn; left > 0 {
		return left
	}
	return 0
}

func (o *Obstacle) winSpecific() bool {
	return false
}

func (o *Obstacle) lossSpecific() bool {
	if o.maxTurns > 0 && o.turn >= o.maxTurns {
		return true
	}
	return o.partyDefeated() || o.casualty()
}
