package minigame

import (
	"github.com/wricardo/grid-tactics/game/engine"
	"github.com/wricardo/grid-tactics/game/scenario"
)

// Combat is won when the party reaches the exit or, if the scenario declares
// defeatAllEnemies, when every adversary is down. It is lost when the whole
// party is down.
type Combat struct {
	gridGame
}

// NewCombat wraps a built scenario. Call Initialize before acting.
func NewCombat(def *scenario.Definition, built *scenario.Built, opts ...Option) *Combat {
	c := &Combat{gridGame: newGridGame(scenario.TypeCombat, def, built, collect(opts))}
	c.rules = c
	return c
}

func (c *Combat) winSpecific() bool {
	if !c.def.HasWinCondition(scenario.WinDefeatAllEnemies) {
		return false
	}
	return engine.AllDefeated(c.built.World, c.built.World.Adversaries())
}

func (c *Combat) lossSpecific() bool {
	return c.partyDefeated() || c.casualty()
}
