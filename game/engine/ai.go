package engine

import "fmt"

// Decision is what the AI picked and why.
type Decision struct {
	Action Action
	Target EntityID
	Reason string
}

// ChooseAction picks one action for the adversary in ctx. It is a one-ply
// greedy chase: attack the nearest live party member when adjacent, otherwise
// step to the legal cell closest to it, otherwise pass.
func ChooseAction(ctx *ActionContext) Decision {
	if !ctx.World.NPCs.Has(ctx.ActorID) {
		return Decision{Action: PassAction{}, Reason: "not an adversary"}
	}
	pos, ok := ctx.World.Positions.Get(ctx.ActorID)
	if !ok || !ctx.World.Attributes.Has(ctx.ActorID) {
		return Decision{Action: PassAction{}, Reason: "missing position or attributes"}
	}

	target, targetPos, found := nearestLivePlayer(ctx.World, pos)
	if !found {
		return Decision{Action: PassAction{}, Reason: "no live player characters"}
	}

	distance := ctx.Grid.Distance(pos, targetPos)
	if distance == 1 {
		attack := AttackAction{TargetID: target}
		if attack.CanExecute(ctx) {
			return Decision{Action: attack, Target: target, Reason: "adjacent to target"}
		}
	}

	if ctx.AP.CanAfford(ctx.ActorID, ctx.Rules.MoveCost) {
		attrs, _ := ctx.World.Attributes.Get(ctx.ActorID)
		best, bestDist := -1, 0
		moves := ValidMoves(ctx.World, ctx.Grid, ctx.ActorID, pos, attrs.Mov)
		for i, dest := range moves {
			if d := ctx.Grid.Distance(dest, targetPos); best == -1 || d < bestDist {
				best = i
				bestDist = d
			}
		}
		if best >= 0 {
			return Decision{
				Action: MoveAction{Target: moves[best]},
				Target: target,
				Reason: fmt.Sprintf("closing distance %d -> %d", distance, bestDist),
			}
		}
	}

	return Decision{Action: PassAction{}, Target: target, Reason: "nothing useful to do"}
}

// nearestLivePlayer scans party members in id order; the first one found at
// the minimum distance wins.
func nearestLivePlayer(world *World, from Position) (EntityID, Position, bool) {
	var (
		ids       []EntityID
		positions []Position
	)
	for _, id := range world.PlayerCharacters() {
		if !world.IsAlive(id) {
			continue
		}
		if p, ok := world.Positions.Get(id); ok {
			ids = append(ids, id)
			positions = append(positions, p)
		}
	}
	i, _, ok := FindNearest(from, positions)
	if !ok {
		return NoEntity, Position{}, false
	}
	return ids[i], positions[i], true
}
