package engine

// ExecutionResult is the sole channel through which action outcomes, legal or
// not, are reported. Callers branch on Success.
type ExecutionResult struct {
	Success       bool          `json:"success"`
	Action        ActionRequest `json:"action"`
	ActorID       EntityID      `json:"actor_id"`
	Error         string        `json:"error,omitempty"`
	APRemaining   *int          `json:"ap_remaining,omitempty"`
	RoundComplete bool          `json:"round_complete,omitempty"`
	From          *Position     `json:"from,omitempty"`
	To            *Position     `json:"to,omitempty"`
	Damage        int           `json:"damage,omitempty"`
	TargetHP      *int          `json:"target_hp,omitempty"`
	StaminaCost   int           `json:"stamina_cost,omitempty"`
	Conflict      *Conflict     `json:"conflict,omitempty"`
}

func intPtr(v int) *int { return &v }

func posPtr(p Position) *Position { return &p }

func failure(ctx *ActionContext, a Action, reason string) ExecutionResult {
	return ExecutionResult{
		Success:     false,
		Action:      a.Request(),
		ActorID:     ctx.ActorID,
		Error:       reason,
		APRemaining: intPtr(ctx.AP.AP(ctx.ActorID)),
	}
}

func success(ctx *ActionContext, a Action) ExecutionResult {
	return ExecutionResult{
		Success:     true,
		Action:      a.Request(),
		ActorID:     ctx.ActorID,
		APRemaining: intPtr(ctx.AP.AP(ctx.ActorID)),
	}
}

// ExecuteMove moves the actor, faces it along the movement delta and debits AP.
func ExecuteMove(ctx *ActionContext, a MoveAction) ExecutionResult {
	from, ok := ctx.World.Positions.Get(ctx.ActorID)
	if !ok {
		return failure(ctx, a, MsgNoPosition)
	}
	MoveCharacter(ctx.World, ctx.ActorID, a.Target)
	if facing := a.Target.Sub(from).Normalize(); facing.IsFacing() {
		ctx.World.Facings.Set(ctx.ActorID, facing)
	}
	ctx.AP.Deduct(ctx.ActorID, a.Cost(ctx.Rules))

	res := success(ctx, a)
	res.From = posPtr(from)
	res.To = posPtr(a.Target)
	return res
}

// ExecutePush pushes the object along the actor's facing and moves the actor
// into the cell the object vacated.
func ExecutePush(ctx *ActionContext, a PushAction) ExecutionResult {
	facing, ok := ctx.World.Facings.Get(ctx.ActorID)
	if !ok {
		return failure(ctx, a, MsgNoFacing)
	}
	from, _ := ctx.World.Positions.Get(ctx.ActorID)
	vacated, ok := ctx.World.Positions.Get(a.TargetID)
	if !ok {
		return failure(ctx, a, ReasonMissingComponents)
	}
	check := CanPush(ctx.World, ctx.Grid, ctx.Rules, ctx.ActorID, a.TargetID, facing)

	PushObject(ctx.World, a.TargetID, facing)
	MoveCharacter(ctx.World, ctx.ActorID, vacated)
	ctx.AP.Deduct(ctx.ActorID, a.Cost(ctx.Rules))

	res := success(ctx, a)
	res.From = posPtr(from)
	res.To = posPtr(vacated)
	res.StaminaCost = check.StaminaCost
	return res
}

// ExecuteTurn sets the actor's facing.
func ExecuteTurn(ctx *ActionContext, a TurnAction) ExecutionResult {
	ctx.World.Facings.Set(ctx.ActorID, a.Direction)
	ctx.AP.Deduct(ctx.ActorID, a.Cost(ctx.Rules))
	return success(ctx, a)
}

// ExecuteAttack deals the actor's pwr as damage. Hit points stop at zero and
// the defeated entity stays on the board.
func ExecuteAttack(ctx *ActionContext, a AttackAction) ExecutionResult {
	attrs, _ := ctx.World.Attributes.Get(ctx.ActorID)
	stats, ok := ctx.World.Stats.Get(a.TargetID)
	if !ok {
		return failure(ctx, a, MsgInvalidTarget)
	}

	damage := attrs.Pwr
	stats.HP -= damage
	if stats.HP < 0 {
		stats.HP = 0
	}
	ctx.World.Stats.Set(a.TargetID, stats)
	ctx.AP.Deduct(ctx.ActorID, a.Cost(ctx.Rules))

	res := success(ctx, a)
	res.Damage = damage
	res.TargetHP = intPtr(stats.HP)
	return res
}

// ExecutePass refills the actor's AP and hands the turn on.
func ExecutePass(ctx *ActionContext) ExecutionResult {
	ctx.AP.Reset(ctx.ActorID)
	roundComplete := ctx.Scheduler.PassTurn()

	res := success(ctx, PassAction{})
	res.RoundComplete = roundComplete
	return res
}

// PlannedAction is a batch-mode instruction recorded before execution.
type PlannedAction struct {
	CharacterID EntityID   `json:"character_id"`
	Kind        ActionKind `json:"kind"`
	TargetID    EntityID   `json:"target_id,omitempty"`
}

// PlannedResult reports one executed planned action.
type PlannedResult struct {
	Success bool          `json:"success"`
	Action  PlannedAction `json:"action"`
	Error   string        `json:"error,omitempty"`
}

// ExecutionSummary is the outcome of a batch of planned actions.
type ExecutionSummary struct {
	Results         []PlannedResult `json:"results"`
	WinConditionMet bool            `json:"win_condition_met"`
}

// ExecutePlanned runs planned push and pass actions in order without touching
// the AP ledger, then checks the win condition once.
func ExecutePlanned(world *World, grid *Grid, rules Rules, planned []PlannedAction, party func() []EntityID) ExecutionSummary {
	results := make([]PlannedResult, 0, len(planned))
	for _, p := range planned {
		results = append(results, executePlanned(world, grid, rules, p))
	}
	return ExecutionSummary{
		Results:         results,
		WinConditionMet: CheckWinCondition(world, grid, party),
	}
}

func executePlanned(world *World, grid *Grid, rules Rules, p PlannedAction) PlannedResult {
	switch p.Kind {
	case KindPass:
		return PlannedResult{Success: true, Action: p}
	case KindPush:
		if p.TargetID == NoEntity {
			return PlannedResult{Action: p, Error: "Push action requires target_id"}
		}
		options := ValidPushActions(world, grid, rules, p.CharacterID, p.TargetID)
		if len(options) == 0 {
			return PlannedResult{Action: p, Error: "No valid push directions"}
		}
		vacated, _ := world.Positions.Get(p.TargetID)
		PushObject(world, p.TargetID, options[0].Direction)
		MoveCharacter(world, p.CharacterID, vacated)
		return PlannedResult{Success: true, Action: p}
	}
	return PlannedResult{Action: p, Error: "Unknown action: " + string(p.Kind)}
}
