package engine

// ResolutionMode names a turn resolution strategy.
type ResolutionMode string

const (
	ModeImmediate ResolutionMode = "immediate"
	ModeBatch     ResolutionMode = "batch"
)

// Resolver accepts actions and resolves them, either one at a time as they
// arrive or all together on Resolve. Both strategies share the movement and
// push legality functions.
type Resolver interface {
	Mode() ResolutionMode
	Submit(actor EntityID, action Action) ExecutionResult
	Resolve() []ExecutionResult
}

// ImmediateResolver executes each submitted action at once through the
// controller, spending AP and honouring turn order.
type ImmediateResolver struct {
	controller *Controller
	world      *World
	grid       *Grid
}

// NewImmediateResolver wraps a controller
func NewImmediateResolver(c *Controller, world *World, grid *Grid) *ImmediateResolver {
	return &ImmediateResolver{controller: c, world: world, grid: grid}
}

func (r *ImmediateResolver) Mode() ResolutionMode { return ModeImmediate }

// Submit executes the action right away
func (r *ImmediateResolver) Submit(actor EntityID, action Action) ExecutionResult {
	return r.controller.ExecuteImmediate(r.world, r.grid, actor, action)
}

// Resolve has nothing left to do; every action already ran
func (r *ImmediateResolver) Resolve() []ExecutionResult {
	return nil
}

// BatchResolver queues moves as planned steps and pushes or passes as planned
// actions, then executes everything at once on Resolve. It ignores AP and
// turn order.
type BatchResolver struct {
	planner *Planner
	world   *World
	grid    *Grid
	rules   Rules
	planned []PlannedAction
	party   func() []EntityID
}

// NewBatchResolver creates a batch resolver over the world
func NewBatchResolver(world *World, grid *Grid, rules Rules, party func() []EntityID) *BatchResolver {
	return &BatchResolver{
		planner: NewPlanner(world, grid),
		world:   world,
		grid:    grid,
		rules:   rules,
		party:   party,
	}
}

func (r *BatchResolver) Mode() ResolutionMode { return ModeBatch }

// Planner exposes the underlying path planner
func (r *BatchResolver) Planner() *Planner {
	return r.planner
}

// Submit records the action for later execution
func (r *BatchResolver) Submit(actor EntityID, action Action) ExecutionResult {
	res := ExecutionResult{Action: action.Request(), ActorID: actor}
	switch a := action.(type) {
	case MoveAction:
		conflict, err := r.planner.AddStep(actor, a.Target)
		if conflict.Exists() {
			res.Conflict = &conflict
		}
		if err != nil {
			res.Error = err.Error()
			return res
		}
	case PushAction:
		r.planned = append(r.planned, PlannedAction{CharacterID: actor, Kind: KindPush, TargetID: a.TargetID})
	case PassAction:
		r.planner.MarkReady(actor)
		r.planned = append(r.planned, PlannedAction{CharacterID: actor, Kind: KindPass})
	default:
		res.Error = "Action not supported in batch mode: " + string(action.Name())
		return res
	}
	res.Success = true
	return res
}

// Resolve executes all planned steps, then all planned pushes and passes.
func (r *BatchResolver) Resolve() []ExecutionResult {
	var results []ExecutionResult
	for _, o := range r.planner.ExecuteAll() {
		target := o.To
		res := ExecutionResult{
			Success: o.Moved,
			Action:  ActionRequest{Kind: KindMove, Target: &target},
			ActorID: o.CharacterID,
			Error:   o.Reason,
			From:    posPtr(o.From),
			To:      posPtr(o.To),
		}
		results = append(results, res)
	}

	summary := ExecutePlanned(r.world, r.grid, r.rules, r.planned, r.party)
	for _, pr := range summary.Results {
		results = append(results, ExecutionResult{
			Success: pr.Success,
			Action:  ActionRequest{Kind: pr.Action.Kind, TargetID: pr.Action.TargetID},
			ActorID: pr.Action.CharacterID,
			Error:   pr.Error,
		})
	}

	r.planner.Clear()
	r.planned = nil
	return results
}
