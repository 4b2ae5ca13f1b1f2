package engine

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Controller orchestrates the scheduler, the AP ledger and action execution
// behind a single call surface. Only the active character may act.
type Controller struct {
	scheduler  *Scheduler
	ap         *ActionPoints
	rules      Rules
	log        logrus.FieldLogger
	characters func() []EntityID
	autoRound  bool
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithRules replaces the default cost table
func WithRules(rules Rules) ControllerOption {
	return func(c *Controller) { c.rules = rules }
}

// WithLogger attaches a logger; the default discards everything
func WithLogger(log logrus.FieldLogger) ControllerOption {
	return func(c *Controller) { c.log = log }
}

// WithAutoRestartRounds makes the controller start the next round itself when
// the last character passes.
func WithAutoRestartRounds() ControllerOption {
	return func(c *Controller) { c.autoRound = true }
}

// NewController creates a controller with no round started
func NewController(opts ...ControllerOption) *Controller {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	c := &Controller{
		scheduler: NewScheduler(),
		rules:     DefaultRules(),
		log:       quiet,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ap = NewActionPoints(c.rules.DefaultAP)
	c.log = c.log.WithField("component", "encounter_controller")
	return c
}

// StartRound orders the characters for a new round and refills the first
// character's AP.
func (c *Controller) StartRound(characterIDs func() []EntityID, world *World) {
	c.characters = characterIDs
	c.scheduler.StartRound(characterIDs, world)
	if active, ok := c.scheduler.ActiveCharacter(); ok {
		c.ap.Reset(active)
	}
	c.log.WithFields(logrus.Fields{
		"round": c.scheduler.Round(),
		"order": c.scheduler.Order(),
	}).Debug("Round started")
}

// Context builds the action context for an actor
func (c *Controller) Context(world *World, grid *Grid, actor EntityID) *ActionContext {
	return &ActionContext{
		World:     world,
		Grid:      grid,
		ActorID:   actor,
		AP:        c.ap,
		Scheduler: c.scheduler,
		Rules:     c.rules,
	}
}

// ExecuteImmediate validates and runs the action for the actor right away.
// Rejections come back as unsuccessful results, never as errors.
func (c *Controller) ExecuteImmediate(world *World, grid *Grid, actor EntityID, action Action) ExecutionResult {
	ctx := c.Context(world, grid, actor)
	if !c.scheduler.IsActive(actor) {
		return failure(ctx, action, MsgNotYourTurn)
	}

	result := action.Execute(ctx)

	entry := c.log.WithFields(logrus.Fields{
		"actor_id": actor,
		"action":   DescribeAction(action),
		"success":  result.Success,
	})
	if !result.Success {
		entry.WithField("reason", result.Error).Info("Action rejected")
		return result
	}
	if result.APRemaining != nil {
		entry = entry.WithField("ap_remaining", *result.APRemaining)
	}
	if result.Damage > 0 {
		entry = entry.WithFields(logrus.Fields{"damage": result.Damage, "target_hp": *result.TargetHP})
	}
	entry.Info("Action resolved")

	if _, ok := action.(PassAction); ok {
		c.afterPass(world, result.RoundComplete)
	}
	return result
}

func (c *Controller) afterPass(world *World, roundComplete bool) {
	if roundComplete {
		c.log.WithField("round", c.scheduler.Round()-1).Info("Round complete")
		if c.autoRound && c.characters != nil {
			c.StartRound(c.characters, world)
		}
		return
	}
	if next, ok := c.scheduler.ActiveCharacter(); ok {
		c.ap.Reset(next)
	}
}

// Pass ends the actor's turn
func (c *Controller) Pass(world *World, grid *Grid, actor EntityID) ExecutionResult {
	return c.ExecuteImmediate(world, grid, actor, PassAction{})
}

// RunAI lets the greedy policy act once for the active character. It reports
// false when the active character is not an adversary.
func (c *Controller) RunAI(world *World, grid *Grid) (Decision, ExecutionResult, bool) {
	active, ok := c.scheduler.ActiveCharacter()
	if !ok || !world.NPCs.Has(active) {
		return Decision{}, ExecutionResult{}, false
	}
	decision := ChooseAction(c.Context(world, grid, active))
	c.log.WithFields(logrus.Fields{
		"actor_id": active,
		"decision": DescribeAction(decision.Action),
		"target":   decision.Target,
		"reason":   decision.Reason,
	}).Debug("AI decision")
	return decision, c.ExecuteImmediate(world, grid, active, decision.Action), true
}

// CheckWinCondition delegates to the exit-zone check
func (c *Controller) CheckWinCondition(world *World, grid *Grid, party func() []EntityID) bool {
	return CheckWinCondition(world, grid, party)
}

// ValidMovesFor lists the legal destinations of a character from where it stands
func (c *Controller) ValidMovesFor(world *World, grid *Grid, id EntityID) []Position {
	pos, ok := world.Positions.Get(id)
	if !ok {
		return nil
	}
	attrs, _ := world.Attributes.Get(id)
	return ValidMoves(world, grid, id, pos, attrs.Mov)
}

// ValidPushesFor lists the directions in which id can push object
func (c *Controller) ValidPushesFor(world *World, grid *Grid, id, object EntityID) []PushOption {
	return ValidPushActions(world, grid, c.rules, id, object)
}

// LegalActions enumerates the actions the character could take right now.
func (c *Controller) LegalActions(world *World, grid *Grid, id EntityID) []ActionRequest {
	ctx := c.Context(world, grid, id)
	var actions []Action
	for _, dest := range c.ValidMovesFor(world, grid, id) {
		actions = append(actions, MoveAction{Target: dest})
	}
	for _, other := range world.Pushables.Entities() {
		actions = append(actions, PushAction{TargetID: other})
	}
	for _, other := range world.Stats.Entities() {
		if other != id {
			actions = append(actions, AttackAction{TargetID: other})
		}
	}
	facing, _ := world.Facings.Get(id)
	for _, dir := range CardinalDirections {
		if dir != facing {
			actions = append(actions, TurnAction{Direction: dir})
		}
	}
	actions = append(actions, PassAction{})

	var legal []ActionRequest
	for _, a := range actions {
		if a.CanExecute(ctx) {
			legal = append(legal, a.Request())
		}
	}
	return legal
}

// ActiveCharacter returns the character whose turn it is
func (c *Controller) ActiveCharacter() (EntityID, bool) {
	return c.scheduler.ActiveCharacter()
}

// Round returns the current round number
func (c *Controller) Round() int {
	return c.scheduler.Round()
}

// TurnOrder returns the order of the current round
func (c *Controller) TurnOrder() []EntityID {
	return c.scheduler.Order()
}

// IsRoundComplete reports whether every character has passed
func (c *Controller) IsRoundComplete() bool {
	return c.scheduler.IsRoundComplete()
}

// AP returns the character's remaining action points
func (c *Controller) AP(id EntityID) int {
	return c.ap.AP(id)
}

// Rules returns the cost table in use
func (c *Controller) Rules() Rules {
	return c.rules
}

// Scheduler exposes the turn scheduler
func (c *Controller) Scheduler() *Scheduler {
	return c.scheduler
}

// Ledger exposes the AP ledger
func (c *Controller) Ledger() *ActionPoints {
	return c.ap
}
