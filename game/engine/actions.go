package engine

import (
	"errors"
	"fmt"
)

// ActionKind names one of the five action variants.
type ActionKind string

const (
	KindMove   ActionKind = "move"
	KindPush   ActionKind = "push"
	KindTurn   ActionKind = "turn"
	KindAttack ActionKind = "attack"
	KindPass   ActionKind = "pass"
)

// ErrUnknownAction is returned when decoding a request of an unknown kind
var ErrUnknownAction = errors.New("unknown action")

// Rejection messages surfaced through ExecutionResult.Error.
const (
	MsgInsufficientAP   = "Insufficient AP"
	MsgNotYourTurn      = "Not this character's turn"
	MsgNoPosition       = "Character has no position"
	MsgNoFacing         = "Character has no facing direction"
	MsgNotFacingObject  = "Not facing the object"
	MsgTargetOutOfRange = "Target out of bounds"
	MsgTargetWall       = "Target is a wall"
	MsgTargetOccupied   = "Target is occupied"
	MsgTargetTooFar     = "Target not reachable with current movement"
	MsgInvalidDirection = "Invalid direction"
	MsgNoAttributes     = "Attacker has no attributes"
	MsgInvalidTarget    = "Target cannot be attacked"
	MsgNotAdjacent      = "Target not adjacent"
	MsgAlreadyDefeated  = "Target already defeated"
)

// ActionContext is everything an action needs to validate and run.
type ActionContext struct {
	World     *World
	Grid      *Grid
	ActorID   EntityID
	AP        *ActionPoints
	Scheduler *Scheduler
	Rules     Rules
}

// Requirements is declarative metadata for UIs and AI. The engine does not
// enforce it.
type Requirements struct {
	Attributes  map[string]int `json:"attributes,omitempty"`
	Situational []string       `json:"situational,omitempty"`
}

// Action is the closed set of things a character can do on its turn. The
// unexported validate method keeps implementations inside this package.
type Action interface {
	CanExecute(ctx *ActionContext) bool
	Execute(ctx *ActionContext) ExecutionResult
	Cost(rules Rules) int
	Name() ActionKind
	Requirements() Requirements
	Request() ActionRequest

	// validate returns the first failing precondition, or "" when legal.
	validate(ctx *ActionContext) string
}

// Explain returns why the action cannot run, or "" if it can.
func Explain(a Action, ctx *ActionContext) string {
	return a.validate(ctx)
}

// ActionRequest is the wire form of an action.
type ActionRequest struct {
	Kind      ActionKind `json:"kind"`
	Target    *Position  `json:"target,omitempty"`
	TargetID  EntityID   `json:"target_id,omitempty"`
	Direction *Direction `json:"direction,omitempty"`
}

// Action decodes the request into a concrete variant
func (r ActionRequest) Action() (Action, error) {
	switch r.Kind {
	case KindMove:
		if r.Target == nil {
			return nil, fmt.Errorf("move requires target")
		}
		return MoveAction{Target: *r.Target}, nil
	case KindPush:
		if r.TargetID == NoEntity {
			return nil, fmt.Errorf("push requires target_id")
		}
		return PushAction{TargetID: r.TargetID}, nil
	case KindTurn:
		if r.Direction == nil {
			return nil, fmt.Errorf("turn requires direction")
		}
		return TurnAction{Direction: *r.Direction}, nil
	case KindAttack:
		if r.TargetID == NoEntity {
			return nil, fmt.Errorf("attack requires target_id")
		}
		return AttackAction{TargetID: r.TargetID}, nil
	case KindPass:
		return PassAction{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, r.Kind)
}

// MoveAction moves the actor to Target.
type MoveAction struct {
	Target Position
}

func (a MoveAction) Name() ActionKind                   { return KindMove }
func (a MoveAction) Cost(rules Rules) int               { return rules.MoveCost }
func (a MoveAction) Requirements() Requirements         { return Requirements{} }
func (a MoveAction) CanExecute(ctx *ActionContext) bool { return a.validate(ctx) == "" }

func (a MoveAction) Request() ActionRequest {
	t := a.Target
	return ActionRequest{Kind: KindMove, Target: &t}
}

func (a MoveAction) validate(ctx *ActionContext) string {
	if !ctx.AP.CanAfford(ctx.ActorID, a.Cost(ctx.Rules)) {
		return MsgInsufficientAP
	}
	from, ok := ctx.World.Positions.Get(ctx.ActorID)
	if !ok {
		return MsgNoPosition
	}
	t := a.Target
	switch {
	case !ctx.Grid.IsValid(t.X, t.Y):
		return MsgTargetOutOfRange
	case ctx.Grid.IsWall(t.X, t.Y):
		return MsgTargetWall
	case ctx.World.IsOccupied(t, ctx.ActorID):
		return MsgTargetOccupied
	}
	if ctx.Rules.EnforceMovementRange {
		attrs, _ := ctx.World.Attributes.Get(ctx.ActorID)
		if !CanMoveFromTo(ctx.World, ctx.Grid, ctx.ActorID, from, t, attrs.Mov) {
			return MsgTargetTooFar
		}
	}
	return ""
}

func (a MoveAction) Execute(ctx *ActionContext) ExecutionResult {
	if reason := a.validate(ctx); reason != "" {
		return failure(ctx, a, reason)
	}
	return ExecuteMove(ctx, a)
}

// PushAction pushes TargetID one cell in the actor's current facing.
type PushAction struct {
	TargetID EntityID
}

func (a PushAction) Name() ActionKind     { return KindPush }
func (a PushAction) Cost(rules Rules) int { return rules.PushCost }

func (a PushAction) Requirements() Requirements {
	return Requirements{
		Attributes:  map[string]int{"pwr": MinPushPower},
		Situational: []string{"adjacentObject", "facingObject"},
	}
}

func (a PushAction) CanExecute(ctx *ActionContext) bool { return a.validate(ctx) == "" }

func (a PushAction) Request() ActionRequest {
	return ActionRequest{Kind: KindPush, TargetID: a.TargetID}
}

func (a PushAction) validate(ctx *ActionContext) string {
	attrs, ok := ctx.World.Attributes.Get(ctx.ActorID)
	if !ok || attrs.Pwr < ctx.Rules.MinPushPower {
		return ReasonInsufficientPower
	}
	if !ctx.AP.CanAfford(ctx.ActorID, a.Cost(ctx.Rules)) {
		return MsgInsufficientAP
	}
	facing, ok := ctx.World.Facings.Get(ctx.ActorID)
	if !ok {
		return MsgNoFacing
	}
	actorPos, hasActor := ctx.World.Positions.Get(ctx.ActorID)
	objPos, hasObj := ctx.World.Positions.Get(a.TargetID)
	if !hasActor || !hasObj {
		return ReasonMissingComponents
	}
	if objPos.Sub(actorPos).Normalize() != facing {
		return MsgNotFacingObject
	}
	check := CanPush(ctx.World, ctx.Grid, ctx.Rules, ctx.ActorID, a.TargetID, facing)
	if !check.OK {
		return check.Reason
	}
	return ""
}

func (a PushAction) Execute(ctx *ActionContext) ExecutionResult {
	if reason := a.validate(ctx); reason != "" {
		return failure(ctx, a, reason)
	}
	return ExecutePush(ctx, a)
}

// TurnAction changes the actor's facing.
type TurnAction struct {
	Direction Direction
}

func (a TurnAction) Name() ActionKind                   { return KindTurn }
func (a TurnAction) Cost(rules Rules) int               { return rules.TurnCost }
func (a TurnAction) Requirements() Requirements         { return Requirements{} }
func (a TurnAction) CanExecute(ctx *ActionContext) bool { return a.validate(ctx) == "" }

func (a TurnAction) Request() ActionRequest {
	d := a.Direction
	return ActionRequest{Kind: KindTurn, Direction: &d}
}

func (a TurnAction) validate(ctx *ActionContext) string {
	if !ctx.AP.CanAfford(ctx.ActorID, a.Cost(ctx.Rules)) {
		return MsgInsufficientAP
	}
	if !a.Direction.IsFacing() {
		return MsgInvalidDirection
	}
	return ""
}

func (a TurnAction) Execute(ctx *ActionContext) ExecutionResult {
	if reason := a.validate(ctx); reason != "" {
		return failure(ctx, a, reason)
	}
	return ExecuteTurn(ctx, a)
}

// AttackAction strikes an adjacent target for the actor's pwr in damage.
type AttackAction struct {
	TargetID EntityID
}

func (a AttackAction) Name() ActionKind     { return KindAttack }
func (a AttackAction) Cost(rules Rules) int { return rules.AttackCost }

func (a AttackAction) Requirements() Requirements {
	return Requirements{Situational: []string{"adjacentTarget"}}
}

func (a AttackAction) CanExecute(ctx *ActionContext) bool { return a.validate(ctx) == "" }

func (a AttackAction) Request() ActionRequest {
	return ActionRequest{Kind: KindAttack, TargetID: a.TargetID}
}

func (a AttackAction) validate(ctx *ActionContext) string {
	if !ctx.AP.CanAfford(ctx.ActorID, a.Cost(ctx.Rules)) {
		return MsgInsufficientAP
	}
	attackerPos, ok := ctx.World.Positions.Get(ctx.ActorID)
	if !ok {
		return MsgNoPosition
	}
	if !ctx.World.Attributes.Has(ctx.ActorID) {
		return MsgNoAttributes
	}
	targetPos, hasPos := ctx.World.Positions.Get(a.TargetID)
	stats, hasStats := ctx.World.Stats.Get(a.TargetID)
	if !hasPos || !hasStats {
		return MsgInvalidTarget
	}
	if ctx.Grid.Distance(attackerPos, targetPos) != 1 {
		return MsgNotAdjacent
	}
	if stats.HP <= 0 {
		return MsgAlreadyDefeated
	}
	return ""
}

func (a AttackAction) Execute(ctx *ActionContext) ExecutionResult {
	if reason := a.validate(ctx); reason != "" {
		return failure(ctx, a, reason)
	}
	return ExecuteAttack(ctx, a)
}

// PassAction ends the actor's turn.
type PassAction struct{}

func (a PassAction) Name() ActionKind       { return KindPass }
func (a PassAction) Cost(rules Rules) int   { return PassCost }
func (a PassAction) Request() ActionRequest { return ActionRequest{Kind: KindPass} }

func (a PassAction) Requirements() Requirements {
	return Requirements{Situational: []string{"activeCharacter"}}
}

func (a PassAction) CanExecute(ctx *ActionContext) bool { return a.validate(ctx) == "" }

func (a PassAction) validate(ctx *ActionContext) string {
	if ctx.Scheduler == nil || !ctx.Scheduler.IsActive(ctx.ActorID) {
		return MsgNotYourTurn
	}
	return ""
}

func (a PassAction) Execute(ctx *ActionContext) ExecutionResult {
	if reason := a.validate(ctx); reason != "" {
		return failure(ctx, a, reason)
	}
	return ExecutePass(ctx)
}

// DescribeAction renders an action for logs and text transports
func DescribeAction(a Action) string {
	switch v := a.(type) {
	case MoveAction:
		return fmt.Sprintf("move to (%d,%d)", v.Target.X, v.Target.Y)
	case PushAction:
		return fmt.Sprintf("push entity %d", v.TargetID)
	case TurnAction:
		return fmt.Sprintf("turn %s", DirectionName(v.Direction))
	case AttackAction:
		return fmt.Sprintf("attack entity %d", v.TargetID)
	case PassAction:
		return "pass"
	}
	return "unknown"
}
