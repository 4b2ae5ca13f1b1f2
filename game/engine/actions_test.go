package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveFromEntrance(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	hero := addCharacter(w, Position{0, 1}, Attributes{Pwr: 3, Mov: 5})
	w.Facings.Remove(hero)
	ctx := newContext(w, g, hero)

	result := MoveAction{Target: Position{1, 1}}.Execute(ctx)
	require.True(t, result.Success, result.Error)
	require.NotNil(t, result.APRemaining)
	assert.Equal(t, 35, *result.APRemaining)

	pos, _ := w.Positions.Get(hero)
	assert.Equal(t, Position{1, 1}, pos)
	facing, _ := w.Facings.Get(hero)
	assert.Equal(t, Direction{DX: 1, DY: 0}, facing)
	assert.Equal(t, Position{0, 1}, *result.From)
}

func TestMoveRejections(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	hero := addCharacter(w, Position{3, 3}, Attributes{Mov: 1})
	addCrate(w, Position{4, 3}, 10)

	tests := []struct {
		name   string
		target Position
		want   string
	}{
		{"out of bounds", Position{12, 3}, MsgTargetOutOfRange},
		{"wall", Position{3, 0}, MsgTargetWall},
		{"occupied", Position{4, 3}, MsgTargetOccupied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newContext(w, g, hero)
			result := MoveAction{Target: tt.target}.Execute(ctx)
			assert.False(t, result.Success)
			assert.Equal(t, tt.want, result.Error)
			assert.Equal(t, 50, *result.APRemaining, "rejections cost nothing")
		})
	}
}

func TestMoveInsufficientAP(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	hero := addCharacter(w, Position{3, 3}, Attributes{Mov: 1})
	ctx := newContext(w, g, hero)
	ctx.AP.Deduct(hero, 40)

	result := MoveAction{Target: Position{3, 4}}.Execute(ctx)
	assert.False(t, result.Success)
	assert.Equal(t, MsgInsufficientAP, result.Error)
}

func TestMoveRangeEnforcement(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	hero := addCharacter(w, Position{3, 3}, Attributes{Mov: 1})

	ctx := newContext(w, g, hero)
	assert.True(t, MoveAction{Target: Position{6, 6}}.CanExecute(ctx), "free movement by default")

	ctx.Rules.EnforceMovementRange = true
	assert.Equal(t, MsgTargetTooFar, Explain(MoveAction{Target: Position{6, 6}}, ctx))
	assert.True(t, MoveAction{Target: Position{3, 4}}.CanExecute(ctx))
}

func TestPushRequiresPower(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	weak := addCharacter(w, Position{4, 5}, Attributes{Pwr: 2, Mov: 3})
	crate := addCrate(w, Position{5, 5}, 10)
	ctx := newContext(w, g, weak)

	result := PushAction{TargetID: crate}.Execute(ctx)
	assert.False(t, result.Success)
	assert.Equal(t, "STR 3+ required to push", result.Error)
	assert.False(t, CanPush(w, g, ctx.Rules, weak, crate, Right).OK)
}

func TestPushExecution(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	hero := addCharacter(w, Position{4, 5}, Attributes{Pwr: 3, Mov: 3})
	crate := addCrate(w, Position{5, 5}, 30)
	ctx := newContext(w, g, hero)

	result := PushAction{TargetID: crate}.Execute(ctx)
	require.True(t, result.Success, result.Error)
	assert.Equal(t, 25, *result.APRemaining)
	assert.Equal(t, 10, result.StaminaCost)

	cratePos, _ := w.Positions.Get(crate)
	heroPos, _ := w.Positions.Get(hero)
	assert.Equal(t, Position{6, 5}, cratePos)
	assert.Equal(t, Position{5, 5}, heroPos)
}

func TestPushMustFaceObject(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	hero := addCharacter(w, Position{4, 5}, Attributes{Pwr: 3, Mov: 3})
	crate := addCrate(w, Position{5, 5}, 30)
	w.Facings.Set(hero, Up)

	result := PushAction{TargetID: crate}.Execute(newContext(w, g, hero))
	assert.False(t, result.Success)
	assert.Equal(t, MsgNotFacingObject, result.Error)
}

func TestTurnAction(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	hero := addCharacter(w, Position{4, 5}, Attributes{Mov: 3})
	ctx := newContext(w, g, hero)

	result := TurnAction{Direction: Down}.Execute(ctx)
	require.True(t, result.Success)
	facing, _ := w.Facings.Get(hero)
	assert.Equal(t, Down, facing)
	assert.Equal(t, 45, *result.APRemaining)

	for _, bad := range []Direction{{0, 0}, {2, 0}, {-1, 3}} {
		result = TurnAction{Direction: bad}.Execute(ctx)
		assert.False(t, result.Success)
		assert.Equal(t, MsgInvalidDirection, result.Error)
	}
}

func TestAttackUntilDefeated(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	hero := addCharacter(w, Position{4, 4}, Attributes{Pwr: 4, Mov: 3})
	orc := addNPC(w, Position{5, 4}, Attributes{Pwr: 1, Mov: 1}, 10)
	ctx := newContext(w, g, hero)

	for _, want := range []int{6, 2, 0} {
		ctx.AP.Reset(hero)
		result := AttackAction{TargetID: orc}.Execute(ctx)
		require.True(t, result.Success, result.Error)
		assert.Equal(t, 4, result.Damage)
		assert.Equal(t, want, *result.TargetHP)
	}

	ctx.AP.Reset(hero)
	result := AttackAction{TargetID: orc}.Execute(ctx)
	assert.False(t, result.Success)
	assert.Equal(t, MsgAlreadyDefeated, result.Error)
	assert.True(t, w.Exists(orc), "defeated entities stay in the world")
}

func TestAttackRejections(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	hero := addCharacter(w, Position{4, 4}, Attributes{Pwr: 4, Mov: 3})
	far := addNPC(w, Position{7, 4}, Attributes{Mov: 1}, 10)
	crate := addCrate(w, Position{4, 5}, 10)
	ctx := newContext(w, g, hero)

	assert.Equal(t, MsgNotAdjacent, Explain(AttackAction{TargetID: far}, ctx))
	assert.Equal(t, MsgInvalidTarget, Explain(AttackAction{TargetID: crate}, ctx))

	ctx.AP.Deduct(hero, 35)
	assert.Equal(t, MsgInsufficientAP, Explain(AttackAction{TargetID: far}, ctx))
}

func TestPassRequiresActiveCharacter(t *testing.T) {
	w := NewWorld()
	g := NewGrid(10, 10)
	a := addCharacter(w, Position{1, 1}, Attributes{Mov: 5})
	b := addCharacter(w, Position{2, 1}, Attributes{Mov: 3})

	ctx := newContext(w, g, b)
	ctx.Scheduler.StartRound(w.Characters, w)

	result := PassAction{}.Execute(ctx)
	assert.False(t, result.Success)
	assert.Equal(t, MsgNotYourTurn, result.Error)

	ctx.ActorID = a
	ctx.AP.Deduct(a, 30)
	result = PassAction{}.Execute(ctx)
	require.True(t, result.Success)
	assert.False(t, result.RoundComplete)
	assert.Equal(t, 50, ctx.AP.AP(a), "passing refills the budget")
	assert.True(t, ctx.Scheduler.IsActive(b))
}

func TestActionRequestDecoding(t *testing.T) {
	target := Position{2, 2}
	dir := Left

	tests := []struct {
		req  ActionRequest
		want Action
	}{
		{ActionRequest{Kind: KindMove, Target: &target}, MoveAction{Target: target}},
		{ActionRequest{Kind: KindPush, TargetID: 4}, PushAction{TargetID: 4}},
		{ActionRequest{Kind: KindTurn, Direction: &dir}, TurnAction{Direction: Left}},
		{ActionRequest{Kind: KindAttack, TargetID: 2}, AttackAction{TargetID: 2}},
		{ActionRequest{Kind: KindPass}, PassAction{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.req.Kind), func(t *testing.T) {
			got, err := tt.req.Action()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.req, got.Request())
		})
	}

	_, err := ActionRequest{Kind: "dance"}.Action()
	assert.ErrorIs(t, err, ErrUnknownAction)
	_, err = ActionRequest{Kind: KindMove}.Action()
	assert.Error(t, err)
}

func TestActionMetadata(t *testing.T) {
	rules := DefaultRules()
	assert.Equal(t, 15, MoveAction{}.Cost(rules))
	assert.Equal(t, 25, PushAction{}.Cost(rules))
	assert.Equal(t, 0, PassAction{}.Cost(rules))
	assert.Equal(t, 3, PushAction{}.Requirements().Attributes["pwr"])
	assert.Equal(t, "move to (1,2)", DescribeAction(MoveAction{Target: Position{1, 2}}))
	assert.Equal(t, "turn up", DescribeAction(TurnAction{Direction: Up}))
}
