package minigame

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/grid-tactics/game/engine"
	"github.com/wricardo/grid-tactics/game/scenario"
	"github.com/wricardo/grid-tactics/pkg/logger"
)

// ruleSet supplies the scenario-specific half of the win and loss checks.
type ruleSet interface {
	winSpecific() bool
	lossSpecific() bool
}

// gridGame is the state machine shared by every grid-based minigame:
// uninitialized, in progress, then complete as won or lost.
type gridGame struct {
	kind       scenario.MinigameType
	def        *scenario.Definition
	built      *scenario.Built
	controller *engine.Controller
	resolver   engine.Resolver
	rules      ruleSet
	log        logrus.FieldLogger

	initialized bool
	won         bool
	lost        bool
	turn        int // party actions, or resolved batches in batch mode
	dispatched  int
	maxTurns    int
	autoAI      bool
	lastResult  *engine.ExecutionResult
	history     []HistoryEntry
	now         func() time.Time
}

func newGridGame(kind scenario.MinigameType, def *scenario.Definition, built *scenario.Built, o options) gridGame {
	log := o.log
	if log == nil {
		log = logger.Component("minigame")
	}
	log = log.WithFields(logrus.Fields{"scenario_id": def.ID, "minigame": kind})
	controller := engine.NewController(
		engine.WithRules(built.Rules),
		engine.WithLogger(log),
		engine.WithAutoRestartRounds(),
	)

	var resolver engine.Resolver = engine.NewImmediateResolver(controller, built.World, built.Grid)
	if def.ResolutionMode() == engine.ModeBatch {
		resolver = engine.NewBatchResolver(built.World, built.Grid, built.Rules, built.PartyIDs)
	}

	return gridGame{
		kind:       kind,
		def:        def,
		built:      built,
		controller: controller,
		resolver:   resolver,
		log:        log,
		autoAI:     o.autoAI || def.Config.AutoAI,
		now:        time.Now,
	}
}

func (g *gridGame) Type() scenario.MinigameType      { return g.kind }
func (g *gridGame) Definition() *scenario.Definition { return g.def }
func (g *gridGame) World() *engine.World             { return g.built.World }
func (g *gridGame) Grid() *engine.Grid               { return g.built.Grid }
func (g *gridGame) Controller() *engine.Controller   { return g.controller }
func (g *gridGame) Party() []engine.EntityID         { return g.built.Party }
func (g *gridGame) IsComplete() bool                 { return g.won || g.lost }
func (g *gridGame) Mode() engine.ResolutionMode      { return g.resolver.Mode() }

// Initialize starts the first round over every entity with Attributes
func (g *gridGame) Initialize() error {
	if g.initialized {
		return nil
	}
	g.controller.StartRound(g.built.World.Characters, g.built.World)
	g.initialized = true
	g.log.WithFields(logrus.Fields{
		"turn_order": g.controller.TurnOrder(),
		"mode":       g.Mode(),
	}).Info("Minigame initialized")

	if g.autoAI && g.Mode() == engine.ModeImmediate {
		g.playAdversaries()
	}
	return nil
}

// Status reports where the state machine is
func (g *gridGame) Status() Status {
	switch {
	case g.won:
		return StatusWon
	case g.lost:
		return StatusLost
	case g.initialized:
		return StatusInProgress
	}
	return StatusUninitialized
}

// ExecuteAction runs one action and re-checks win and loss afterwards. Once
// the game is complete it returns the final snapshot without acting. In
// batch mode the action is only planned; Resolve carries it out.
func (g *gridGame) ExecuteAction(actor engine.EntityID, action engine.Action) (Snapshot, error) {
	if !g.initialized {
		return Snapshot{}, ErrNotInitialized
	}
	if g.Mode() == engine.ModeBatch {
		g.plan(actor, action)
		return g.State(), nil
	}
	g.step(actor, action, false)
	if g.autoAI {
		g.playAdversaries()
	}
	return g.State(), nil
}

// Resolve executes everything planned since the last resolution as one
// turn. Only batch games can resolve.
func (g *gridGame) Resolve() (Snapshot, error) {
	if !g.initialized {
		return Snapshot{}, ErrNotInitialized
	}
	if g.Mode() != engine.ModeBatch {
		return g.State(), ErrWrongMode
	}
	g.updateStatus()
	if g.IsComplete() {
		return g.State(), nil
	}

	results := g.resolver.Resolve()
	g.turn++
	for _, result := range results {
		g.record(result, false, false)
	}
	g.log.WithFields(logrus.Fields{"turn": g.turn, "results": len(results)}).Debug("Plans resolved")
	g.updateStatus()
	return g.State(), nil
}

// RunAI lets the greedy policy play the active adversary until it passes,
// the game ends or the per-turn action cap is reached.
func (g *gridGame) RunAI() (Snapshot, error) {
	if !g.initialized {
		return Snapshot{}, ErrNotInitialized
	}
	if g.Mode() != engine.ModeImmediate {
		return g.State(), ErrWrongMode
	}
	if g.IsComplete() {
		return g.State(), nil
	}
	if !g.adversaryActive() {
		return g.State(), ErrNotAdversaryTurn
	}
	g.playAdversaryTurn()
	return g.State(), nil
}

func (g *gridGame) adversaryActive() bool {
	active, ok := g.controller.ActiveCharacter()
	return ok && g.built.World.NPCs.Has(active)
}

// playAdversaries runs adversary turns until a party member holds the turn.
func (g *gridGame) playAdversaries() {
	for guard := 0; guard < len(g.controller.TurnOrder())+1; guard++ {
		if g.IsComplete() || !g.adversaryActive() {
			return
		}
		g.playAdversaryTurn()
	}
}

func (g *gridGame) playAdversaryTurn() {
	active, _ := g.controller.ActiveCharacter()
	for i := 0; i < engine.MaxAIActionsPerTurn; i++ {
		if g.IsComplete() || !g.controller.Scheduler().IsActive(active) {
			return
		}
		decision := engine.ChooseAction(g.controller.Context(g.built.World, g.built.Grid, active))
		result := g.step(active, decision.Action, true)
		if _, passed := decision.Action.(engine.PassAction); passed {
			return
		}
		if !result.Success {
			g.step(active, engine.PassAction{}, true)
			return
		}
	}
	if !g.IsComplete() && g.controller.Scheduler().IsActive(active) {
		g.step(active, engine.PassAction{}, true)
	}
}

// step dispatches one action. Only party actions advance the turn counter,
// so adversary moves never use up a turn limit.
func (g *gridGame) step(actor engine.EntityID, action engine.Action, byAI bool) engine.ExecutionResult {
	g.updateStatus()
	if g.IsComplete() {
		return engine.ExecutionResult{Action: action.Request(), ActorID: actor, Error: "Game is already complete"}
	}

	round := g.controller.Round()
	result := g.resolver.Submit(actor, action)
	if !byAI {
		g.turn++
	}
	g.record(result, byAI, false)
	g.history[len(g.history)-1].Round = round
	g.updateStatus()
	return result
}

// plan queues an action with the batch resolver without advancing the turn.
func (g *gridGame) plan(actor engine.EntityID, action engine.Action) engine.ExecutionResult {
	g.updateStatus()
	if g.IsComplete() {
		return engine.ExecutionResult{Action: action.Request(), ActorID: actor, Error: "Game is already complete"}
	}
	result := g.resolver.Submit(actor, action)
	g.record(result, false, true)
	return result
}

func (g *gridGame) record(result engine.ExecutionResult, byAI, planned bool) {
	g.lastResult = &result
	g.dispatched++
	turn := g.turn
	if planned {
		turn++
	}
	g.history = append(g.history, HistoryEntry{
		Sequence:        g.dispatched,
		Turn:            turn,
		Round:           g.controller.Round(),
		ByAI:            byAI,
		Planned:         planned,
		Timestamp:       g.now(),
		ExecutionResult: result,
	})
}

func (g *gridGame) updateStatus() {
	if g.IsComplete() {
		return
	}
	g.CheckWin()
	if !g.won {
		g.CheckLoss()
	}
}

// CheckWin applies the shared exit-zone check and the scenario rule
func (g *gridGame) CheckWin() bool {
	if g.won {
		return true
	}
	party := g.built.PartyIDs()
	exited := len(party) > 0 && engine.CheckWinCondition(g.built.World, g.built.Grid, g.built.PartyIDs)
	if exited || g.rules.winSpecific() {
		g.won = true
		g.log.WithField("turn", g.turn).Info("Scenario won")
	}
	return g.won
}

// CheckLoss applies the scenario loss rule
func (g *gridGame) CheckLoss() bool {
	if g.lost {
		return true
	}
	if g.rules.lossSpecific() {
		g.lost = true
		g.log.WithField("turn", g.turn).Info("Scenario lost")
	}
	return g.lost
}

// Cleanup returns the game to the uninitialized state
func (g *gridGame) Cleanup() {
	g.initialized = false
}

// History returns a copy of the dispatched actions
func (g *gridGame) History() []HistoryEntry {
	out := make([]HistoryEntry, len(g.history))
	copy(out, g.history)
	return out
}

// partyDefeated is true when every party member carries Stats at zero HP.
func (g *gridGame) partyDefeated() bool {
	return engine.AllDefeated(g.built.World, g.built.Party)
}

// casualty is true when the scenario demands everyone survive and someone fell.
func (g *gridGame) casualty() bool {
	return g.def.HasWinCondition(scenario.WinAllAlive) && !engine.AllAlive(g.built.World, g.built.Party)
}
