package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/grid-tactics/game/engine"
	"github.com/wricardo/grid-tactics/game/minigame"
	"github.com/wricardo/grid-tactics/game/scenario"
	"github.com/wricardo/grid-tactics/pkg/logger"
)

// History paging limits.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Listener is told about every state change of a session, after the change
// is complete.
type Listener func(sessionID string, state *minigame.Snapshot, events []GameEvent)

// Option configures the game service
type Option func(*gameServiceImpl)

// WithListener registers a listener for state changes
func WithListener(l Listener) Option {
	return func(s *gameServiceImpl) { s.listeners = append(s.listeners, l) }
}

// WithLogger replaces the package logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *gameServiceImpl) { s.log = log }
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions  SessionManager
	scenarios ScenarioRepository
	listeners []Listener
	log       logrus.FieldLogger
	now       func() time.Time
	mu        sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, scenarios ScenarioRepository, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions:  sessions,
		scenarios: scenarios,
		log:       logger.Component("service"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new encounter session from a scenario. An empty id
// uses the default scenario.
func (s *gameServiceImpl) CreateSession(ctx context.Context, scenarioID string) (*SessionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	def, err := s.resolveScenario(scenarioID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", def)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if scenarioID != "" {
		sess.ScenarioID = scenarioID
	}

	s.log.WithFields(logrus.Fields{"session_id": sess.ID, "scenario_id": sess.ScenarioID}).Info("Encounter started")
	return s.sessionInfo(sess, true), nil
}

// resolveScenario loads a scenario, listing the alternatives when it is missing.
func (s *gameServiceImpl) resolveScenario(scenarioID string) (*scenario.Definition, error) {
	if scenarioID == "" {
		if def := s.scenarios.GetDefault(); def != nil {
			return def, nil
		}
		return nil, fmt.Errorf("%w: no default scenario", ErrScenarioNotFound)
	}

	def, err := s.scenarios.LoadScenario(scenarioID)
	if err == nil {
		return def, nil
	}
	if errors.Is(err, ErrScenarioNotFound) {
		// Provide helpful error message with available options
		infos, listErr := s.scenarios.ListScenarios()
		if listErr == nil && len(infos) > 0 {
			ids := make([]string, 0, len(infos))
			for _, info := range infos {
				ids = append(ids, info.ScenarioID)
			}
			return nil, fmt.Errorf("%w: '%s'. Available scenarios: %v", ErrScenarioNotFound, scenarioID, ids)
		}
		return nil, fmt.Errorf("%w: '%s'. Use /api/scenarios to list available scenarios", ErrScenarioNotFound, scenarioID)
	}
	return nil, fmt.Errorf("failed to load scenario %s: %w", scenarioID, err)
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess, true), nil
}

// ListSessions returns all active sessions without their state
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, false))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session not found: %w", err)
	}
	return nil
}

// ExecuteAction dispatches one action. A zero ActorID acts for the active
// character. Illegal actions are not errors: they come back with Success
// false and a rejected event.
func (s *gameServiceImpl) ExecuteAction(ctx context.Context, sessionID string, in ActionInput) (*ActionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	action, err := in.Action()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	sess, err := s.session(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	sess.Lock()
	actor := in.ActorID
	if actor == engine.NoEntity {
		active, ok := sess.Game.Controller().ActiveCharacter()
		if !ok {
			sess.Unlock()
			s.mu.Unlock()
			return nil, ErrNoActiveCharacter
		}
		actor = active
	}

	before := len(sess.Game.History())
	wasComplete := sess.Game.IsComplete()
	state, err := sess.Game.ExecuteAction(actor, action)
	if err != nil {
		sess.Unlock()
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to execute action: %w", err)
	}
	result := s.actionResult(sess.Game, before, wasComplete, &state)
	sess.Unlock()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"session_id": sessionID,
		"actor_id":   actor,
		"action":     engine.DescribeAction(action),
		"success":    result.Success,
	}).Debug("Action dispatched")

	s.notify(sess.ID, result.State, result.Events)
	return result, nil
}

// RunAI plays the active adversary's turn
func (s *gameServiceImpl) RunAI(ctx context.Context, sessionID string) (*ActionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	sess, err := s.session(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	sess.Lock()
	before := len(sess.Game.History())
	wasComplete := sess.Game.IsComplete()
	state, err := sess.Game.RunAI()
	if err != nil {
		sess.Unlock()
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to run AI: %w", err)
	}
	result := s.actionResult(sess.Game, before, wasComplete, &state)
	sess.Unlock()
	s.mu.Unlock()

	s.notify(sess.ID, result.State, result.Events)
	return result, nil
}

// Resolve executes the plans of a batch-mode session as one turn
func (s *gameServiceImpl) Resolve(ctx context.Context, sessionID string) (*ActionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	sess, err := s.session(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	sess.Lock()
	before := len(sess.Game.History())
	wasComplete := sess.Game.IsComplete()
	state, err := sess.Game.Resolve()
	if err != nil {
		sess.Unlock()
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to resolve plans: %w", err)
	}
	result := s.actionResult(sess.Game, before, wasComplete, &state)
	sess.Unlock()
	s.mu.Unlock()

	switch {
	case len(result.Results) > 0:
		result.Success = true
		result.Message = fmt.Sprintf("Resolved %d planned action(s)", len(result.Results))
	case !state.IsComplete:
		result.Success = true
		result.Message = "Nothing was planned"
	}

	s.log.WithFields(logrus.Fields{
		"session_id": sessionID,
		"results":    len(result.Results),
		"turn":       state.Turn,
	}).Debug("Plans resolved")

	s.notify(sess.ID, result.State, result.Events)
	return result, nil
}

// Reset rebuilds a session's encounter from its scenario
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*minigame.Snapshot, error) {
	s.mu.Lock()
	sess, err := s.sessions.Reset(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("session not found: %w", err)
	}
	sess.Lock()
	state := sess.Game.State()
	sess.Unlock()
	s.mu.Unlock()

	s.notify(sess.ID, &state, []GameEvent{{
		Type:      EventReset,
		Message:   "Encounter reset to initial state",
		Timestamp: s.now(),
	}})
	return &state, nil
}

// GetState retrieves the current encounter snapshot
func (s *gameServiceImpl) GetState(ctx context.Context, sessionID string) (*minigame.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	state := sess.Game.State()
	return &state, nil
}

// ValidMoves lists the moves, pushes and legal actions of a character. A zero
// entityID asks about the active character.
func (s *gameServiceImpl) ValidMoves(ctx context.Context, sessionID string, entityID engine.EntityID) (*MovesInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()

	game := sess.Game
	world, grid, controller := game.World(), game.Grid(), game.Controller()
	if entityID == engine.NoEntity {
		active, ok := controller.ActiveCharacter()
		if !ok {
			return nil, ErrNoActiveCharacter
		}
		entityID = active
	}
	pos, ok := world.Positions.Get(entityID)
	if !ok || !world.Attributes.Has(entityID) {
		return nil, fmt.Errorf("%w: %d is not a character", ErrUnknownEntity, entityID)
	}

	info := &MovesInfo{
		EntityID: entityID,
		Position: pos,
		AP:       controller.AP(entityID),
		Moves:    controller.ValidMovesFor(world, grid, entityID),
		Actions:  controller.LegalActions(world, grid, entityID),
	}
	for _, object := range world.Pushables.Entities() {
		for _, opt := range controller.ValidPushesFor(world, grid, entityID, object) {
			info.Pushes = append(info.Pushes, PushInfo{ObjectID: object, PushOption: opt})
		}
	}
	if info.Moves == nil {
		info.Moves = []engine.Position{}
	}
	return info, nil
}

// GetHistory returns paginated action history
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	history := sess.Game.History()
	sess.Unlock()

	return paginate(history, opts), nil
}

func paginate(history []minigame.HistoryEntry, opts HistoryOptions) *HistoryResponse {
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultHistoryLimit
	}
	if opts.Limit > MaxHistoryLimit {
		opts.Limit = MaxHistoryLimit
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	entries := []minigame.HistoryEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			entries = append(entries, history[i])
		}
	} else if start < total {
		entries = append(entries, history[start:end]...)
	}

	return &HistoryResponse{
		Entries:      entries,
		TotalEntries: total,
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   totalPages,
		HasNext:      opts.Page < totalPages,
		HasPrevious:  opts.Page > 1,
	}
}

// ListScenarios returns available scenarios
func (s *gameServiceImpl) ListScenarios(ctx context.Context) ([]*ScenarioInfo, error) {
	return s.scenarios.ListScenarios()
}

// LoadScenario loads a specific scenario definition
func (s *gameServiceImpl) LoadScenario(ctx context.Context, scenarioID string) (*scenario.Definition, error) {
	return s.scenarios.LoadScenario(scenarioID)
}

// SaveScenario saves a scenario definition to the scenario directory
func (s *gameServiceImpl) SaveScenario(ctx context.Context, scenarioID string, def *scenario.Definition) error {
	return s.scenarios.SaveScenario(scenarioID, def)
}

// ListJobs returns available jobs
func (s *gameServiceImpl) ListJobs(ctx context.Context) ([]*JobInfo, error) {
	return s.scenarios.ListJobs()
}

// session looks a session up and marks it accessed. Callers hold s.mu.
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("Failed to update last access")
	}
	return sess, nil
}

func (s *gameServiceImpl) sessionInfo(sess *Session, withState bool) *SessionInfo {
	sess.Lock()
	defer sess.Unlock()

	info := &SessionInfo{
		ID:             sess.ID,
		ScenarioID:     sess.ScenarioID,
		ScenarioName:   sess.Definition.Name,
		MinigameType:   sess.Definition.MinigameType,
		Status:         sess.Game.Status(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessed(),
	}
	if withState {
		state := sess.Game.State()
		info.State = &state
	}
	return info
}

// actionResult collects the history entries added since before. The first
// new entry is the requested action; later ones were played by the AI.
func (s *gameServiceImpl) actionResult(game minigame.Minigame, before int, wasComplete bool, state *minigame.Snapshot) *ActionResult {
	history := game.History()
	result := &ActionResult{State: state, Results: []minigame.HistoryEntry{}}
	if before < len(history) {
		result.Results = append(result.Results, history[before:]...)
	}

	if len(result.Results) == 0 {
		result.Message = "Encounter is already complete"
		if state.LastResult != nil && state.LastResult.Error != "" {
			result.Message = state.LastResult.Error
		}
	} else {
		first := result.Results[0]
		result.Success = first.Success
		result.Message = describeEntry(state, first)
	}

	result.Events = s.events(state, result.Results)
	if !wasComplete {
		switch {
		case state.IsWon:
			result.Events = append(result.Events, GameEvent{Type: EventVictory, Message: "Victory! The encounter is won", Timestamp: s.now()})
		case state.IsLost:
			result.Events = append(result.Events, GameEvent{Type: EventDefeat, Message: "Defeat! The encounter is lost", Timestamp: s.now()})
		}
	}
	return result
}

// notify hands a state change to every listener
func (s *gameServiceImpl) notify(sessionID string, state *minigame.Snapshot, events []GameEvent) {
	for _, l := range s.listeners {
		l(sessionID, state, events)
	}
}
