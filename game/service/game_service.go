package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wricardo/grid-tactics/game/engine"
	"github.com/wricardo/grid-tactics/game/minigame"
	"github.com/wricardo/grid-tactics/game/scenario"
)

// GameService defines all encounter-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, scenarioID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Encounter Operations
	ExecuteAction(ctx context.Context, sessionID string, req ActionInput) (*ActionResult, error)
	RunAI(ctx context.Context, sessionID string) (*ActionResult, error)
	Resolve(ctx context.Context, sessionID string) (*ActionResult, error)
	Reset(ctx context.Context, sessionID string) (*minigame.Snapshot, error)

	// Encounter State
	GetState(ctx context.Context, sessionID string) (*minigame.Snapshot, error)
	ValidMoves(ctx context.Context, sessionID string, entityID engine.EntityID) (*MovesInfo, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Scenarios
	ListScenarios(ctx context.Context) ([]*ScenarioInfo, error)
	LoadScenario(ctx context.Context, scenarioID string) (*scenario.Definition, error)
	SaveScenario(ctx context.Context, scenarioID string, def *scenario.Definition) error
	ListJobs(ctx context.Context) ([]*JobInfo, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, def *scenario.Definition) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, def *scenario.Definition) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Reset(id string) (*Session, error)
}

// ScenarioRepository handles scenario and job loading
type ScenarioRepository interface {
	LoadScenario(id string) (*scenario.Definition, error)
	ListScenarios() ([]*ScenarioInfo, error)
	GetDefault() *scenario.Definition
	SaveScenario(id string, def *scenario.Definition) error
	ListJobs() ([]*JobInfo, error)
}

// Session represents an active encounter. Game is not safe for concurrent
// use; callers hold the session lock while touching it. The access time is
// atomic and may be read or written without the lock.
type Session struct {
	sync.Mutex

	ID         string
	ScenarioID string
	Game       minigame.Minigame
	Definition *scenario.Definition
	CreatedAt  time.Time

	lastAccessed atomic.Int64
}

// Touch records an access at t
func (s *Session) Touch(t time.Time) {
	s.lastAccessed.Store(t.UnixNano())
}

// LastAccessed returns the time of the latest Touch
func (s *Session) LastAccessed() time.Time {
	return time.Unix(0, s.lastAccessed.Load())
}
