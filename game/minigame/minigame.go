package minigame

import (
	"errors"
	"time"

	"github.com/wricardo/grid-tactics/game/engine"
	"github.com/wricardo/grid-tactics/game/scenario"
)

var (
	ErrNotInitialized      = errors.New("minigame must be initialized before executing actions")
	ErrUnsupportedMinigame = errors.New("unsupported minigame type")
	ErrNotAdversaryTurn    = errors.New("active character is not an adversary")
	ErrWrongMode           = errors.New("operation not available in this resolution mode")
)

// Status is the lifecycle state of a minigame.
type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusInProgress    Status = "in_progress"
	StatusWon           Status = "won"
	StatusLost          Status = "lost"
)

// Minigame wraps one encounter with scenario-specific win and loss rules.
// Implementations are not safe for concurrent use.
type Minigame interface {
	Type() scenario.MinigameType
	Definition() *scenario.Definition

	// Initialize starts the first round. Calling it again is a no-op.
	Initialize() error
	// ExecuteAction dispatches an action for actor. Rejected actions are
	// reported in the snapshot's LastResult, not as errors.
	ExecuteAction(actor engine.EntityID, action engine.Action) (Snapshot, error)
	// RunAI plays the active adversary's whole turn. Immediate mode only.
	RunAI() (Snapshot, error)
	// Resolve executes every planned action at once. Batch mode only.
	Resolve() (Snapshot, error)
	Mode() engine.ResolutionMode
	State() Snapshot
	History() []HistoryEntry

	CheckWin() bool
	CheckLoss() bool
	IsComplete() bool
	Status() Status
	Cleanup()

	World() *engine.World
	Grid() *engine.Grid
	Controller() *engine.Controller
	Party() []engine.EntityID
}

// HistoryEntry records one dispatched action and its outcome. Sequence counts
// every entry; Turn is the party turn the entry belongs to.
type HistoryEntry struct {
	Sequence  int       `json:"sequence"`
	Turn      int       `json:"turn"`
	Round     int       `json:"round"`
	ByAI      bool      `json:"by_ai,omitempty"`
	Planned   bool      `json:"planned,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	engine.ExecutionResult
}
