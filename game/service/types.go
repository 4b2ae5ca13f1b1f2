package service

import (
	"time"

	"github.com/wricardo/grid-tactics/game/engine"
	"github.com/wricardo/grid-tactics/game/minigame"
	"github.com/wricardo/grid-tactics/game/scenario"
)

// SessionInfo provides information about an encounter session
type SessionInfo struct {
	ID             string                `json:"id"`
	ScenarioID     string                `json:"scenario_id"`
	ScenarioName   string                `json:"scenario_name"`
	MinigameType   scenario.MinigameType `json:"minigame_type"`
	Status         minigame.Status       `json:"status"`
	CreatedAt      time.Time             `json:"created_at"`
	LastAccessedAt time.Time             `json:"last_accessed_at"`
	State          *minigame.Snapshot    `json:"state,omitempty"`
}

// ActionInput is the wire form of an action request. Direction accepts the
// names understood by engine.ParseDirection.
type ActionInput struct {
	ActorID   engine.EntityID   `json:"actor_id"`
	Kind      engine.ActionKind `json:"kind"`
	Target    *engine.Position  `json:"target,omitempty"`
	TargetID  engine.EntityID   `json:"target_id,omitempty"`
	Direction string            `json:"direction,omitempty"`
}

// ActionResult contains the result of one dispatched action or AI turn
type ActionResult struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Results []minigame.HistoryEntry `json:"results"`
	State   *minigame.Snapshot      `json:"state"`
	Events  []GameEvent             `json:"events,omitempty"`
}

// MovesInfo lists what a character could do from where it stands
type MovesInfo struct {
	EntityID engine.EntityID        `json:"entity_id"`
	Position engine.Position        `json:"position"`
	AP       int                    `json:"ap"`
	Moves    []engine.Position      `json:"moves"`
	Pushes   []PushInfo             `json:"pushes,omitempty"`
	Actions  []engine.ActionRequest `json:"actions"`
}

// PushInfo is one legal push of an adjacent object
type PushInfo struct {
	ObjectID engine.EntityID `json:"object_id"`
	engine.PushOption
}

// Event types emitted by the service.
const (
	EventAction        = "action"
	EventRejected      = "rejected"
	EventMove          = "move"
	EventPush          = "push"
	EventTurn          = "turn"
	EventAttack        = "attack"
	EventDefeated      = "defeated"
	EventPass          = "pass"
	EventRoundComplete = "round_complete"
	EventVictory       = "victory"
	EventDefeat        = "defeat"
	EventReset         = "reset"
	EventPlanned       = "planned"
	EventConflict      = "conflict"
)

// GameEvent represents an event that occurred during an encounter
type GameEvent struct {
	Type      string           `json:"type"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	ActorID   engine.EntityID  `json:"actor_id,omitempty"`
	Position  *engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures action history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated action history
type HistoryResponse struct {
	Entries      []minigame.HistoryEntry `json:"entries"`
	TotalEntries int                     `json:"total_entries"`
	Page         int                     `json:"page"`
	PageSize     int                     `json:"page_size"`
	TotalPages   int                     `json:"total_pages"`
	HasNext      bool                    `json:"has_next"`
	HasPrevious  bool                    `json:"has_previous"`
}

// ScenarioInfo provides information about a scenario definition
type ScenarioInfo struct {
	Filename     string                `json:"filename,omitempty"`
	ScenarioID   string                `json:"scenario_id"` // The identifier to use for session creation
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	MinigameType scenario.MinigameType `json:"minigame_type"`
	Width        int                   `json:"width"`
	Height       int                   `json:"height"`
	Entities     int                   `json:"entities"`
	MaxTurns     int                   `json:"max_turns,omitempty"`
	Source       string                `json:"source"` // "file", "embedded" or "job"
}

// JobInfo summarises a job and the scenario ids it offers
type JobInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Scenarios   []string `json:"scenarios"` // qualified as job/scenario
}
