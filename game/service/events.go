package service

import (
	"fmt"
	"strings"

	"github.com/wricardo/grid-tactics/game/engine"
	"github.com/wricardo/grid-tactics/game/minigame"
)

// Request converts the wire input into an engine request
func (in ActionInput) Request() (engine.ActionRequest, error) {
	req := engine.ActionRequest{
		Kind:     engine.ActionKind(strings.ToLower(string(in.Kind))),
		Target:   in.Target,
		TargetID: in.TargetID,
	}
	if in.Direction != "" {
		dir, err := engine.ParseDirection(in.Direction)
		if err != nil {
			return engine.ActionRequest{}, fmt.Errorf("%w: %v", ErrInvalidAction, err)
		}
		req.Direction = &dir
	}
	return req, nil
}

// Action decodes the input into an engine action
func (in ActionInput) Action() (engine.Action, error) {
	req, err := in.Request()
	if err != nil {
		return nil, err
	}
	action, err := req.Action()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	return action, nil
}

// events turns history entries into presentation events
func (s *gameServiceImpl) events(state *minigame.Snapshot, entries []minigame.HistoryEntry) []GameEvent {
	var events []GameEvent
	for _, e := range entries {
		ev := GameEvent{
			Type:      EventAction,
			Message:   describeEntry(state, e),
			Timestamp: e.Timestamp,
			ActorID:   e.ActorID,
		}
		if e.Conflict != nil {
			events = append(events, GameEvent{
				Type:      EventConflict,
				Message:   describeConflict(state, *e.Conflict),
				Timestamp: e.Timestamp,
				ActorID:   e.ActorID,
				Position:  e.Action.Target,
			})
			continue
		}
		if !e.Success {
			ev.Type = EventRejected
			events = append(events, ev)
			continue
		}
		if e.Planned {
			ev.Type, ev.Position = EventPlanned, e.Action.Target
			events = append(events, ev)
			continue
		}

		switch e.Action.Kind {
		case engine.KindMove:
			ev.Type, ev.Position = EventMove, e.To
		case engine.KindPush:
			ev.Type, ev.Position = EventPush, e.To
		case engine.KindTurn:
			ev.Type = EventTurn
		case engine.KindAttack:
			ev.Type = EventAttack
		case engine.KindPass:
			ev.Type = EventPass
		}
		events = append(events, ev)

		if e.Action.Kind == engine.KindAttack && e.TargetHP != nil && *e.TargetHP == 0 {
			events = append(events, GameEvent{
				Type:      EventDefeated,
				Message:   fmt.Sprintf("%s is defeated", entityName(state, e.Action.TargetID)),
				Timestamp: e.Timestamp,
				ActorID:   e.Action.TargetID,
			})
		}
		if e.RoundComplete {
			events = append(events, GameEvent{
				Type:      EventRoundComplete,
				Message:   fmt.Sprintf("Round %d complete", e.Round),
				Timestamp: e.Timestamp,
			})
		}
	}
	return events
}

// describeEntry renders one history entry as a sentence
func describeEntry(state *minigame.Snapshot, e minigame.HistoryEntry) string {
	actor := entityName(state, e.ActorID)
	if !e.Success {
		return fmt.Sprintf("%s cannot %s: %s", actor, e.Action.Kind, e.Error)
	}
	if e.Planned {
		if e.Action.Kind == engine.KindMove && e.Action.Target != nil {
			return fmt.Sprintf("%s planned a move to (%d,%d)", actor, e.Action.Target.X, e.Action.Target.Y)
		}
		return fmt.Sprintf("%s planned %s", actor, e.Action.Kind)
	}
	switch e.Action.Kind {
	case engine.KindMove:
		if e.To != nil {
			return fmt.Sprintf("%s moved to (%d,%d)", actor, e.To.X, e.To.Y)
		}
	case engine.KindPush:
		return fmt.Sprintf("%s pushed %s", actor, entityName(state, e.Action.TargetID))
	case engine.KindTurn:
		if e.Action.Direction != nil {
			return fmt.Sprintf("%s turned %s", actor, engine.DirectionName(*e.Action.Direction))
		}
	case engine.KindAttack:
		hp := 0
		if e.TargetHP != nil {
			hp = *e.TargetHP
		}
		return fmt.Sprintf("%s hit %s for %d (%d HP left)", actor, entityName(state, e.Action.TargetID), e.Damage, hp)
	case engine.KindPass:
		return fmt.Sprintf("%s passed", actor)
	}
	return fmt.Sprintf("%s used %s", actor, e.Action.Kind)
}

// describeConflict explains why a planned step was refused
func describeConflict(state *minigame.Snapshot, c engine.Conflict) string {
	return fmt.Sprintf("%s's step %d clashes with %s (%s)",
		entityName(state, c.CharacterID), c.Step, entityName(state, c.With), c.Kind)
}

// entityName finds a display name in the snapshot, falling back to the id
func entityName(state *minigame.Snapshot, id engine.EntityID) string {
	if state != nil {
		for _, v := range state.Entities {
			if v.ID == id && v.Name != "" {
				return v.Name
			}
		}
	}
	if id == engine.NoEntity {
		return "Nobody"
	}
	return fmt.Sprintf("Entity %d", id)
}
