package minigame

import (
	"github.com/wricardo/grid-tactics/game/engine"
	"github.com/wricardo/grid-tactics/game/scenario"
)

// Map legend used by Render.
const (
	CellWall     = '#'
	CellFloor    = '.'
	CellEntrance = 'I'
	CellExit     = 'O'
	CellDefeated = 'x'
)

// Snapshot is the serialisable view of a minigame handed to presentation
// layers after every operation.
type Snapshot struct {
	Turn            int                     `json:"turn"`
	Round           int                     `json:"round"`
	Type            scenario.MinigameType   `json:"type"`
	Mode            engine.ResolutionMode   `json:"mode"`
	Status          Status                  `json:"status"`
	ActiveCharacter engine.EntityID         `json:"active_character,omitempty"`
	TurnOrder       []engine.EntityID       `json:"turn_order"`
	IsComplete      bool                    `json:"is_complete"`
	IsWon           bool                    `json:"is_won"`
	IsLost          bool                    `json:"is_lost"`
	MaxTurns        int                     `json:"max_turns,omitempty"`
	TurnsRemaining  *int                    `json:"turns_remaining,omitempty"`
	LastResult      *engine.ExecutionResult `json:"last_result,omitempty"`
	Entities        []EntityView            `json:"entities"`
	Plans           []engine.PlannedPath    `json:"plans,omitempty"`
	Grid            GridView                `json:"grid"`
}

// EntityView flattens one entity's components.
type EntityView struct {
	ID         engine.EntityID     `json:"id"`
	Type       scenario.EntityType `json:"type,omitempty"`
	Name       string              `json:"name,omitempty"`
	Position   *engine.Position    `json:"position,omitempty"`
	Facing     *engine.Direction   `json:"facing,omitempty"`
	Attributes *engine.Attributes  `json:"attributes,omitempty"`
	Stats      *engine.Stats       `json:"stats,omitempty"`
	Weight     int                 `json:"weight,omitempty"`
	AP         *int                `json:"ap,omitempty"`
	Char       string              `json:"char,omitempty"`
	Color      string              `json:"color,omitempty"`
	Sprite     string              `json:"sprite,omitempty"`
	NPC        bool                `json:"npc,omitempty"`
	Player     bool                `json:"player,omitempty"`
}

// GridView describes the board and a rendered text map.
type GridView struct {
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Entrance engine.ZoneBand `json:"entrance"`
	Exit     engine.ZoneBand `json:"exit"`
	Rows     []string        `json:"rows"`
}

// State snapshots the current game
func (g *gridGame) State() Snapshot {
	active, _ := g.controller.ActiveCharacter()
	s := Snapshot{
		Turn:            g.turn,
		Round:           g.controller.Round(),
		Type:            g.kind,
		Mode:            g.Mode(),
		Status:          g.Status(),
		ActiveCharacter: active,
		TurnOrder:       g.controller.TurnOrder(),
		IsComplete:      g.IsComplete(),
		IsWon:           g.won,
		IsLost:          g.lost,
		LastResult:      g.lastResult,
		Entities:        g.entityViews(),
		Grid:            gridView(g.built.World, g.built.Grid),
	}
	if batch, ok := g.resolver.(*engine.BatchResolver); ok {
		for _, path := range batch.Planner().Paths() {
			p := *path
			p.Steps = append([]engine.Position(nil), path.Steps...)
			s.Plans = append(s.Plans, p)
		}
	}
	if g.maxTurns > 0 {
		left := g.maxTurns - g.turn
		if left < 0 {
			left = 0
		}
		s.MaxTurns = g.maxTurns
		s.TurnsRemaining = &left
	}
	return s
}

func (g *gridGame) entityViews() []EntityView {
	w := g.built.World
	ids := w.Entities()
	views := make([]EntityView, 0, len(ids))
	for _, id := range ids {
		v := EntityView{ID: id, NPC: w.NPCs.Has(id), Player: w.Players.Has(id)}
		if i := int(id) - 1; i >= 0 && i < len(g.def.Entities) {
			v.Type = g.def.Entities[i].Type
			v.Name = g.def.Entities[i].Properties.String("name")
		}
		if p, ok := w.Positions.Get(id); ok {
			v.Position = &p
		}
		if f, ok := w.Facings.Get(id); ok {
			v.Facing = &f
		}
		if a, ok := w.Attributes.Get(id); ok {
			v.Attributes = &a
			ap := g.controller.AP(id)
			v.AP = &ap
		}
		if s, ok := w.Stats.Get(id); ok {
			v.Stats = &s
		}
		if p, ok := w.Pushables.Get(id); ok {
			v.Weight = p.Weight
		}
		if r, ok := w.Renderables.Get(id); ok {
			v.Char, v.Color, v.Sprite = r.Char, r.Color, r.Sprite
		}
		views = append(views, v)
	}
	return views
}

func gridView(world *engine.World, grid *engine.Grid) GridView {
	return GridView{
		Width:    grid.Width(),
		Height:   grid.Height(),
		Entrance: grid.EntranceBand(),
		Exit:     grid.ExitBand(),
		Rows:     Render(world, grid),
	}
}

// Render draws the board one string per row. Entities show their display
// character; defeated ones show CellDefeated.
func Render(world *engine.World, grid *engine.Grid) []string {
	cells := make([][]rune, grid.Height())
	for y := range cells {
		cells[y] = make([]rune, grid.Width())
		for x := range cells[y] {
			switch {
			case grid.IsWall(x, y):
				cells[y][x] = CellWall
			case grid.IsEntranceZone(x, y):
				cells[y][x] = CellEntrance
			case grid.IsExitZone(x, y):
				cells[y][x] = CellExit
			default:
				cells[y][x] = CellFloor
			}
		}
	}

	for _, id := range world.Positions.Entities() {
		pos, _ := world.Positions.Get(id)
		if !grid.IsValid(pos.X, pos.Y) {
			continue
		}
		ch := '?'
		if r, ok := world.Renderables.Get(id); ok && r.Char != "" {
			ch = []rune(r.Char)[0]
		}
		if !world.IsAlive(id) {
			ch = CellDefeated
		}
		cells[pos.Y][pos.X] = ch
	}

	rows := make([]string, len(cells))
	for y, row := range cells {
		rows[y] = string(row)
	}
	return rows
}
