package scenario

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/grid-tactics/game/engine"
	"github.com/wricardo/grid-tactics/pkg/logger"
)

// Display defaults for materialised placements.
const (
	PartyColor       = "#d4a574"
	EnemyColor       = "#d32f2f"
	CrateColor       = "#8B4513"
	DefaultSprite    = "/assets/characters/warrior.png"
	CrateSprite      = "/assets/items/crate.png"
	DefaultNPCHP     = 10
	DefaultStamina   = 50
	DefaultCrateChar = "C"
)

// Built is an instantiated scenario ready to be played.
type Built struct {
	World *engine.World
	Grid  *engine.Grid
	Party []engine.EntityID
	Rules engine.Rules
}

// PartyIDs returns the party in placement order
func (b *Built) PartyIDs() []engine.EntityID {
	return b.Party
}

// Build creates a world with one entity per placement, in placement order, so
// entity ids follow the definition. Any invalid placement fails the whole
// build: a character or npc without name or attributes, a crate without
// weight, or a cell already taken by an earlier placement.
func Build(def *Definition) (*Built, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: definition is nil", ErrInvalidScenario)
	}
	if def.Grid.Width <= 0 || def.Grid.Height <= 0 {
		return nil, fmt.Errorf("%w: grid must have positive dimensions, got %dx%d", ErrInvalidScenario, def.Grid.Width, def.Grid.Height)
	}

	entrance, exit := def.Grid.Bands()
	built := &Built{
		World: engine.NewWorld(),
		Grid:  engine.NewGridWithZones(def.Grid.Width, def.Grid.Height, entrance, exit),
		Rules: def.Rules(),
	}
	log := logger.Component("scenario").WithField("scenario_id", def.ID)

	occupied := make(map[engine.Position]int, len(def.Entities))
	for i, p := range def.Entities {
		if prev, taken := occupied[p.Position]; taken {
			return nil, fmt.Errorf("%w: entity %d shares (%d,%d) with entity %d",
				ErrInvalidScenario, i, p.Position.X, p.Position.Y, prev)
		}
		occupied[p.Position] = i

		id := built.World.CreateEntity()
		built.World.Positions.Set(id, p.Position)

		var err error
		switch p.Type {
		case EntityCharacter:
			err = createCharacter(built.World, id, p)
			if err == nil {
				built.Party = append(built.Party, id)
			}
		case EntityNPC, EntityEnemy:
			err = createNPC(built.World, id, p)
		case EntityCrate:
			err = createCrate(built.World, id, p)
		case EntityTrap, EntityObstacle:
			log.WithFields(logrus.Fields{
				"entity_id": id,
				"type":      p.Type,
				"x":         p.Position.X,
				"y":         p.Position.Y,
			}).Warn("Entity type not yet implemented, placing position only")
		default:
			err = fmt.Errorf("unknown entity type %q", p.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: entity %d: %v", ErrInvalidScenario, i, err)
		}
	}

	log.WithFields(logrus.Fields{
		"entities": built.World.Count(),
		"party":    len(built.Party),
	}).Debug("Scenario built")
	return built, nil
}

func createCharacter(world *engine.World, id engine.EntityID, p Placement) error {
	name := p.Properties.String("name")
	attrs, ok := p.Properties.Attributes()
	if name == "" || !ok {
		return fmt.Errorf("character missing required properties: name or attributes")
	}

	world.Renderables.Set(id, engine.Renderable{
		Char:   initial(name),
		Color:  PartyColor,
		Sprite: spriteOr(p.Properties, DefaultSprite),
	})
	world.Attributes.Set(id, attrs)
	world.Facings.Set(id, engine.Right)
	world.Players.Set(id, engine.PlayerControlled{})

	if hp, ok := p.Properties.Int("hp"); ok {
		maxHP := p.Properties.IntOr("maxHp", hp)
		world.Stats.Set(id, engine.Stats{
			HP:         hp,
			MaxHP:      maxHP,
			Stamina:    p.Properties.IntOr("stamina", DefaultStamina),
			MaxStamina: p.Properties.IntOr("maxStamina", DefaultStamina),
		})
	}
	return nil
}

func createNPC(world *engine.World, id engine.EntityID, p Placement) error {
	name := p.Properties.String("name")
	attrs, ok := p.Properties.Attributes()
	if name == "" || !ok {
		return fmt.Errorf("npc missing required properties: name or attributes")
	}

	world.Renderables.Set(id, engine.Renderable{
		Char:   initial(name),
		Color:  EnemyColor,
		Sprite: spriteOr(p.Properties, DefaultSprite),
	})
	world.Attributes.Set(id, attrs)

	maxHP := p.Properties.IntOr("maxHp", DefaultNPCHP)
	world.Stats.Set(id, engine.Stats{
		HP:         maxHP,
		MaxHP:      maxHP,
		Stamina:    p.Properties.IntOr("stamina", DefaultStamina),
		MaxStamina: p.Properties.IntOr("maxStamina", DefaultStamina),
	})
	world.Facings.Set(id, engine.Right)
	world.NPCs.Set(id, engine.NPC{})
	return nil
}

func createCrate(world *engine.World, id engine.EntityID, p Placement) error {
	weight, ok := p.Properties.Int("weight")
	if !ok {
		return fmt.Errorf("crate missing required property: weight")
	}
	world.Renderables.Set(id, engine.Renderable{
		Char:   DefaultCrateChar,
		Color:  CrateColor,
		Sprite: spriteOr(p.Properties, CrateSprite),
	})
	world.Pushables.Set(id, engine.Pushable{Weight: weight})
	return nil
}

func initial(name string) string {
	return strings.ToUpper(string([]rune(name)[:1]))
}

func spriteOr(p Properties, def string) string {
	if s := p.String("sprite"); s != "" {
		return s
	}
	return def
}
