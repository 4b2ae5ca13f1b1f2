package scenario

import (
	"fmt"

	"github.com/wricardo/grid-tactics/game/engine"
)

var knownWinConditions = map[WinConditionType]bool{
	WinAllInExit:        true,
	WinAllAlive:         true,
	WinDefeatAllEnemies: true,
	WinCustom:           true,
}

var knownAttributes = map[string]bool{"pwr": true, "mov": true, "inf": true, "cre": true}

// Validate checks a definition for correctness and playability and returns
// the first problem found.
func Validate(def *Definition) error {
	if problems := Problems(def); len(problems) > 0 {
		return fmt.Errorf("scenario validation: %s", problems[0])
	}
	return nil
}

// Problems lists every issue found in the definition. An empty result means
// the scenario can be built and played.
func Problems(def *Definition) []string {
	if def == nil {
		return []string{"definition is nil"}
	}
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if def.ID == "" {
		add("id is required")
	}
	if def.Name == "" {
		add("name is required")
	}
	switch def.MinigameType {
	case TypeCombat, TypeObstacle, TypeTrading:
	default:
		add("minigameType must be combat, obstacle or trading, got %q", def.MinigameType)
	}

	w, h := def.Grid.Width, def.Grid.Height
	if w < MinGridSize || w > MaxGridSize || h < MinGridSize || h > MaxGridSize {
		add("grid must be between %d and %d cells per side, got %dx%d", MinGridSize, MaxGridSize, w, h)
		return problems
	}

	entrance, exit := def.Grid.Bands()
	bands := []struct {
		name string
		band engine.ZoneBand
	}{{"entrance", entrance}, {"exit", exit}}
	for _, b := range bands {
		if b.band.MinY > b.band.MaxY || b.band.MinY < 1 || b.band.MaxY > h-2 {
			add("%s band %d..%d must lie within rows 1..%d", b.name, b.band.MinY, b.band.MaxY, h-2)
		}
	}

	grid := engine.NewGridWithZones(w, h, entrance, exit)
	seen := make(map[engine.Position]int)
	characters := 0
	for i, p := range def.Entities {
		pos := p.Position
		switch {
		case !grid.IsValid(pos.X, pos.Y):
			add("entity %d (%s) at (%d,%d) is out of bounds", i, p.Type, pos.X, pos.Y)
		case grid.IsWall(pos.X, pos.Y):
			add("entity %d (%s) at (%d,%d) is on a wall", i, p.Type, pos.X, pos.Y)
		}
		if prev, dup := seen[pos]; dup {
			add("entity %d shares (%d,%d) with entity %d", i, pos.X, pos.Y, prev)
		} else {
			seen[pos] = i
		}

		switch p.Type {
		case EntityCharacter, EntityNPC, EntityEnemy:
			if p.Type == EntityCharacter {
				characters++
			}
			if p.Properties.String("name") == "" {
				add("entity %d (%s) is missing name", i, p.Type)
			}
			attrs, ok := p.Properties.Attributes()
			if !ok {
				add("entity %d (%s) is missing attributes", i, p.Type)
			} else if attrs.Mov < 0 || attrs.Pwr < 0 || attrs.Inf < 0 || attrs.Cre < 0 {
				add("entity %d (%s) has negative attributes", i, p.Type)
			}
		case EntityCrate:
			if weight, ok := p.Properties.Int("weight"); !ok {
				add("entity %d (crate) is missing weight", i)
			} else if weight < 0 {
				add("entity %d (crate) has negative weight %d", i, weight)
			}
		case EntityTrap, EntityObstacle:
		default:
			add("entity %d has unknown type %q", i, p.Type)
		}
	}
	if characters == 0 {
		add("scenario must place at least one character")
	}

	for i, wc := range def.WinConditions {
		if !knownWinConditions[wc.Type] {
			add("win condition %d has unknown type %q", i, wc.Type)
		}
	}
	for i, req := range def.RequiredStats {
		if !knownAttributes[req.Attribute] {
			add("required stat %d names unknown attribute %q", i, req.Attribute)
		}
	}

	if def.Config.MaxTurns < 0 {
		add("config.maxTurns must not be negative, got %d", def.Config.MaxTurns)
	}
	switch def.ResolutionMode() {
	case engine.ModeImmediate, engine.ModeBatch:
	default:
		add("config.resolution must be immediate or batch, got %q", def.Config.Resolution)
	}
	if err := def.Rules().Validate(); err != nil {
		add("%v", err)
	}
	return problems
}

// ValidateJob checks the job header and every scenario it contains
func ValidateJob(job *Job) error {
	if job.ID == "" || job.Name == "" {
		return fmt.Errorf("job validation: id and name are required")
	}
	if len(job.Scenarios) == 0 {
		return fmt.Errorf("job validation: job %q has no scenarios", job.ID)
	}
	ids := make(map[string]bool, len(job.Scenarios))
	for i := range job.Scenarios {
		def := &job.Scenarios[i]
		if ids[def.ID] {
			return fmt.Errorf("job validation: duplicate scenario id %q", def.ID)
		}
		ids[def.ID] = true
		if err := Validate(def); err != nil {
			return fmt.Errorf("job validation: scenario %q: %w", def.ID, err)
		}
	}
	return nil
}
