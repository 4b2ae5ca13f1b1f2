package scenario

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/grid-tactics/game/engine"
)

func sampleDefinition() *Definition {
	return &Definition{
		ID:           "warehouse",
		Name:         "Warehouse",
		Description:  "Push the crate and reach the exit",
		MinigameType: TypeObstacle,
		Grid:         GridConfig{Width: 10, Height: 10},
		Entities: []Placement{
			{Type: EntityCharacter, Position: engine.Position{X: 0, Y: 1}, Properties: Properties{
				"name":       "kara",
				"attributes": map[string]interface{}{"pwr": 3.0, "mov": 5.0, "inf": 1.0, "cre": 2.0},
			}},
			{Type: EntityNPC, Position: engine.Position{X: 5, Y: 5}, Properties: Properties{
				"name":       "Guard",
				"attributes": map[string]interface{}{"pwr": 2, "mov": 3},
			}},
			{Type: EntityCrate, Position: engine.Position{X: 4, Y: 4}, Properties: Properties{"weight": 20.0}},
			{Type: EntityTrap, Position: engine.Position{X: 2, Y: 2}},
		},
		WinConditions: []WinCondition{{Type: WinAllInExit, Description: "Everyone out"}},
		Config:        Settings{MaxTurns: 20},
	}
}

func TestBuild(t *testing.T) {
	built, err := Build(sampleDefinition())
	require.NoError(t, err)

	w := built.World
	assert.Equal(t, 4, w.Count())
	assert.Equal(t, []engine.EntityID{1}, built.Party)
	assert.Equal(t, 10, built.Grid.Width())

	attrs, ok := w.Attributes.Get(1)
	require.True(t, ok)
	assert.Equal(t, engine.Attributes{Pwr: 3, Mov: 5, Inf: 1, Cre: 2}, attrs)
	facing, _ := w.Facings.Get(1)
	assert.Equal(t, engine.Right, facing)
	r, _ := w.Renderables.Get(1)
	assert.Equal(t, "K", r.Char)
	assert.Equal(t, PartyColor, r.Color)
	assert.True(t, w.Players.Has(1))
	assert.False(t, w.Stats.Has(1))

	stats, ok := w.Stats.Get(2)
	require.True(t, ok)
	assert.Equal(t, engine.Stats{HP: 10, MaxHP: 10, Stamina: 50, MaxStamina: 50}, stats)
	assert.True(t, w.NPCs.Has(2))
	r, _ = w.Renderables.Get(2)
	assert.Equal(t, EnemyColor, r.Color)

	crate, ok := w.Pushables.Get(3)
	require.True(t, ok)
	assert.Equal(t, 20, crate.Weight)

	pos, ok := w.Positions.Get(4)
	require.True(t, ok)
	assert.Equal(t, engine.Position{X: 2, Y: 2}, pos)
	assert.False(t, w.Attributes.Has(4))
}

func TestBuildCharacterStats(t *testing.T) {
	def := sampleDefinition()
	def.Entities[0].Properties["hp"] = 12
	built, err := Build(def)
	require.NoError(t, err)

	stats, ok := built.World.Stats.Get(1)
	require.True(t, ok)
	assert.Equal(t, 12, stats.HP)
	assert.Equal(t, 12, stats.MaxHP)
}

func TestBuildFailsFast(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Definition)
	}{
		{"character without attributes", func(d *Definition) { delete(d.Entities[0].Properties, "attributes") }},
		{"npc without name", func(d *Definition) { delete(d.Entities[1].Properties, "name") }},
		{"crate without weight", func(d *Definition) { d.Entities[2].Properties = nil }},
		{"unknown type", func(d *Definition) { d.Entities[3].Type = "dragon" }},
		{"empty grid", func(d *Definition) { d.Grid = GridConfig{} }},
		{"stacked placements", func(d *Definition) { d.Entities[2].Position = d.Entities[1].Position }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := sampleDefinition()
			tt.mutate(def)
			_, err := Build(def)
			assert.ErrorIs(t, err, ErrInvalidScenario)
		})
	}

	_, err := Build(nil)
	assert.ErrorIs(t, err, ErrInvalidScenario)
}

func TestBuildRejectsOccupiedCell(t *testing.T) {
	def := sampleDefinition()
	def.Entities[2].Position = engine.Position{X: 0, Y: 1}

	built, err := Build(def)
	assert.Nil(t, built)
	require.ErrorIs(t, err, ErrInvalidScenario)
	assert.Contains(t, err.Error(), "entity 2 shares (0,1) with entity 0")
}

func TestRulesOverride(t *testing.T) {
	def := sampleDefinition()
	assert.Equal(t, engine.DefaultRules(), def.Rules())

	def.Config.Rules = &engine.Rules{MoveCost: 10, EnforceMovementRange: true}
	rules := def.Rules()
	assert.Equal(t, 10, rules.MoveCost)
	assert.Equal(t, engine.PushCost, rules.PushCost)
	assert.True(t, rules.EnforceMovementRange)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(sampleDefinition()))

	def := sampleDefinition()
	def.MinigameType = "racing"
	def.Entities[0].Position = engine.Position{X: 0, Y: 7}
	def.Entities[2].Position = engine.Position{X: 5, Y: 5}
	def.WinConditions = append(def.WinConditions, WinCondition{Type: "vibes"})
	def.Config.MaxTurns = -1

	problems := Problems(def)
	assert.Len(t, problems, 5)
	assert.Error(t, Validate(def))
}

func TestResolutionMode(t *testing.T) {
	def := sampleDefinition()
	assert.Equal(t, engine.ModeImmediate, def.ResolutionMode())
	assert.NoError(t, Validate(def))

	def.Config.Resolution = engine.ModeBatch
	assert.Equal(t, engine.ModeBatch, def.ResolutionMode())
	assert.NoError(t, Validate(def))

	def.Config.Resolution = "simultaneous"
	assert.Contains(t, Problems(def), `config.resolution must be immediate or batch, got "simultaneous"`)
}

func TestValidateRequiresCharacter(t *testing.T) {
	def := sampleDefinition()
	def.Entities = def.Entities[1:]
	assert.Contains(t, Problems(def), "scenario must place at least one character")
}

func TestValidateGridLimits(t *testing.T) {
	def := sampleDefinition()
	def.Grid.Width = 2
	assert.Error(t, Validate(def))

	def.Grid = GridConfig{Width: 6, Height: 6}
	def.Entities = def.Entities[:1]
	assert.Error(t, Validate(def), "default bands do not fit a 6 row grid")

	def.Grid.Entrance = &engine.ZoneBand{MinY: 1, MaxY: 2}
	def.Grid.Exit = &engine.ZoneBand{MinY: 3, MaxY: 4}
	assert.NoError(t, Validate(def))
}

func TestProperties(t *testing.T) {
	p := Properties{"a": 3.0, "b": 2.5, "c": "x", "d": 7}
	n, ok := p.Int("a")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	_, ok = p.Int("b")
	assert.False(t, ok)
	assert.Equal(t, 9, p.IntOr("missing", 9))
	assert.Equal(t, 7, p.IntOr("d", 9))
	assert.Equal(t, "x", p.String("c"))
	assert.Equal(t, "", p.String("a"))

	_, ok = p.Attributes()
	assert.False(t, ok)
}

func TestLoadJSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	def := sampleDefinition()

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Marshal(def, format)
			require.NoError(t, err)
			path := filepath.Join(dir, "warehouse."+string(format))
			require.NoError(t, os.WriteFile(path, data, 0644))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, def.Name, loaded.Name)
			assert.Equal(t, TypeObstacle, loaded.MinigameType)
			assert.Equal(t, 20, loaded.Config.MaxTurns)

			built, err := Build(loaded)
			require.NoError(t, err)
			attrs, _ := built.World.Attributes.Get(1)
			assert.Equal(t, 5, attrs.Mov)
		})
	}
}

func TestLoadDefaultsIDFromFilename(t *testing.T) {
	dir := t.TempDir()
	yamlDoc := `
name: Courtyard
description: Walk out
minigameType: combat
grid: {width: 10, height: 10}
entities:
  - type: character
    position: {x: 1, y: 2}
    properties:
      name: Ash
      attributes: {pwr: 3, mov: 4, inf: 1, cre: 1}
winConditions:
  - type: allCharactersInExit
    description: Leave
`
	path := filepath.Join(dir, "courtyard.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0644))

	def, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "courtyard", def.ID)
	assert.Equal(t, engine.Position{X: 1, Y: 2}, def.Entities[0].Position)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "scenario.toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"name": "x", "grid": {"width": 1, "height": 1}}`), 0644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrInvalidScenario)
}

func TestLoadJobAndManifest(t *testing.T) {
	dir := t.TempDir()
	job := Job{ID: "delivery", Name: "Delivery", Description: "Two stops", Scenarios: []Definition{*sampleDefinition()}}
	second := sampleDefinition()
	second.ID = "warehouse-2"
	job.Scenarios = append(job.Scenarios, *second)

	data, err := json.MarshalIndent(job, "", "  ")
	require.NoError(t, err)
	jobPath := filepath.Join(dir, "delivery.json")
	require.NoError(t, os.WriteFile(jobPath, data, 0644))

	loaded, err := LoadJob(jobPath)
	require.NoError(t, err)
	require.Len(t, loaded.Scenarios, 2)
	got, ok := loaded.Scenario("warehouse-2")
	require.True(t, ok)
	assert.Equal(t, "Warehouse", got.Name)

	manifest := `{"jobs": [{"id": "delivery", "name": "Delivery", "description": "Two stops", "file": "delivery.json"}]}`
	manifestPath := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(manifestPath, []byte(manifest), 0644))
	m, err := LoadManifest(manifestPath)
	require.NoError(t, err)
	entry, ok := m.Find("delivery")
	require.True(t, ok)
	assert.Equal(t, "delivery.json", entry.File)
	_, ok = m.Find("other")
	assert.False(t, ok)
}

func TestValidateJob(t *testing.T) {
	job := &Job{ID: "j", Name: "J"}
	assert.Error(t, ValidateJob(job))

	job.Scenarios = []Definition{*sampleDefinition(), *sampleDefinition()}
	assert.Error(t, ValidateJob(job), "duplicate scenario ids")

	job.Scenarios[1].ID = "other"
	assert.NoError(t, ValidateJob(job))
}
