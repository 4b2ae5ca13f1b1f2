package scenario

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/wricardo/grid-tactics/game/engine"
)

var (
	ErrInvalidScenario   = errors.New("invalid scenario")
	ErrUnsupportedFormat = errors.New("unsupported scenario format")
)

// Grid size limits accepted by Validate.
const (
	MinGridSize = 3
	MaxGridSize = 64
)

// MinigameType selects the rules wrapper a scenario is played under.
type MinigameType string

const (
	TypeCombat   MinigameType = "combat"
	TypeObstacle MinigameType = "obstacle"
	TypeTrading  MinigameType = "trading"
)

// EntityType is the kind of a placement.
type EntityType string

const (
	EntityCharacter EntityType = "character"
	EntityNPC       EntityType = "npc"
	EntityEnemy     EntityType = "enemy"
	EntityCrate     EntityType = "crate"
	EntityTrap      EntityType = "trap"
	EntityObstacle  EntityType = "obstacle"
)

// WinConditionType names a declared victory rule.
type WinConditionType string

const (
	WinAllInExit        WinConditionType = "allCharactersInExit"
	WinAllAlive         WinConditionType = "allCharactersAlive"
	WinDefeatAllEnemies WinConditionType = "defeatAllEnemies"
	WinCustom           WinConditionType = "custom"
)

// Definition is the declarative description of one encounter.
type Definition struct {
	ID               string            `json:"id" yaml:"id"`
	Name             string            `json:"name" yaml:"name"`
	Description      string            `json:"description" yaml:"description"`
	TestInstructions string            `json:"testInstructions,omitempty" yaml:"testInstructions,omitempty"`
	MinigameType     MinigameType      `json:"minigameType" yaml:"minigameType"`
	RequiredStats    []StatRequirement `json:"requiredStats,omitempty" yaml:"requiredStats,omitempty"`
	Grid             GridConfig        `json:"grid" yaml:"grid"`
	Entities         []Placement       `json:"entities" yaml:"entities"`
	WinConditions    []WinCondition    `json:"winConditions" yaml:"winConditions"`
	Config           Settings          `json:"config,omitempty" yaml:"config,omitempty"`
}

// GridConfig sizes the grid. Nil bands fall back to the engine defaults.
type GridConfig struct {
	Width    int              `json:"width" yaml:"width"`
	Height   int              `json:"height" yaml:"height"`
	Entrance *engine.ZoneBand `json:"entrance,omitempty" yaml:"entrance,omitempty"`
	Exit     *engine.ZoneBand `json:"exit,omitempty" yaml:"exit,omitempty"`
}

// Bands returns the entrance and exit bands with defaults applied
func (g GridConfig) Bands() (engine.ZoneBand, engine.ZoneBand) {
	entrance, exit := engine.DefaultEntranceBand, engine.DefaultExitBand
	if g.Entrance != nil {
		entrance = *g.Entrance
	}
	if g.Exit != nil {
		exit = *g.Exit
	}
	return entrance, exit
}

// Placement puts one entity on the grid.
type Placement struct {
	Type       EntityType      `json:"type" yaml:"type"`
	Position   engine.Position `json:"position" yaml:"position"`
	Properties Properties      `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// WinCondition is a declared victory rule. Only some types are enforced.
type WinCondition struct {
	Type        WinConditionType `json:"type" yaml:"type"`
	Description string           `json:"description" yaml:"description"`
}

// StatRequirement is a minimum attribute score recommended for a scenario.
type StatRequirement struct {
	Attribute string `json:"attribute" yaml:"attribute"`
	Minimum   int    `json:"minimum" yaml:"minimum"`
}

// Settings carries scenario-type specific options.
type Settings struct {
	MaxTurns     int           `json:"maxTurns,omitempty" yaml:"maxTurns,omitempty"`
	AutoAI       bool          `json:"autoAI,omitempty" yaml:"autoAI,omitempty"`
	AllowFleeing bool          `json:"allowFleeing,omitempty" yaml:"allowFleeing,omitempty"`
	Rules        *engine.Rules `json:"rules,omitempty" yaml:"rules,omitempty"`
	// Resolution selects immediate (default) or batch turn resolution.
	Resolution engine.ResolutionMode `json:"resolution,omitempty" yaml:"resolution,omitempty"`
}

// ResolutionMode returns the configured mode, immediate when unset
func (d *Definition) ResolutionMode() engine.ResolutionMode {
	if d.Config.Resolution == "" {
		return engine.ModeImmediate
	}
	return d.Config.Resolution
}

// Rules returns the engine defaults with the scenario override applied
func (d *Definition) Rules() engine.Rules {
	rules := engine.DefaultRules()
	if d.Config.Rules != nil {
		rules = rules.Merge(*d.Config.Rules)
	}
	return rules
}

// HasWinCondition reports whether the scenario declares the given condition
func (d *Definition) HasWinCondition(t WinConditionType) bool {
	for _, wc := range d.WinConditions {
		if wc.Type == t {
			return true
		}
	}
	return false
}

// Properties is the loosely typed property bag of a placement. Numbers may
// arrive as float64 (JSON) or int (YAML).
type Properties map[string]interface{}

// String returns a string property or ""
func (p Properties) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Int returns an integral numeric property
func (p Properties) Int(key string) (int, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	return toInt(v)
}

// IntOr returns the property or def when it is absent or not a number
func (p Properties) IntOr(key string, def int) int {
	if n, ok := p.Int(key); ok {
		return n
	}
	return def
}

// Attributes decodes the "attributes" property. Missing scores are zero.
func (p Properties) Attributes() (engine.Attributes, bool) {
	switch v := p["attributes"].(type) {
	case engine.Attributes:
		return v, true
	case map[string]interface{}:
		var a engine.Attributes
		a.Pwr, _ = toInt(v["pwr"])
		a.Mov, _ = toInt(v["mov"])
		a.Inf, _ = toInt(v["inf"])
		a.Cre, _ = toInt(v["cre"])
		return a, true
	}
	return engine.Attributes{}, false
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}

// Job groups scenarios offered together on the job board.
type Job struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	Scenarios   []Definition `json:"scenarios" yaml:"scenarios"`
}

// Scenario finds a scenario of the job by id
func (j *Job) Scenario(id string) (*Definition, bool) {
	for i := range j.Scenarios {
		if j.Scenarios[i].ID == id {
			return &j.Scenarios[i], true
		}
	}
	return nil, false
}

// Manifest lists the job files available in a directory.
type Manifest struct {
	Jobs []ManifestEntry `json:"jobs" yaml:"jobs"`
}

// ManifestEntry points at one job file relative to the manifest.
type ManifestEntry struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	File        string `json:"file" yaml:"file"`
}

// Find returns the manifest entry for a job id
func (m *Manifest) Find(id string) (ManifestEntry, bool) {
	for _, e := range m.Jobs {
		if e.ID == id {
			return e, true
		}
	}
	return ManifestEntry{}, false
}
