package engine

import "fmt"

// Encounter bundles one instantiated scenario: the world, its grid, the party
// and the controller driving turns.
type Encounter struct {
	World      *World
	Grid       *Grid
	Controller *Controller
	Party      []EntityID
}

// NewEncounter wires a controller over an already populated world
func NewEncounter(world *World, grid *Grid, party []EntityID, opts ...ControllerOption) (*Encounter, error) {
	if world == nil {
		return nil, fmt.Errorf("world cannot be nil")
	}
	if grid == nil {
		return nil, fmt.Errorf("grid cannot be nil")
	}
	c := NewController(opts...)
	if err := c.Rules().Validate(); err != nil {
		return nil, err
	}
	return &Encounter{
		World:      world,
		Grid:       grid,
		Controller: c,
		Party:      party,
	}, nil
}

// PartyIDs returns the party members
func (e *Encounter) PartyIDs() []EntityID {
	return e.Party
}

// Start begins the first round with every character that has Attributes
func (e *Encounter) Start() {
	e.Controller.StartRound(e.World.Characters, e.World)
}

// Execute runs an action for the actor
func (e *Encounter) Execute(actor EntityID, action Action) ExecutionResult {
	return e.Controller.ExecuteImmediate(e.World, e.Grid, actor, action)
}

// IsVictory reports whether the whole party stands in the exit zone
func (e *Encounter) IsVictory() bool {
	return e.Controller.CheckWinCondition(e.World, e.Grid, e.PartyIDs)
}

// ActiveIsAdversary reports whether an NPC holds the turn
func (e *Encounter) ActiveIsAdversary() bool {
	active, ok := e.Controller.ActiveCharacter()
	return ok && e.World.NPCs.Has(active)
}
