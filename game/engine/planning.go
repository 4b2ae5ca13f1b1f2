package engine

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// PathStatus is the lifecycle state of a planned path.
type PathStatus string

const (
	PathPlanning    PathStatus = "planning"
	PathReady       PathStatus = "ready"
	PathExecuting   PathStatus = "executing"
	PathComplete    PathStatus = "complete"
	PathBlocked     PathStatus = "blocked"
	PathConflicting PathStatus = "conflicting"
)

// PlannedPath is the ordered list of cells a character intends to walk
// through, plus how many of them have been executed.
type PlannedPath struct {
	CharacterID EntityID   `json:"character_id"`
	Steps       []Position `json:"steps"`
	CurrentStep int        `json:"current_step"`
	Status      PathStatus `json:"status"`
}

// HasSteps reports whether anything has been planned
func (p *PlannedPath) HasSteps() bool {
	return len(p.Steps) > 0
}

// IsComplete reports whether every planned step has executed
func (p *PlannedPath) IsComplete() bool {
	return p.CurrentStep >= len(p.Steps)
}

// NextStep returns the next cell to move into
func (p *PlannedPath) NextStep() (Position, bool) {
	if p.IsComplete() {
		return Position{}, false
	}
	return p.Steps[p.CurrentStep], true
}

// CurrentPosition is where the character stands given the executed steps
func (p *PlannedPath) CurrentPosition(world *World) (Position, bool) {
	if p.CurrentStep > 0 && p.CurrentStep <= len(p.Steps) {
		return p.Steps[p.CurrentStep-1], true
	}
	return world.Positions.Get(p.CharacterID)
}

// LastPlanned is the final planned cell, or the current position when empty
func (p *PlannedPath) LastPlanned(world *World) (Position, bool) {
	if len(p.Steps) > 0 {
		return p.Steps[len(p.Steps)-1], true
	}
	return world.Positions.Get(p.CharacterID)
}

// positionAtStep is where the path puts its character after step steps.
func (p *PlannedPath) positionAtStep(step int, world *World) (Position, bool) {
	switch {
	case step == 0 || len(p.Steps) == 0:
		return world.Positions.Get(p.CharacterID)
	case len(p.Steps) >= step:
		return p.Steps[step-1], true
	default:
		return p.Steps[len(p.Steps)-1], true
	}
}

// OccupancyAtStep projects where every tracked character stands after step
// planned steps. Characters with a path are placed by it, later paths
// overwriting earlier ones; characters with Attributes but no path stay put
// and only claim cells that are still free.
func OccupancyAtStep(step int, paths []*PlannedPath, world *World) map[Position]EntityID {
	return occupancyExcluding(step, paths, world, NoEntity)
}

func occupancyExcluding(step int, paths []*PlannedPath, world *World, exclude EntityID) map[Position]EntityID {
	occupancy := make(map[Position]EntityID)
	pathed := mapset.New[EntityID]()
	for _, path := range paths {
		pathed.Put(path.CharacterID)
		if path.CharacterID == exclude {
			continue
		}
		if pos, ok := path.positionAtStep(step, world); ok {
			occupancy[pos] = path.CharacterID
		}
	}

	for _, id := range world.Characters() {
		if id == exclude || pathed.Has(id) {
			continue
		}
		pos, ok := world.Positions.Get(id)
		if !ok {
			continue
		}
		if _, taken := occupancy[pos]; !taken {
			occupancy[pos] = id
		}
	}
	return occupancy
}

// IsOccupiedAtStep reports whether someone other than exclude is projected on
// pos after step steps.
func IsOccupiedAtStep(step int, pos Position, paths []*PlannedPath, world *World, exclude EntityID) bool {
	_, ok := occupancyExcluding(step, paths, world, exclude)[pos]
	return ok
}

// ConflictKind classifies a planned step.
type ConflictKind string

const (
	ConflictNone      ConflictKind = ""
	ConflictOccupancy ConflictKind = "occupancy"
	ConflictSwap      ConflictKind = "swap"
)

// Conflict describes a clash between a character's step and another plan.
type Conflict struct {
	CharacterID EntityID     `json:"character_id"`
	Kind        ConflictKind `json:"type"`
	With        EntityID     `json:"conflicting_character_id"`
	Step        int          `json:"step_index"`
}

// Exists reports whether there is a conflict
func (c Conflict) Exists() bool {
	return c.Kind != ConflictNone
}

// CheckStepConflict classifies appending proposed to the mover's plan. The
// step index is the length of the existing plan plus one. It is a swap when
// another character leaves proposed at that step heading into the cell the
// mover is vacating, and an occupancy conflict when anyone else is projected
// on proposed after the step.
func CheckStepConflict(mover EntityID, proposed Position, paths []*PlannedPath, world *World) Conflict {
	var existing *PlannedPath
	temp := make([]*PlannedPath, 0, len(paths)+1)
	for _, p := range paths {
		if p.CharacterID == mover {
			existing = p
			extended := *p
			extended.Steps = append(append([]Position(nil), p.Steps...), proposed)
			temp = append(temp, &extended)
			continue
		}
		temp = append(temp, p)
	}
	step := 1
	if existing != nil {
		step = len(existing.Steps) + 1
	} else {
		temp = append(temp, &PlannedPath{CharacterID: mover, Steps: []Position{proposed}, Status: PathReady})
	}
	return classify(mover, step, proposed, temp, world)
}

func classify(mover EntityID, step int, pos Position, paths []*PlannedPath, world *World) Conflict {
	vacating, hasVacating := world.Positions.Get(mover)
	for _, p := range paths {
		if p.CharacterID == mover {
			vacating, hasVacating = p.positionAtStep(step-1, world)
			break
		}
	}

	if hasVacating {
		for _, other := range paths {
			if other.CharacterID == mover || len(other.Steps) < step {
				continue
			}
			before, ok := other.positionAtStep(step-1, world)
			if ok && before == pos && other.Steps[step-1] == vacating {
				return Conflict{CharacterID: mover, Kind: ConflictSwap, With: other.CharacterID, Step: step}
			}
		}
	}

	if occupant, ok := occupancyExcluding(step, paths, world, mover)[pos]; ok {
		return Conflict{CharacterID: mover, Kind: ConflictOccupancy, With: occupant, Step: step}
	}
	return Conflict{CharacterID: mover, Step: step}
}

// AllConflicts checks every planned step of every path against the others.
func AllConflicts(paths []*PlannedPath, world *World) []Conflict {
	var conflicts []Conflict
	for _, path := range paths {
		for i, pos := range path.Steps {
			if c := classify(path.CharacterID, i+1, pos, paths, world); c.Exists() {
				conflicts = append(conflicts, c)
			}
		}
	}
	return conflicts
}

// HasAnyConflict reports whether any planned step clashes
func HasAnyConflict(paths []*PlannedPath, world *World) bool {
	return len(AllConflicts(paths, world)) > 0
}

// ErrStepConflict is returned by Planner.AddStep when the step clashes with
// another plan.
var ErrStepConflict = errors.New("planned step conflicts with another character")

// StepOutcome records one executed (or refused) planned step.
type StepOutcome struct {
	CharacterID EntityID `json:"character_id"`
	Step        int      `json:"step"`
	From        Position `json:"from"`
	To          Position `json:"to"`
	Moved       bool     `json:"moved"`
	Reason      string   `json:"reason,omitempty"`
}

// Planner collects paths for every character and executes them together.
// It does not use the AP ledger.
type Planner struct {
	world *World
	grid  *Grid
	paths []*PlannedPath
}

// NewPlanner creates an empty planner over the world
func NewPlanner(world *World, grid *Grid) *Planner {
	return &Planner{world: world, grid: grid}
}

// Path returns the plan of a character, if any
func (p *Planner) Path(id EntityID) *PlannedPath {
	for _, path := range p.paths {
		if path.CharacterID == id {
			return path
		}
	}
	return nil
}

// Paths returns the plans in the order they were started
func (p *Planner) Paths() []*PlannedPath {
	return p.paths
}

// AddStep appends a step to the character's plan. The step must follow a
// movement pattern from the previous planned cell and must not clash with
// any other plan at the same step index.
func (p *Planner) AddStep(id EntityID, to Position) (Conflict, error) {
	attrs, ok := p.world.Attributes.Get(id)
	if !ok {
		return Conflict{}, fmt.Errorf("entity %d cannot plan movement: no attributes", id)
	}
	path := p.Path(id)
	if path == nil {
		path = &PlannedPath{CharacterID: id, Status: PathPlanning}
	}
	from, ok := path.LastPlanned(p.world)
	if !ok {
		return Conflict{}, fmt.Errorf("entity %d: %w", id, ErrNoPosition)
	}

	step := len(path.Steps) + 1
	blockedByObject := func(pos Position) bool {
		for _, other := range p.world.Positions.Entities() {
			if other == id || p.world.Attributes.Has(other) {
				continue
			}
			if at, _ := p.world.Positions.Get(other); at == pos {
				return true
			}
		}
		return false
	}
	midOccupied := func(pos Position) bool {
		return blockedByObject(pos) || IsOccupiedAtStep(step, pos, p.paths, p.world, id)
	}
	if err := ValidateStepWith(p.grid, from, to, attrs.Mov, blockedByObject, midOccupied); err != nil {
		return Conflict{}, err
	}

	conflict := CheckStepConflict(id, to, p.paths, p.world)
	if conflict.Exists() {
		return conflict, fmt.Errorf("%w: %s with entity %d at step %d", ErrStepConflict, conflict.Kind, conflict.With, conflict.Step)
	}

	if p.Path(id) == nil {
		p.paths = append(p.paths, path)
	}
	path.Steps = append(path.Steps, to)
	path.Status = PathPlanning
	return conflict, nil
}

// RemoveLastStep drops the most recent planned step of the character
func (p *Planner) RemoveLastStep(id EntityID) bool {
	path := p.Path(id)
	if path == nil || len(path.Steps) <= path.CurrentStep {
		return false
	}
	path.Steps = path.Steps[:len(path.Steps)-1]
	return true
}

// MarkReady flags the character's plan as finished
func (p *Planner) MarkReady(id EntityID) {
	if path := p.Path(id); path != nil {
		path.Status = PathReady
	}
}

// ClearPath forgets the plan of one character
func (p *Planner) ClearPath(id EntityID) {
	for i, path := range p.paths {
		if path.CharacterID == id {
			p.paths = append(p.paths[:i], p.paths[i+1:]...)
			return
		}
	}
}

// Clear forgets every plan
func (p *Planner) Clear() {
	p.paths = nil
}

// MaxSteps returns the length of the longest plan
func (p *Planner) MaxSteps() int {
	longest := 0
	for _, path := range p.paths {
		if len(path.Steps) > longest {
			longest = len(path.Steps)
		}
	}
	return longest
}

// ExecuteAll advances every plan one step index at a time. Within a step,
// moves are retried until no further character can advance, so a character
// may follow another into a cell being vacated in the same step. Characters
// that cannot advance are marked blocked and stop.
func (p *Planner) ExecuteAll() []StepOutcome {
	var outcomes []StepOutcome
	for _, path := range p.paths {
		if path.HasSteps() && path.Status != PathBlocked {
			path.Status = PathExecuting
		}
	}

	for step := 1; step <= p.MaxSteps(); step++ {
		pending := make([]*PlannedPath, 0, len(p.paths))
		for _, path := range p.paths {
			if path.Status == PathExecuting && !path.IsComplete() && path.CurrentStep == step-1 {
				pending = append(pending, path)
			}
		}

		for progressed := true; progressed && len(pending) > 0; {
			progressed = false
			remaining := pending[:0]
			for _, path := range pending {
				to, _ := path.NextStep()
				if p.world.IsOccupied(to, path.CharacterID) {
					remaining = append(remaining, path)
					continue
				}
				from, _ := p.world.Positions.Get(path.CharacterID)
				MoveCharacter(p.world, path.CharacterID, to)
				if facing := to.Sub(from).Normalize(); facing.IsFacing() {
					p.world.Facings.Set(path.CharacterID, facing)
				}
				path.CurrentStep++
				outcomes = append(outcomes, StepOutcome{CharacterID: path.CharacterID, Step: step, From: from, To: to, Moved: true})
				progressed = true
			}
			pending = remaining
		}

		for _, path := range pending {
			to, _ := path.NextStep()
			from, _ := p.world.Positions.Get(path.CharacterID)
			path.Status = PathBlocked
			outcomes = append(outcomes, StepOutcome{
				CharacterID: path.CharacterID,
				Step:        step,
				From:        from,
				To:          to,
				Reason:      fmt.Sprintf("cell (%d,%d) occupied", to.X, to.Y),
			})
		}
	}

	for _, path := range p.paths {
		if path.Status == PathExecuting && path.IsComplete() {
			path.Status = PathComplete
		}
	}
	return outcomes
}
