package engine

import "sort"

// World owns every entity and its components for one encounter.
type World struct {
	nextID   EntityID
	entities map[EntityID]struct{}

	Positions   *Store[Position]
	Renderables *Store[Renderable]
	Attributes  *Store[Attributes]
	Stats       *Store[Stats]
	Facings     *Store[Direction]
	Pushables   *Store[Pushable]
	NPCs        *Store[NPC]
	Players     *Store[PlayerControlled]
}

// NewWorld creates an empty world
func NewWorld() *World {
	return &World{
		nextID:      1,
		entities:    make(map[EntityID]struct{}),
		Positions:   NewStore[Position](),
		Renderables: NewStore[Renderable](),
		Attributes:  NewStore[Attributes](),
		Stats:       NewStore[Stats](),
		Facings:     NewStore[Direction](),
		Pushables:   NewStore[Pushable](),
		NPCs:        NewStore[NPC](),
		Players:     NewStore[PlayerControlled](),
	}
}

// CreateEntity allocates a fresh id
func (w *World) CreateEntity() EntityID {
	id := w.nextID
	w.nextID++
	w.entities[id] = struct{}{}
	return id
}

// DestroyEntity removes the entity and all of its components. The id is not
// handed out again.
func (w *World) DestroyEntity(id EntityID) {
	if _, ok := w.entities[id]; !ok {
		return
	}
	delete(w.entities, id)
	w.Positions.Remove(id)
	w.Renderables.Remove(id)
	w.Attributes.Remove(id)
	w.Stats.Remove(id)
	w.Facings.Remove(id)
	w.Pushables.Remove(id)
	w.NPCs.Remove(id)
	w.Players.Remove(id)
}

// Exists reports whether id is a live entity
func (w *World) Exists(id EntityID) bool {
	_, ok := w.entities[id]
	return ok
}

// Entities returns all live ids in creation order
func (w *World) Entities() []EntityID {
	ids := make([]EntityID, 0, len(w.entities))
	for id := range w.entities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Count returns the number of live entities
func (w *World) Count() int {
	return len(w.entities)
}

// EntityAt returns the first entity (lowest id) positioned at pos.
func (w *World) EntityAt(pos Position) (EntityID, bool) {
	for _, id := range w.Positions.Entities() {
		if p, _ := w.Positions.Get(id); p == pos {
			return id, true
		}
	}
	return NoEntity, false
}

// IsOccupied reports whether any entity other than exclude stands on pos.
func (w *World) IsOccupied(pos Position, exclude EntityID) bool {
	for id, p := range w.Positions.components {
		if id != exclude && p == pos {
			return true
		}
	}
	return false
}

// Characters returns every entity with Attributes, which is the set that
// takes turns.
func (w *World) Characters() []EntityID {
	return w.Attributes.Entities()
}

// PlayerCharacters returns the party members.
func (w *World) PlayerCharacters() []EntityID {
	return w.Players.Entities()
}

// Adversaries returns the NPC-controlled entities.
func (w *World) Adversaries() []EntityID {
	return w.NPCs.Entities()
}

// IsAlive is false only for entities whose Stats show no hit points left.
// Entities without Stats cannot be defeated.
func (w *World) IsAlive(id EntityID) bool {
	stats, ok := w.Stats.Get(id)
	if !ok {
		return true
	}
	return stats.HP > 0
}
