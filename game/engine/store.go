package engine

import "sort"

// Store holds at most one component of type T per entity.
type Store[T any] struct {
	components map[EntityID]T
}

// NewStore creates an empty component store
func NewStore[T any]() *Store[T] {
	return &Store[T]{components: make(map[EntityID]T)}
}

// Set adds or replaces the component for the entity
func (s *Store[T]) Set(e EntityID, c T) {
	s.components[e] = c
}

// Get returns the component and whether it exists
func (s *Store[T]) Get(e EntityID) (T, bool) {
	c, ok := s.components[e]
	return c, ok
}

// Has reports whether the entity carries this component
func (s *Store[T]) Has(e EntityID) bool {
	_, ok := s.components[e]
	return ok
}

// Remove drops the component, if any
func (s *Store[T]) Remove(e EntityID) {
	delete(s.components, e)
}

// Len returns the number of entities with this component
func (s *Store[T]) Len() int {
	return len(s.components)
}

// Entities returns the ids carrying this component in ascending order
func (s *Store[T]) Entities() []EntityID {
	ids := make([]EntityID, 0, len(s.components))
	for id := range s.components {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
