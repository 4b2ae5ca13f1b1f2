package engine

import (
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// Scheduler orders characters by movement score each round and tracks whose
// turn is active. It never reorders on its own; the caller starts each round.
type Scheduler struct {
	round       int
	order       []EntityID
	activeIndex int
	passed      mapset.Set[EntityID]
	started     bool
	complete    bool
}

// NewScheduler creates a scheduler with no round started
func NewScheduler() *Scheduler {
	return &Scheduler{
		round:  1,
		passed: mapset.New[EntityID](),
	}
}

// StartRound snapshots every character's mov score and sorts them by mov
// descending, ties broken by ascending id.
func (s *Scheduler) StartRound(characterIDs func() []EntityID, world *World) {
	ids := characterIDs()
	movs := make(map[EntityID]int, len(ids))
	for _, id := range ids {
		if attrs, ok := world.Attributes.Get(id); ok {
			movs[id] = attrs.Mov
		}
	}

	order := make([]EntityID, len(ids))
	copy(order, ids)
	sort.SliceStable(order, func(i, j int) bool {
		if movs[order[i]] != movs[order[j]] {
			return movs[order[i]] > movs[order[j]]
		}
		return order[i] < order[j]
	})

	s.order = order
	s.activeIndex = 0
	s.passed.Clear()
	s.started = true
	s.complete = false
}

// PassTurn marks the active character as passed and advances to the next one
// that has not passed. It returns true when this pass completed the round, in
// which case the round counter is incremented and StartRound must be called to
// continue.
func (s *Scheduler) PassTurn() bool {
	if !s.started || s.complete || len(s.order) == 0 {
		return s.complete
	}

	s.passed.Put(s.order[s.activeIndex])

	if s.passed.Size() >= len(s.order) {
		s.round++
		s.passed.Clear()
		s.complete = true
		return true
	}

	for i := 1; i <= len(s.order); i++ {
		next := (s.activeIndex + i) % len(s.order)
		if !s.passed.Has(s.order[next]) {
			s.activeIndex = next
			break
		}
	}
	return false
}

// IsRoundComplete stays true from the pass that ended a round until the next
// StartRound.
func (s *Scheduler) IsRoundComplete() bool {
	return s.complete
}

// ActiveCharacter returns the character whose turn it is
func (s *Scheduler) ActiveCharacter() (EntityID, bool) {
	if !s.started || s.complete || len(s.order) == 0 {
		return NoEntity, false
	}
	return s.order[s.activeIndex], true
}

// IsActive reports whether id is the active character
func (s *Scheduler) IsActive(id EntityID) bool {
	active, ok := s.ActiveCharacter()
	return ok && active == id
}

// HasPassed reports whether the character already passed this round
func (s *Scheduler) HasPassed(id EntityID) bool {
	return s.passed.Has(id)
}

// Round returns the 1-indexed round counter
func (s *Scheduler) Round() int {
	return s.round
}

// Order returns a copy of the current turn order
func (s *Scheduler) Order() []EntityID {
	out := make([]EntityID, len(s.order))
	copy(out, s.order)
	return out
}

// Started reports whether any round has been started
func (s *Scheduler) Started() bool {
	return s.started
}

// Reset returns the scheduler to its initial state
func (s *Scheduler) Reset() {
	s.round = 1
	s.order = nil
	s.activeIndex = 0
	s.passed.Clear()
	s.started = false
	s.complete = false
}
