// Package progression tracks which leadership levels are unlocked and which
// one is active for the current session.
package progression

import (
	"fmt"
	"sort"
	"sync"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/catalog"
)

// State holds session-scoped level progression. The unlocked set is always
// a prefix of the catalog order and the active level is always unlocked.
type State struct {
	mu       sync.Mutex
	catalog  *catalog.Catalog
	unlocked map[int]bool
	active   int
}

// New creates a State with only the first catalog level unlocked and active.
func New(c *catalog.Catalog) *State {
	first := c.First().ID
	return &State{
		catalog:  c,
		unlocked: map[int]bool{first: true},
		active:   first,
	}
}

// SelectLevel makes id the active level. Selecting a level that is not yet
// unlocked is an unlock attempt. Returns whether id is now active.
func (s *State) SelectLevel(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.catalog.Get(id); err != nil {
		return false, fmt.Errorf("select level: %w", err)
	}
	if s.unlocked[id] {
		s.active = id
		return true, nil
	}
	return s.unlock(id), nil
}

// AttemptUnlock unlocks id and makes it active if every lower level is
// already unlocked. A gated attempt is a silent no-op: it returns false and
// leaves the state untouched. Re-unlocking an unlocked level only selects it.
func (s *State) AttemptUnlock(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.catalog.Get(id); err != nil {
		return false, fmt.Errorf("unlock level: %w", err)
	}
	if s.unlocked[id] {
		s.active = id
		return true, nil
	}
	return s.unlock(id), nil
}

// unlock is the single place levels enter the unlocked set. Callers hold mu.
func (s *State) unlock(id int) bool {
	for _, lower := range s.catalog.Lower(id) {
		if !s.unlocked[lower] {
			return false
		}
	}
	s.unlocked[id] = true
	s.active = id
	return true
}

// BoundPromptFor returns the evaluation prompt template for id.
func (s *State) BoundPromptFor(id int) (string, error) {
	l, err := s.catalog.Get(id)
	if err != nil {
		return "", err
	}
	return l.PromptTemplate, nil
}

// Active returns the active level ID.
func (s *State) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ActiveLevel returns the active level.
func (s *State) ActiveLevel() catalog.Level {
	l, _ := s.catalog.Get(s.Active())
	return l
}

// IsUnlocked reports whether id is unlocked.
func (s *State) IsUnlocked(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked[id]
}

// Unlocked returns the unlocked level IDs in ascending order.
func (s *State) Unlocked() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(s.unlocked))
	for id := range s.unlocked {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Catalog returns the level catalog backing this state.
func (s *State) Catalog() *catalog.Catalog {
	return s.catalog
}
