package catalog

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// ErrNotFound is returned when a level ID is not registered.
var ErrNotFound = errors.New("level not found")

// Catalog is a read-only registry of levels.
type Catalog struct {
	levels []Level
	byID   map[int]int // level ID -> index into levels
}

// New builds a catalog from the given levels. Levels are sorted by ID.
// IDs must be >= 1 and unique, and at least one level is required.
func New(levels ...Level) (*Catalog, error) {
	if err := validateLevels(levels); err != nil {
		return nil, err
	}

	sorted := slices.Clone(levels)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	c := &Catalog{
		levels: sorted,
		byID:   make(map[int]int, len(sorted)),
	}
	for i, l := range sorted {
		c.byID[l.ID] = i
	}
	return c, nil
}

// Get returns the level with the given ID.
func (c *Catalog) Get(id int) (Level, error) {
	i, ok := c.byID[id]
	if !ok {
		return Level{}, fmt.Errorf("level %d: %w", id, ErrNotFound)
	}
	return c.levels[i], nil
}

// All returns every level in ascending ID order.
func (c *Catalog) All() []Level {
	return slices.Clone(c.levels)
}

// IDs returns every level ID in ascending order.
func (c *Catalog) IDs() []int {
	ids := make([]int, len(c.levels))
	for i, l := range c.levels {
		ids[i] = l.ID
	}
	return ids
}

// First returns the lowest-ID level.
func (c *Catalog) First() Level {
	return c.levels[0]
}

// Len returns the number of levels.
func (c *Catalog) Len() int {
	return len(c.levels)
}

// Lower returns the IDs strictly below id, ascending.
func (c *Catalog) Lower(id int) []int {
	var ids []int
	for _, l := range c.levels {
		if l.ID >= id {
			break
		}
		ids = append(ids, l.ID)
	}
	return ids
}

func validateLevels(levels []Level) error {
	if len(levels) == 0 {
		return errors.New("catalog needs at least one level")
	}

	var errs []string
	seen := make(map[int]bool, len(levels))
	for _, l := range levels {
		if l.ID < 1 {
			errs = append(errs, fmt.Sprintf("level %q has invalid ID %d", l.Title, l.ID))
		}
		if seen[l.ID] {
			errs = append(errs, fmt.Sprintf("duplicate level ID: %d", l.ID))
		}
		seen[l.ID] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid catalog: %s", strings.Join(errs, "; "))
	}
	return nil
}
