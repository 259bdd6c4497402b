// Package campus loads the per-campus building catalog and resolves
// free-text room codes against it.
package campus

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/campusgo/campusnav/internal/models"
)

// Catalog holds the building metadata for one or more campuses. It is loaded
// once at startup and read-only afterwards. Iteration order follows load
// order, which also defines the resolver's default-building fallback.
type Catalog struct {
	mu        sync.RWMutex
	buildings []models.Building
	byAbbr    map[string]int
	loaded    bool
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{byAbbr: make(map[string]int)}
}

// Load reads buildings from a JSON array file and appends them. Call once
// per campus file during bootstrap.
func (c *Catalog) Load(filepath string) error {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return fmt.Errorf("reading building catalog: %w", err)
	}

	var buildings []models.Building
	if err := json.Unmarshal(data, &buildings); err != nil {
		return fmt.Errorf("parsing building catalog: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range buildings {
		c.append(b)
	}
	c.loaded = true
	return nil
}

// Add appends one building. Used by tests and inline catalogs.
func (c *Catalog) Add(b models.Building) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.append(b)
	c.loaded = true
}

func (c *Catalog) append(b models.Building) {
	key := strings.ToUpper(b.Abbreviation)
	if _, exists := c.byAbbr[key]; !exists {
		c.byAbbr[key] = len(c.buildings)
	}
	c.buildings = append(c.buildings, b)
}

// ByAbbreviation returns the building with the given code, matched
// case-insensitively.
func (c *Catalog) ByAbbreviation(abbr string) (models.Building, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byAbbr[strings.ToUpper(abbr)]
	if !ok {
		return models.Building{}, false
	}
	return c.buildings[i], true
}

// First returns the first loaded building. The resolver uses it as the
// deterministic default when no abbreviation matches.
func (c *Catalog) First() (models.Building, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.buildings) == 0 {
		return models.Building{}, false
	}
	return c.buildings[0], true
}

// All returns a copy of the buildings in load order.
func (c *Catalog) All() []models.Building {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Building, len(c.buildings))
	copy(out, c.buildings)
	return out
}

// ByCampus returns the buildings belonging to one campus.
func (c *Catalog) ByCampus(campus string) []models.Building {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []models.Building
	for _, b := range c.buildings {
		if b.Campus == campus {
			out = append(out, b)
		}
	}
	return out
}

// Count returns the number of loaded buildings.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.buildings)
}

// IsLoaded returns true if data has been loaded.
func (c *Catalog) IsLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}
