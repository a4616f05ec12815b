// Package registry provides a global registry of named board presets.
// Presets register themselves in init(), allowing the CLI, the SSH server
// and the HTTP API to discover them without hardcoded lists.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tui-match3/internal/board"
)

// DefaultPreset is used when no preset is requested.
const DefaultPreset = "classic"

// Preset is a named board shape.
type Preset struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Size        int    `json:"size"`
	Colors      int    `json:"colors"`
	Description string `json:"description"`
}

var (
	presets = make(map[string]Preset)
	mu      sync.RWMutex
)

func init() {
	Register(Preset{ID: "classic", Title: "Classic", Size: 8, Colors: 6, Description: "8x8 board, six colors"})
	Register(Preset{ID: "compact", Title: "Compact", Size: 6, Colors: 5, Description: "6x6 board, five colors"})
	Register(Preset{ID: "large", Title: "Large", Size: 10, Colors: 6, Description: "10x10 board, six colors"})
	Register(Preset{ID: "relaxed", Title: "Relaxed", Size: 8, Colors: 4, Description: "8x8 board, four colors, long cascades"})
}

// Register adds a preset to the registry.
// Panics if the ID is taken or the board shape is unplayable.
func Register(p Preset) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := presets[p.ID]; exists {
		panic(fmt.Sprintf("registry: preset %q already registered", p.ID))
	}
	if p.Size < board.MinSize || p.Colors < board.MinColors || p.Colors > board.MaxColors {
		panic(fmt.Sprintf("registry: preset %q has invalid board %dx%d/%d", p.ID, p.Size, p.Size, p.Colors))
	}

	presets[p.ID] = p
}

// List returns all registered presets, sorted by ID.
func List() []Preset {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Preset, 0, len(presets))
	for _, p := range presets {
		result = append(result, p)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Get returns a preset by its ID.
// Returns an error if the ID is not registered.
func Get(id string) (Preset, error) {
	mu.RLock()
	defer mu.RUnlock()

	p, ok := presets[id]
	if !ok {
		return Preset{}, fmt.Errorf("registry: unknown preset %q", id)
	}
	return p, nil
}

// Exists checks if a preset with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := presets[id]
	return ok
}
