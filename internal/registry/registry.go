// Package registry provides a global registry of simulation modules.
// Modules register themselves in init() functions, allowing the platform
// to discover and instantiate them without hardcoded dependencies.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/handmade/internal/core"
	"github.com/vovakirdan/handmade/internal/world"
)

// Module is the narrow interface between the platform and a simulation.
//
// A module keeps all of its state in the Memory arenas the platform hands it,
// so the platform can snapshot and restore it for record/replay and swap
// module implementations between frames without losing state.
type Module interface {
	// ID returns a unique identifier for this module (e.g., "handmade").
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// UpdateAndRender advances the simulation by one frame and draws it.
	UpdateAndRender(mem *core.Memory, in *core.GameInput, buf *core.PixelBuffer)

	// GetSoundSamples fills exactly sb.SampleCount stereo frames.
	GetSoundSamples(mem *core.Memory, sb *core.SoundBuffer)
}

// Options carries what a factory may need to build a module.
type Options struct {
	World  *world.World
	Script string
}

// ModuleInfo contains metadata about a registered module.
type ModuleInfo struct {
	ID    string
	Title string
}

// Factory creates a new instance of a module.
type Factory func(opts Options) (Module, error)

// ErrUnknownModule is returned by Create for unregistered ids.
var ErrUnknownModule = errors.New("registry: unknown module")

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a module factory to the registry.
// Typically called from a module's init() function.
// Panics if a module with the same ID is already registered.
func Register(info ModuleInfo, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[info.ID]; exists {
		panic(fmt.Sprintf("registry: module %q already registered", info.ID))
	}

	factories[info.ID] = f
	titles[info.ID] = info.Title
}

// List returns information about all registered modules, sorted by ID.
func List() []ModuleInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]ModuleInfo, 0, len(factories))
	for id := range factories {
		result = append(result, ModuleInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a module by its ID.
func Create(id string, opts Options) (Module, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownModule, id)
	}

	m, err := f(opts)
	if err != nil {
		return nil, fmt.Errorf("registry: cannot create module %q: %w", id, err)
	}
	return m, nil
}

// Exists checks if a module with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
