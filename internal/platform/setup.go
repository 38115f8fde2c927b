package platform

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/handmade/internal/config"
	"github.com/vovakirdan/handmade/internal/module"
	"github.com/vovakirdan/handmade/internal/registry"
)

// ModuleSetup describes the module a loop starts with.
type ModuleSetup struct {
	ID string
	// Script is a source file watched for changes. When set, Loader builds
	// the module from it instead of the registry.
	Script string
	Loader module.Loader
	// WorldPath is a world YAML file; empty searches the usual config
	// locations.
	WorldPath string
}

// ModuleSetupFrom reads the module section of cfg.
func ModuleSetupFrom(cfg config.ModuleConfig, loader module.Loader) ModuleSetup {
	return ModuleSetup{
		ID:        cfg.ID,
		Script:    cfg.Script,
		Loader:    loader,
		WorldPath: cfg.World,
	}
}

// NewModuleSlot builds the starting module and the slot that holds it. A
// watched script that fails to load leaves the stub in place and is retried
// on the next change, so only registry failures are returned.
func NewModuleSlot(ms ModuleSetup, logger *log.Logger) (*module.Slot, *module.ScriptWatcher, error) {
	if logger == nil {
		logger = log.Default()
	}

	if ms.Script != "" && ms.Loader != nil {
		slot := module.NewSlot(nil)
		watcher := module.NewScriptWatcher(config.ExpandHome(ms.Script), ms.Loader, slot, logger)
		if err := watcher.Load(); err != nil {
			logger.Warn("starting with stub module", "err", err)
		}
		slot.Commit()
		return slot, watcher, nil
	}

	wc, err := config.LoadWorld(ms.WorldPath)
	if err != nil {
		return nil, nil, err
	}
	w, err := wc.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("platform: cannot build world: %w", err)
	}

	m, err := registry.Create(ms.ID, registry.Options{World: w, Script: ms.Script})
	if err != nil {
		return nil, nil, err
	}
	return module.NewSlot(m), nil, nil
}
