package main

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/handmade/internal/config"
	"github.com/vovakirdan/handmade/internal/games/script"
	"github.com/vovakirdan/handmade/internal/platform"
)

// buildEngine creates the module slot for cfg.Module and an engine around
// it. opts supplies the presenter side; Slot, Watcher and Logger are set
// here.
func buildEngine(cfg config.EngineConfig, logger *log.Logger, opts platform.Options) (*platform.Engine, error) {
	slot, watcher, err := platform.NewModuleSlot(platform.ModuleSetupFrom(cfg.Module, script.Load), logger)
	if err != nil {
		return nil, err
	}
	opts.Slot = slot
	opts.Watcher = watcher
	opts.Logger = logger
	return platform.New(cfg, opts)
}

// startReplay applies --record or --playback to a fresh engine.
func startReplay(e *platform.Engine, record, playback bool) error {
	switch {
	case playback:
		return e.StartPlayback()
	case record:
		return e.StartRecording()
	}
	return nil
}
