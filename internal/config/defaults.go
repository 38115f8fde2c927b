package config

import (
	_ "embed"
)

//go:embed defaults/engine.yaml
var defaultEngineYAML []byte

//go:embed defaults/world.yaml
var defaultWorldYAML []byte

// DefaultEngineConfig returns the built-in engine configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Video: VideoConfig{
			Width:  960,
			Height: 540,
			Scale:  1,
		},
		Timing: TimingConfig{
			RefreshHz:     60,
			Divisor:       2,
			SleepGranular: true,
		},
		Audio: AudioConfig{
			Device:           "oto",
			SamplesPerSecond: 48000,
			BufferSeconds:    1,
			SafetyDivisor:    4,
			LatencyMs:        20,
		},
		Memory: MemoryConfig{
			PermanentKB: 64,
			TransientKB: 256,
		},
		Input: InputConfig{
			Deadzone:       7849,
			StickThreshold: 0.5,
			KeyHoldMs:      120,
		},
		Replay: ReplayConfig{
			Path: "~/.handmade/loop.hmi",
		},
		Module: ModuleConfig{
			ID: "handmade",
		},
		Storage: StorageConfig{
			Path: "~/.handmade/handmade.db",
		},
		Server: ServerConfig{
			Address:            ":23234",
			IdleTimeoutMinutes: 30,
		},
	}
}

// GetDefaultYAML returns the embedded default YAML for a config name.
func GetDefaultYAML(name string) []byte {
	switch name {
	case "engine":
		return defaultEngineYAML
	case "world":
		return defaultWorldYAML
	default:
		return nil
	}
}
