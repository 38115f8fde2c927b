// Package config provides YAML-based configuration for the engine and the
// tile world.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// EngineConfig contains everything the platform loop is built from.
type EngineConfig struct {
	Video   VideoConfig   `yaml:"video"`
	Timing  TimingConfig  `yaml:"timing"`
	Audio   AudioConfig   `yaml:"audio"`
	Memory  MemoryConfig  `yaml:"memory"`
	Input   InputConfig   `yaml:"input"`
	Replay  ReplayConfig  `yaml:"replay"`
	Module  ModuleConfig  `yaml:"module"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
}

// VideoConfig defines the back buffer the module draws into.
type VideoConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// Scale is the window zoom factor for the window presenter.
	Scale int `yaml:"scale"`
}

// TimingConfig defines frame pacing.
type TimingConfig struct {
	RefreshHz int `yaml:"refresh_hz"`
	// Divisor is how many refreshes each simulated frame spans.
	Divisor       int  `yaml:"divisor"`
	SleepGranular bool `yaml:"sleep_granular"`
}

// AudioConfig defines the sound ring and its device.
type AudioConfig struct {
	Device           string  `yaml:"device"` // "oto", "virtual" or "none"
	SamplesPerSecond int     `yaml:"samples_per_second"`
	BufferSeconds    float64 `yaml:"buffer_seconds"`
	// SafetyDivisor sets the safety margin to one frame of audio divided by
	// this value.
	SafetyDivisor int `yaml:"safety_divisor"`
	// LatencyMs is the distance between play and write cursors on devices
	// that emulate them.
	LatencyMs int `yaml:"latency_ms"`
}

// MemoryConfig sizes the module's arenas.
type MemoryConfig struct {
	PermanentKB int `yaml:"permanent_kb"`
	TransientKB int `yaml:"transient_kb"`
}

// InputConfig tunes input processing.
type InputConfig struct {
	Deadzone       int     `yaml:"deadzone"`
	StickThreshold float64 `yaml:"stick_threshold"`
	// KeyHoldMs is how long a terminal key counts as held after its last
	// press, since terminals never report releases.
	KeyHoldMs int `yaml:"key_hold_ms"`
}

// ReplayConfig defines where recordings go.
type ReplayConfig struct {
	Path string `yaml:"path"`
}

// ModuleConfig selects the simulation.
type ModuleConfig struct {
	ID     string `yaml:"id"`
	Script string `yaml:"script"`
	// World is a path to a world YAML file; empty uses the built-in world.
	World string `yaml:"world"`
}

// StorageConfig locates the session database.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the SSH server.
type ServerConfig struct {
	Address            string `yaml:"address"`
	HostKeyPath        string `yaml:"host_key_path"`
	IdleTimeoutMinutes int    `yaml:"idle_timeout_minutes"`
}

// FrameDuration returns the target frame period.
func (c TimingConfig) FrameDuration() time.Duration {
	if c.RefreshHz <= 0 || c.Divisor <= 0 {
		return 0
	}
	return time.Duration(int64(time.Second) * int64(c.Divisor) / int64(c.RefreshHz))
}

// Latency returns the configured device latency.
func (c AudioConfig) Latency() time.Duration {
	return time.Duration(c.LatencyMs) * time.Millisecond
}

// Validate rejects values the engine cannot run with.
func (c EngineConfig) Validate() error {
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		return fmt.Errorf("%w: video size %dx%d", ErrInvalidConfig, c.Video.Width, c.Video.Height)
	}
	if c.Timing.RefreshHz <= 0 || c.Timing.Divisor <= 0 {
		return fmt.Errorf("%w: refresh %dHz / %d", ErrInvalidConfig, c.Timing.RefreshHz, c.Timing.Divisor)
	}
	switch c.Audio.Device {
	case "oto", "virtual", "none":
	default:
		return fmt.Errorf("%w: unknown audio device %q", ErrInvalidConfig, c.Audio.Device)
	}
	if c.Audio.SamplesPerSecond <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, c.Audio.SamplesPerSecond)
	}
	if c.Audio.SafetyDivisor <= 0 {
		return fmt.Errorf("%w: safety divisor %d", ErrInvalidConfig, c.Audio.SafetyDivisor)
	}
	if c.Audio.LatencyMs < 0 {
		return fmt.Errorf("%w: negative audio latency", ErrInvalidConfig)
	}
	frame := c.Timing.FrameDuration()
	if time.Duration(c.Audio.BufferSeconds*float64(time.Second)) < 2*frame {
		return fmt.Errorf("%w: audio buffer of %.3fs holds less than two %v frames", ErrInvalidConfig, c.Audio.BufferSeconds, frame)
	}
	if c.Audio.Latency() >= time.Duration(c.Audio.BufferSeconds*float64(time.Second)) {
		return fmt.Errorf("%w: audio latency does not fit in the buffer", ErrInvalidConfig)
	}
	if c.Memory.PermanentKB <= 0 || c.Memory.TransientKB < 0 {
		return fmt.Errorf("%w: memory %dKB/%dKB", ErrInvalidConfig, c.Memory.PermanentKB, c.Memory.TransientKB)
	}
	if c.Input.Deadzone < 0 || c.Input.Deadzone >= 32767 {
		return fmt.Errorf("%w: deadzone %d", ErrInvalidConfig, c.Input.Deadzone)
	}
	if c.Input.StickThreshold <= 0 || c.Input.StickThreshold >= 1 {
		return fmt.Errorf("%w: stick threshold %v", ErrInvalidConfig, c.Input.StickThreshold)
	}
	return nil
}
