package platform

import (
	"fmt"

	"github.com/vovakirdan/handmade/internal/audio"
	"github.com/vovakirdan/handmade/internal/config"
	"github.com/vovakirdan/handmade/internal/timing"
)

// SoundOutputFor derives the ring parameters from the audio and timing config.
// The safety margin is one frame of audio divided by the safety divisor.
func SoundOutputFor(cfg config.EngineConfig) (audio.SoundOutput, uint32, error) {
	probe, err := audio.NewSoundOutput(cfg.Audio.SamplesPerSecond, cfg.Audio.BufferSeconds, 0)
	if err != nil {
		return audio.SoundOutput{}, 0, err
	}
	frameBytes := probe.FrameBytes(cfg.Timing.FrameDuration())
	safety := alignDown(frameBytes/uint32(cfg.Audio.SafetyDivisor), probe.BytesPerSample)

	out, err := audio.NewSoundOutput(cfg.Audio.SamplesPerSecond, cfg.Audio.BufferSeconds, safety)
	if err != nil {
		return audio.SoundOutput{}, 0, err
	}
	return out, frameBytes, nil
}

// LatencyBytesFor converts the configured device latency into ring bytes.
func LatencyBytesFor(cfg config.EngineConfig, out audio.SoundOutput) uint32 {
	bytes := uint64(cfg.Audio.LatencyMs) * uint64(out.BytesPerSecond()) / 1000
	return alignDown(uint32(bytes), out.BytesPerSample)
}

// OpenDevice opens the audio device named in the config. A "none" device has
// no cursors, so every frame's audio is skipped.
func OpenDevice(cfg config.EngineConfig, out audio.SoundOutput, clock timing.Clock) (audio.Device, error) {
	latency := LatencyBytesFor(cfg, out)
	switch cfg.Audio.Device {
	case "oto":
		d, err := audio.NewOtoDevice(out, latency)
		if err != nil {
			return nil, err
		}
		return d, nil
	case "virtual":
		return audio.NewVirtualDevice(out, latency, clock), nil
	case "none", "":
		return audio.NewNullDevice(out.BufferSize), nil
	default:
		return nil, fmt.Errorf("platform: unknown audio device %q", cfg.Audio.Device)
	}
}

func alignDown(v, to uint32) uint32 {
	if to == 0 {
		return v
	}
	return v - v%to
}
