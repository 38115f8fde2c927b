// Package audio keeps a circular sound buffer filled just ahead of a device
// whose play and write cursors move on their own.
//
// Every frame the Synchronizer reads the cursors, works out how many bytes
// have to be written so the audio lands on the next frame boundary (or past
// the write cursor on high-latency devices), asks the module for exactly that
// many samples and copies them into the ring.
package audio

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/handmade/internal/core"
)

// ErrInvalidOutput is returned for sound output parameters the ring math
// cannot work with.
var ErrInvalidOutput = errors.New("audio: invalid sound output")

// SoundOutput is the synchronizer's view of the ring buffer.
type SoundOutput struct {
	SamplesPerSecond uint32
	BytesPerSample   uint32
	BufferSize       uint32
	SafetyBytes      uint32

	// RunningSampleIndex counts sample frames written since the last resync.
	// It wraps modulo 2^32.
	RunningSampleIndex uint32
}

// NewSoundOutput describes a 16-bit stereo ring holding bufferSeconds of audio.
func NewSoundOutput(samplesPerSecond int, bufferSeconds float64, safetyBytes uint32) (SoundOutput, error) {
	out := SoundOutput{
		SamplesPerSecond: uint32(samplesPerSecond),
		BytesPerSample:   core.BytesPerSampleFrame,
		SafetyBytes:      safetyBytes,
	}
	frames := uint32(float64(samplesPerSecond) * bufferSeconds)
	out.BufferSize = frames * out.BytesPerSample
	if err := out.Validate(); err != nil {
		return SoundOutput{}, err
	}
	return out, nil
}

// Validate checks the output is usable.
func (o SoundOutput) Validate() error {
	if o.SamplesPerSecond == 0 {
		return fmt.Errorf("%w: sample rate is zero", ErrInvalidOutput)
	}
	if o.BytesPerSample == 0 {
		return fmt.Errorf("%w: bytes per sample is zero", ErrInvalidOutput)
	}
	if o.BufferSize == 0 || o.BufferSize%o.BytesPerSample != 0 {
		return fmt.Errorf("%w: buffer size %d is not a positive multiple of %d", ErrInvalidOutput, o.BufferSize, o.BytesPerSample)
	}
	if o.SafetyBytes >= o.BufferSize {
		return fmt.Errorf("%w: safety margin %d does not fit in buffer %d", ErrInvalidOutput, o.SafetyBytes, o.BufferSize)
	}
	return nil
}

// BytesPerSecond is the ring's consumption rate.
func (o SoundOutput) BytesPerSecond() uint32 {
	return o.SamplesPerSecond * o.BytesPerSample
}

// FrameBytes returns how many bytes the device plays during one frame
// period, rounded to whole sample frames.
func (o SoundOutput) FrameBytes(frame time.Duration) uint32 {
	samples := (int64(o.SamplesPerSecond)*int64(frame) + int64(time.Second)/2) / int64(time.Second)
	return uint32(samples) * o.BytesPerSample
}

// Window is the region of the ring one frame writes.
type Window struct {
	ByteToLock   uint32
	TargetCursor uint32
	BytesToWrite uint32

	// Unwrapped positions the target was derived from.
	ExpectedFrameBoundary uint32
	SafeWriteCursor       uint32

	// Latent is set when the device's write cursor (plus the safety margin)
	// is already past the next frame boundary.
	Latent bool
}

// SampleCount is the number of sample frames the window covers.
func (w Window) SampleCount(bytesPerSample uint32) int {
	return int(w.BytesToWrite / bytesPerSample)
}

// Plan computes where this frame's audio goes given the device cursors and
// the number of bytes played per frame. It has no side effects.
func Plan(out SoundOutput, frameBytes, play, write uint32) Window {
	size := uint64(out.BufferSize)
	bps := uint64(out.BytesPerSample)
	p := uint64(play) % size
	wr := uint64(write) % size

	byteToLock := (uint64(out.RunningSampleIndex) * bps) % size

	unwrappedWrite := wr
	if unwrappedWrite < p {
		unwrappedWrite += size
	}

	boundary := p + uint64(frameBytes)
	safeWrite := unwrappedWrite + uint64(out.SafetyBytes)

	w := Window{
		ByteToLock:            uint32(byteToLock),
		ExpectedFrameBoundary: uint32(boundary),
		SafeWriteCursor:       uint32(safeWrite),
		Latent:                safeWrite >= boundary,
	}

	var target uint64
	if w.Latent {
		target = safeWrite + uint64(frameBytes)
	} else {
		target = boundary + uint64(frameBytes)
	}
	target %= size
	target -= target % bps
	w.TargetCursor = uint32(target)

	if byteToLock > target {
		w.BytesToWrite = uint32(size - byteToLock + target)
	} else {
		w.BytesToWrite = uint32(target - byteToLock)
	}
	return w
}

// LatencyBytes is the distance from the play cursor forward to the write
// cursor.
func LatencyBytes(size, play, write uint32) uint32 {
	if write < play {
		return size - play + write
	}
	return write - play
}
