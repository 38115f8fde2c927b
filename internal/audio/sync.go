package audio

import (
	"encoding/binary"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/handmade/internal/core"
)

// Generator produces the requested number of sample frames into sb.
type Generator func(sb *core.SoundBuffer)

// FrameAudio records what the synchronizer did in one frame.
type FrameAudio struct {
	Skipped  bool
	Resynced bool

	PlayCursor  uint32
	WriteCursor uint32
	Window      Window
	SampleCount int

	// Distance between the cursors, i.e. the device's own latency.
	LatencyBytes   uint32
	LatencySeconds float64
}

// Synchronizer keeps the device ring filled one frame ahead.
type Synchronizer struct {
	device     Device
	out        SoundOutput
	frameBytes uint32
	valid      bool
	scratch    core.SoundBuffer
	logger     *log.Logger

	skips   int
	resyncs int
}

// NewSynchronizer binds out to device. frameBytes is the audio played per
// frame period. The first successful cursor query resyncs the running
// sample index to the write cursor.
func NewSynchronizer(device Device, out SoundOutput, frameBytes uint32, logger *log.Logger) (*Synchronizer, error) {
	if err := out.Validate(); err != nil {
		return nil, err
	}
	if device.Size() != out.BufferSize {
		return nil, fmt.Errorf("%w: device holds %d bytes, output expects %d", ErrInvalidOutput, device.Size(), out.BufferSize)
	}
	if frameBytes == 0 || frameBytes*2 > out.BufferSize {
		return nil, fmt.Errorf("%w: %d bytes per frame does not fit twice in buffer %d", ErrInvalidOutput, frameBytes, out.BufferSize)
	}
	if logger == nil {
		logger = log.Default()
	}
	frames := int(out.BufferSize / out.BytesPerSample)
	return &Synchronizer{
		device:     device,
		out:        out,
		frameBytes: frameBytes,
		logger:     logger,
		scratch: core.SoundBuffer{
			SamplesPerSecond: int(out.SamplesPerSecond),
			Samples:          make([]int16, frames*core.SoundChannels),
		},
	}, nil
}

// Output returns the current sound output state.
func (s *Synchronizer) Output() SoundOutput { return s.out }

// Valid reports whether the last cursor query succeeded.
func (s *Synchronizer) Valid() bool { return s.valid }

// Skips is the number of frames whose audio was dropped.
func (s *Synchronizer) Skips() int { return s.skips }

// Resyncs is the number of invalid-to-valid transitions.
func (s *Synchronizer) Resyncs() int { return s.resyncs }

// Fill queries the cursors, asks gen for exactly the samples that take the
// ring up to this frame's target and copies them in. When the cursors are
// unavailable the frame's audio is skipped and gen is not called.
func (s *Synchronizer) Fill(gen Generator) FrameAudio {
	var fa FrameAudio

	play, write, err := s.query(&fa)
	if err != nil {
		s.skip(&fa, err)
		return fa
	}

	w := Plan(s.out, s.frameBytes, play, write)
	fa.Window = w
	fa.SampleCount = w.SampleCount(s.out.BytesPerSample)

	s.scratch.SampleCount = fa.SampleCount
	s.scratch.Silence()
	gen(&s.scratch)

	if w.BytesToWrite == 0 {
		return fa
	}

	regions, err := s.device.Lock(w.ByteToLock, w.BytesToWrite)
	if err != nil {
		s.skip(&fa, err)
		return fa
	}
	next := s.copyRegion(regions.First, 0)
	s.copyRegion(regions.Second, next)
	if err := s.device.Unlock(regions); err != nil {
		s.logger.Warn("audio unlock failed", "err", err)
	}
	return fa
}

// Observe repeats the cursor query after present. It only updates validity
// and resyncs; nothing is written.
func (s *Synchronizer) Observe() FrameAudio {
	var fa FrameAudio
	if _, _, err := s.query(&fa); err != nil {
		fa.Skipped = true
	}
	return fa
}

func (s *Synchronizer) query(fa *FrameAudio) (play, write uint32, err error) {
	play, write, err = s.device.Cursors()
	if err != nil {
		s.valid = false
		return 0, 0, err
	}

	if !s.valid {
		s.out.RunningSampleIndex = write / s.out.BytesPerSample
		s.valid = true
		s.resyncs++
		fa.Resynced = true
		s.logger.Debug("audio resync", "write", write, "sample", s.out.RunningSampleIndex)
	}

	fa.PlayCursor = play
	fa.WriteCursor = write
	fa.LatencyBytes = LatencyBytes(s.out.BufferSize, play, write)
	fa.LatencySeconds = float64(fa.LatencyBytes/s.out.BytesPerSample) / float64(s.out.SamplesPerSecond)
	return play, write, nil
}

func (s *Synchronizer) skip(fa *FrameAudio, err error) {
	s.logger.Debug("audio skipped", "err", err)
	s.valid = false
	s.skips++
	fa.Skipped = true
}

// copyRegion writes sample frames from the scratch buffer, starting at
// frame index from, into dst and returns the next unread frame index.
func (s *Synchronizer) copyRegion(dst []byte, from int) int {
	i := from
	for off := 0; off+core.BytesPerSampleFrame <= len(dst); off += core.BytesPerSampleFrame {
		left, right := s.scratch.Frame(i)
		binary.LittleEndian.PutUint16(dst[off:], uint16(left))
		binary.LittleEndian.PutUint16(dst[off+2:], uint16(right))
		s.out.RunningSampleIndex++
		i++
	}
	return i
}
