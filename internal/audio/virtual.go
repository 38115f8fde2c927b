package audio

import (
	"time"

	"github.com/vovakirdan/handmade/internal/timing"
)

// VirtualDevice is a Ring drained in real time by a clock instead of a
// sound card. It gives headless runs and remote sessions the same cursor
// behaviour a real device has.
type VirtualDevice struct {
	*Ring

	clock          timing.Clock
	bytesPerSecond uint64
	bytesPerSample uint64
	start          time.Time
	consumed       uint64
}

// NewVirtualDevice creates a virtual device for out with the given
// write-cursor latency. A nil clock uses the system clock.
func NewVirtualDevice(out SoundOutput, latency uint32, clock timing.Clock) *VirtualDevice {
	if clock == nil {
		clock = timing.SystemClock{}
	}
	return &VirtualDevice{
		Ring:           NewRing(out.BufferSize, latency),
		clock:          clock,
		bytesPerSecond: uint64(out.BytesPerSecond()),
		bytesPerSample: uint64(out.BytesPerSample),
		start:          clock.Now(),
	}
}

// Cursors advances the play cursor to the current clock time and reports
// both cursors.
func (d *VirtualDevice) Cursors() (play, write uint32, err error) {
	elapsed := d.clock.Now().Sub(d.start)
	if elapsed > 0 {
		due := uint64(elapsed) * d.bytesPerSecond / uint64(time.Second)
		due -= due % d.bytesPerSample
		if due > d.consumed {
			d.Ring.Advance(due - d.consumed)
			d.consumed = due
		}
	}
	return d.Ring.Cursors()
}
