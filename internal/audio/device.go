package audio

import (
	"errors"
)

// ErrCursorUnavailable is returned when a device cannot report its cursors.
var ErrCursorUnavailable = errors.New("audio: cursor position unavailable")

// Device is a circular sound buffer whose cursors advance asynchronously.
//
// Cursors returns byte offsets in [0, Size()). Lock grants exclusive access to
// size bytes starting at offset, split into at most two regions when the span
// wraps; the caller must Unlock the same regions before locking again.
type Device interface {
	Cursors() (play, write uint32, err error)
	Lock(offset, size uint32) (Regions, error)
	Unlock(r Regions) error
	Size() uint32
}

// Regions are the one or two contiguous spans a Lock covers.
type Regions struct {
	First  []byte
	Second []byte
}

// Len is the combined length of both spans.
func (r Regions) Len() int { return len(r.First) + len(r.Second) }

// NullDevice never reports cursors, so audio is skipped every frame.
// It stands in when no output device is configured or available.
type NullDevice struct {
	size uint32
}

// NewNullDevice returns a device that claims size bytes of buffer.
func NewNullDevice(size uint32) *NullDevice {
	return &NullDevice{size: size}
}

func (d *NullDevice) Cursors() (uint32, uint32, error) { return 0, 0, ErrCursorUnavailable }

func (d *NullDevice) Lock(offset, size uint32) (Regions, error) {
	return Regions{}, ErrCursorUnavailable
}

func (d *NullDevice) Unlock(Regions) error { return nil }

func (d *NullDevice) Size() uint32 { return d.size }
