package audio

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var errNotLocked = errors.New("audio: ring is not locked")

// Ring is a software circular buffer for backends that pull a byte stream.
//
// Read consumes from the play cursor and advances it; the write cursor is
// always latency bytes ahead of the play cursor. The mutex is held from
// Lock until Unlock so the consumer never reads a half-written span.
type Ring struct {
	mu      sync.Mutex
	buf     []byte
	play    uint32
	latency uint32
	locked  atomic.Bool
}

// NewRing creates a ring of size bytes whose write cursor trails the play
// cursor by latency bytes.
func NewRing(size, latency uint32) *Ring {
	if latency >= size {
		latency = size - 1
	}
	return &Ring{
		buf:     make([]byte, size),
		latency: latency,
	}
}

// Size returns the ring length in bytes.
func (r *Ring) Size() uint32 { return uint32(len(r.buf)) }

// Latency returns the distance between the play and write cursors.
func (r *Ring) Latency() uint32 { return r.latency }

// Cursors reports the play cursor and the write cursor.
func (r *Ring) Cursors() (play, write uint32, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursorsLocked()
}

func (r *Ring) cursorsLocked() (play, write uint32, err error) {
	size := uint32(len(r.buf))
	return r.play, (r.play + r.latency) % size, nil
}

// Lock returns the regions covering [offset, offset+size) with wraparound.
// On success the ring stays locked until Unlock.
func (r *Ring) Lock(offset, size uint32) (Regions, error) {
	n := uint32(len(r.buf))
	if offset >= n || size > n {
		return Regions{}, fmt.Errorf("audio: lock %d bytes at %d outside ring of %d", size, offset, n)
	}

	r.mu.Lock()
	r.locked.Store(true)

	end := offset + size
	if end <= n {
		return Regions{First: r.buf[offset:end]}, nil
	}
	return Regions{
		First:  r.buf[offset:],
		Second: r.buf[:end-n],
	}, nil
}

// Unlock releases a Lock.
func (r *Ring) Unlock(Regions) error {
	if !r.locked.CompareAndSwap(true, false) {
		return errNotLocked
	}
	r.mu.Unlock()
	return nil
}

// Read copies len(p) bytes starting at the play cursor and advances it.
// It never blocks on an empty ring: stale data is replayed, as a hardware
// buffer would.
func (r *Ring) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := uint32(len(r.buf))
	for done := 0; done < len(p); {
		c := copy(p[done:], r.buf[r.play:])
		done += c
		r.play = (r.play + uint32(c)) % n
	}
	return len(p), nil
}

// Advance moves the play cursor forward by count bytes without copying.
func (r *Ring) Advance(count uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := uint64(len(r.buf))
	r.play = uint32((uint64(r.play) + count%n) % n)
}
