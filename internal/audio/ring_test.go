package audio

import (
	"testing"
	"time"
)

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time        { return c.now }
func (c *stepClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

func TestRingLockRegions(t *testing.T) {
	r := NewRing(100, 10)

	tests := []struct {
		name                string
		offset, size        uint32
		firstLen, secondLen int
	}{
		{"contiguous", 10, 20, 20, 0},
		{"ends at buffer end", 80, 20, 20, 0},
		{"wraps", 90, 30, 10, 20},
		{"whole buffer", 0, 100, 100, 0},
		{"empty", 50, 0, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			regions, err := r.Lock(tc.offset, tc.size)
			if err != nil {
				t.Fatalf("Lock() failed: %v", err)
			}
			if len(regions.First) != tc.firstLen || len(regions.Second) != tc.secondLen {
				t.Errorf("regions = %d+%d, expected %d+%d", len(regions.First), len(regions.Second), tc.firstLen, tc.secondLen)
			}
			if err := r.Unlock(regions); err != nil {
				t.Errorf("Unlock() failed: %v", err)
			}
		})
	}

	if _, err := r.Lock(100, 1); err == nil {
		t.Error("offset at buffer end should fail")
	}
	if err := r.Unlock(Regions{}); err == nil {
		t.Error("Unlock without Lock should fail")
	}
}

func TestRingReadAdvancesPlayCursor(t *testing.T) {
	r := NewRing(8, 2)
	regions, _ := r.Lock(0, 8)
	copy(regions.First, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	r.Unlock(regions)

	p := make([]byte, 6)
	if n, err := r.Read(p); n != 6 || err != nil {
		t.Fatalf("Read() = %d, %v", n, err)
	}
	play, write, _ := r.Cursors()
	if play != 6 || write != 0 {
		t.Errorf("cursors = (%d, %d), expected (6, 0)", play, write)
	}

	r.Read(p)
	if p[0] != 7 || p[2] != 1 {
		t.Errorf("wrapped read = %v, expected to start at 7 then wrap to 1", p)
	}
	play, _, _ = r.Cursors()
	if play != 4 {
		t.Errorf("play = %d, expected 4", play)
	}
}

func TestVirtualDeviceFollowsClock(t *testing.T) {
	out := testOutput()
	clock := &stepClock{now: time.Unix(100, 0)}
	dev := NewVirtualDevice(out, 1920, clock)

	play, write, err := dev.Cursors()
	if err != nil || play != 0 || write != 1920 {
		t.Fatalf("Cursors() = (%d, %d, %v), expected (0, 1920, nil)", play, write, err)
	}

	clock.Sleep(100 * time.Millisecond)
	play, write, _ = dev.Cursors()
	if play != 19200 || write != 21120 {
		t.Errorf("after 100ms cursors = (%d, %d), expected (19200, 21120)", play, write)
	}

	clock.Sleep(time.Second)
	play, _, _ = dev.Cursors()
	if play != 19200 {
		t.Errorf("after a full buffer period play = %d, expected 19200", play)
	}
}
