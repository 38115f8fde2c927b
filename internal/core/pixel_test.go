package core

import "testing"

func TestNewPixelBuffer(t *testing.T) {
	b := NewPixelBuffer(64, 32)

	if b.Width() != 64 {
		t.Errorf("Width() = %d, expected 64", b.Width())
	}
	if b.Height() != 32 {
		t.Errorf("Height() = %d, expected 32", b.Height())
	}
	if b.Pitch() != 64*BytesPerPixel {
		t.Errorf("Pitch() = %d, expected %d", b.Pitch(), 64*BytesPerPixel)
	}
	if len(b.Bytes()) != 64*32*4 {
		t.Errorf("len(Bytes()) = %d, expected %d", len(b.Bytes()), 64*32*4)
	}
}

func TestPixelBufferMemoryLayout(t *testing.T) {
	b := NewPixelBuffer(4, 4)
	b.Set(1, 2, RGB(0xAA, 0xBB, 0xCC))

	off := 2*b.Pitch() + 1*BytesPerPixel
	got := b.Bytes()[off : off+4]

	// Blue is the lowest byte in memory.
	expected := []byte{0xCC, 0xBB, 0xAA, 0x00}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("bytes = % x, expected % x", got, expected)
		}
	}
}

func TestPixelBufferSetAt(t *testing.T) {
	b := NewPixelBuffer(10, 10)

	b.Set(5, 5, ColorRed)
	if b.At(5, 5) != ColorRed {
		t.Errorf("At(5, 5) = %#08x, expected red", uint32(b.At(5, 5)))
	}

	// Out of bounds should be silent
	b.Set(-1, 0, ColorRed)
	b.Set(100, 0, ColorRed)
	b.Set(0, -1, ColorRed)
	b.Set(0, 100, ColorRed)

	if b.At(-1, 0) != ColorBlack {
		t.Error("Out of bounds At should return black")
	}
}

func TestPixelBufferFillRectClips(t *testing.T) {
	b := NewPixelBuffer(8, 8)
	b.FillRect(NewRect(-4, -4, 6, 6), ColorWhite)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			inside := x < 2 && y < 2
			if inside && b.At(x, y) != ColorWhite {
				t.Errorf("expected white at (%d, %d)", x, y)
			}
			if !inside && b.At(x, y) != ColorBlack {
				t.Errorf("expected black at (%d, %d)", x, y)
			}
		}
	}
}

func TestPixelBufferChecksum(t *testing.T) {
	a := NewPixelBuffer(16, 16)
	b := NewPixelBuffer(16, 16)

	if a.Checksum() != b.Checksum() {
		t.Error("identical buffers should have equal checksums")
	}

	b.Set(3, 3, ColorGreen)
	if a.Checksum() == b.Checksum() {
		t.Error("different buffers should have different checksums")
	}

	a.CopyFrom(b)
	if a.Checksum() != b.Checksum() {
		t.Error("CopyFrom should produce an identical buffer")
	}
}
