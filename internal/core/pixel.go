package core

import (
	"encoding/binary"
	"hash/crc32"
)

// BytesPerPixel is the only pixel format the platform produces:
// 32-bit 0xXXRRGGBB, little-endian in memory.
const BytesPerPixel = 4

// PixelBuffer is a top-down bitmap the simulation module draws into.
// It replaces raw pointer arithmetic with a stride-aware byte slice and
// bounds-checked accessors.
type PixelBuffer struct {
	width  int
	height int
	pitch  int // Bytes per row; may exceed width*BytesPerPixel
	memory []byte
}

// NewPixelBuffer allocates a tightly packed buffer.
func NewPixelBuffer(width, height int) *PixelBuffer {
	b := &PixelBuffer{}
	b.Resize(width, height)
	return b
}

// Resize reallocates the buffer. Content is discarded.
func (b *PixelBuffer) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	b.width = width
	b.height = height
	b.pitch = width * BytesPerPixel
	b.memory = make([]byte, b.pitch*height)
}

// Width returns the buffer width in pixels.
func (b *PixelBuffer) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *PixelBuffer) Height() int { return b.height }

// Pitch returns the number of bytes between the starts of two rows.
func (b *PixelBuffer) Pitch() int { return b.pitch }

// BytesPerPixel returns the pixel size in bytes.
func (b *PixelBuffer) BytesPerPixel() int { return BytesPerPixel }

// Bounds returns the rectangle covered by the buffer.
func (b *PixelBuffer) Bounds() Rect {
	return NewRect(0, 0, b.width, b.height)
}

// Bytes exposes the raw memory for presenters.
func (b *PixelBuffer) Bytes() []byte { return b.memory }

// Row returns the bytes of row y, or nil when y is out of range.
func (b *PixelBuffer) Row(y int) []byte {
	if y < 0 || y >= b.height {
		return nil
	}
	start := y * b.pitch
	return b.memory[start : start+b.width*BytesPerPixel]
}

// Set writes a pixel. Out-of-bounds coordinates are silently ignored.
func (b *PixelBuffer) Set(x, y int, c Color) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	off := y*b.pitch + x*BytesPerPixel
	binary.LittleEndian.PutUint32(b.memory[off:], uint32(c))
}

// At reads a pixel. Returns black for out-of-bounds coordinates.
func (b *PixelBuffer) At(x, y int) Color {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return ColorBlack
	}
	off := y*b.pitch + x*BytesPerPixel
	return Color(binary.LittleEndian.Uint32(b.memory[off:]))
}

// Clear fills the entire buffer with a single color.
func (b *PixelBuffer) Clear(c Color) {
	b.FillRect(b.Bounds(), c)
}

// FillRect fills r clipped to the buffer.
func (b *PixelBuffer) FillRect(r Rect, c Color) {
	r = r.Intersect(b.Bounds())
	if r.Empty() {
		return
	}
	for y := r.Y; y < r.Bottom(); y++ {
		row := b.memory[y*b.pitch:]
		for x := r.X; x < r.Right(); x++ {
			binary.LittleEndian.PutUint32(row[x*BytesPerPixel:], uint32(c))
		}
	}
}

// FillRectF fills the rectangle spanning [minX,maxX)x[minY,maxY) after
// rounding the float edges to the nearest pixel.
func (b *PixelBuffer) FillRectF(minX, minY, maxX, maxY float64, c Color) {
	x0 := int(RoundToInt32(minX))
	y0 := int(RoundToInt32(minY))
	x1 := int(RoundToInt32(maxX))
	y1 := int(RoundToInt32(maxY))
	b.FillRect(NewRect(x0, y0, x1-x0, y1-y0), c)
}

// Checksum returns a CRC32 over the visible pixels, row by row.
// Used to compare frames for replay determinism.
func (b *PixelBuffer) Checksum() uint32 {
	h := crc32.NewIEEE()
	for y := 0; y < b.height; y++ {
		//nolint:errcheck // hash.Hash never returns an error
		h.Write(b.Row(y))
	}
	return h.Sum32()
}

// CopyFrom copies pixels from src into b, resizing b if needed.
func (b *PixelBuffer) CopyFrom(src *PixelBuffer) {
	if b.width != src.width || b.height != src.height {
		b.Resize(src.width, src.height)
	}
	for y := 0; y < src.height; y++ {
		copy(b.Row(y), src.Row(y))
	}
}
