// Package window presents the platform loop in a desktop window through
// Ebitengine. Builds tagged headless leave it out.
package window

import (
	"github.com/vovakirdan/handmade/internal/core"
)

// ToRGBA converts buf into tightly packed RGBA bytes in dst, growing dst
// when it is too small, and returns it. Row padding in buf is skipped.
func ToRGBA(dst []byte, buf *core.PixelBuffer) []byte {
	w, h := buf.Width(), buf.Height()
	n := w * h * 4
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]

	i := 0
	for y := 0; y < h; y++ {
		row := buf.Row(y)
		for x := 0; x < w; x++ {
			p := row[x*core.BytesPerPixel:]
			// Memory order is B, G, R, X.
			dst[i] = p[2]
			dst[i+1] = p[1]
			dst[i+2] = p[0]
			dst[i+3] = 0xFF
			i += 4
		}
	}
	return dst
}
