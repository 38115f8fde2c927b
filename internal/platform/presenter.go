package platform

import "github.com/vovakirdan/handmade/internal/core"

// Presenter shows a finished frame.
type Presenter interface {
	Present(buf *core.PixelBuffer) error
}

// HeadlessPresenter discards frames, keeping a count and the checksum of the
// most recent one.
type HeadlessPresenter struct {
	Frames       int
	LastChecksum uint32
	// OnFrame, if set, is called with each frame's checksum.
	OnFrame func(frame int, checksum uint32)
}

func (p *HeadlessPresenter) Present(buf *core.PixelBuffer) error {
	p.LastChecksum = buf.Checksum()
	if p.OnFrame != nil {
		p.OnFrame(p.Frames, p.LastChecksum)
	}
	p.Frames++
	return nil
}
