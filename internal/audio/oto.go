//go:build !headless

package audio

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/vovakirdan/handmade/internal/core"
)

// OtoDevice plays a Ring through the system audio output. The oto player
// pulls from the ring on its own goroutine, which is what moves the play
// cursor.
type OtoDevice struct {
	*Ring

	ctx    *oto.Context
	player *oto.Player
}

// NewOtoDevice opens the default output for out. latency is the distance
// kept between the play and write cursors and also sizes oto's own buffer.
func NewOtoDevice(out SoundOutput, latency uint32) (*OtoDevice, error) {
	bufferTime := time.Duration(uint64(latency) * uint64(time.Second) / uint64(out.BytesPerSecond()))

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(out.SamplesPerSecond),
		ChannelCount: core.SoundChannels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   bufferTime,
	})
	if err != nil {
		return nil, fmt.Errorf("audio: cannot open output device: %w", err)
	}
	<-ready

	d := &OtoDevice{
		Ring: NewRing(out.BufferSize, latency),
		ctx:  ctx,
	}
	d.player = ctx.NewPlayer(d.Ring)
	d.player.SetBufferSize(int(latency))
	d.player.Play()
	return d, nil
}

// Cursors fails once the output context has reported an error.
func (d *OtoDevice) Cursors() (play, write uint32, err error) {
	if err := d.ctx.Err(); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrCursorUnavailable, err)
	}
	return d.Ring.Cursors()
}

// Close stops playback.
func (d *OtoDevice) Close() error {
	if d.player == nil {
		return nil
	}
	err := d.player.Close()
	d.player = nil
	return err
}
