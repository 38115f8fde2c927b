//go:build headless

package audio

import "errors"

// OtoDevice is unavailable in headless builds.
type OtoDevice struct {
	*Ring
}

// NewOtoDevice always fails in headless builds.
func NewOtoDevice(out SoundOutput, latency uint32) (*OtoDevice, error) {
	return nil, errors.New("audio: output device not available in headless builds")
}

// Close is a no-op.
func (d *OtoDevice) Close() error { return nil }
