//go:build headless

package window

import (
	"context"
	"errors"

	"github.com/vovakirdan/handmade/internal/config"
	"github.com/vovakirdan/handmade/internal/core"
	"github.com/vovakirdan/handmade/internal/platform"
)

// ErrUnavailable is returned by Run in headless builds.
var ErrUnavailable = errors.New("window: not available in headless builds")

// Window is a placeholder in headless builds.
type Window struct{}

// New returns a window that cannot be shown.
func New(config.VideoConfig, string, *platform.EventQueue) *Window {
	return &Window{}
}

// Present discards the frame.
func (w *Window) Present(*core.PixelBuffer) error { return nil }

// PollGamepads reports every pad as disconnected.
func (w *Window) PollGamepads(pads *[core.MaxGamepads]platform.PadState) {
	*pads = [core.MaxGamepads]platform.PadState{}
}

// Run always fails in headless builds.
func Run(context.Context, *Window, *platform.Engine) error {
	return ErrUnavailable
}
