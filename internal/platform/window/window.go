//go:build !headless

package window

import (
	"context"
	"errors"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/vovakirdan/handmade/internal/config"
	"github.com/vovakirdan/handmade/internal/core"
	"github.com/vovakirdan/handmade/internal/platform"
)

var buttonKeys = map[ebiten.Key]core.Button{
	ebiten.KeyW:          core.ButtonMoveUp,
	ebiten.KeyS:          core.ButtonMoveDown,
	ebiten.KeyA:          core.ButtonMoveLeft,
	ebiten.KeyD:          core.ButtonMoveRight,
	ebiten.KeyArrowUp:    core.ButtonActionUp,
	ebiten.KeyArrowDown:  core.ButtonActionDown,
	ebiten.KeyArrowLeft:  core.ButtonActionLeft,
	ebiten.KeyArrowRight: core.ButtonActionRight,
	ebiten.KeyQ:          core.ButtonLeftShoulder,
	ebiten.KeyE:          core.ButtonRightShoulder,
	ebiten.KeyEscape:     core.ButtonBack,
	ebiten.KeySpace:      core.ButtonStart,
	ebiten.KeyEnter:      core.ButtonStart,
}

var commandKeys = map[ebiten.Key]platform.Command{
	ebiten.KeyL:   platform.CommandToggleRecord,
	ebiten.KeyF10: platform.CommandQuit,
}

var padButtons = []struct {
	button ebiten.StandardGamepadButton
	mask   platform.PadButtons
}{
	{ebiten.StandardGamepadButtonLeftTop, platform.PadDPadUp},
	{ebiten.StandardGamepadButtonLeftBottom, platform.PadDPadDown},
	{ebiten.StandardGamepadButtonLeftLeft, platform.PadDPadLeft},
	{ebiten.StandardGamepadButtonLeftRight, platform.PadDPadRight},
	{ebiten.StandardGamepadButtonCenterRight, platform.PadStart},
	{ebiten.StandardGamepadButtonCenterLeft, platform.PadBack},
	{ebiten.StandardGamepadButtonFrontTopLeft, platform.PadLeftShoulder},
	{ebiten.StandardGamepadButtonFrontTopRight, platform.PadRightShoulder},
	{ebiten.StandardGamepadButtonRightBottom, platform.PadA},
	{ebiten.StandardGamepadButtonRightRight, platform.PadB},
	{ebiten.StandardGamepadButtonRightLeft, platform.PadX},
	{ebiten.StandardGamepadButtonRightTop, platform.PadY},
}

// Window is an ebiten.Game that shows the engine's back buffer and feeds
// keyboard and gamepad input back to it. Ebitengine owns the main goroutine;
// the engine runs on its own and meets the window only through Present,
// PollGamepads and the event queue.
type Window struct {
	width, height int
	scale         int
	title         string
	queue         *platform.EventQueue

	mu    sync.Mutex
	frame []byte
	pads  [core.MaxGamepads]platform.PadState
	dirty bool

	image   *ebiten.Image
	keys    []ebiten.Key
	padIDs  []ebiten.GamepadID
	done    chan struct{}
	closing bool
}

// New creates a window for a back buffer of the configured size.
func New(cfg config.VideoConfig, title string, queue *platform.EventQueue) *Window {
	scale := cfg.Scale
	if scale < 1 {
		scale = 1
	}
	return &Window{
		width:  cfg.Width,
		height: cfg.Height,
		scale:  scale,
		title:  title,
		queue:  queue,
		done:   make(chan struct{}),
	}
}

// Present copies buf for the next Draw.
func (w *Window) Present(buf *core.PixelBuffer) error {
	w.mu.Lock()
	w.frame = ToRGBA(w.frame, buf)
	w.dirty = true
	w.mu.Unlock()
	return nil
}

// PollGamepads reports the pads sampled by the last Update.
func (w *Window) PollGamepads(pads *[core.MaxGamepads]platform.PadState) {
	w.mu.Lock()
	*pads = w.pads
	w.mu.Unlock()
}

// Update forwards input. It ends the game loop once the engine is done.
func (w *Window) Update() error {
	select {
	case <-w.done:
		return ebiten.Termination
	default:
	}

	if ebiten.IsWindowBeingClosed() && !w.closing {
		w.closing = true
		w.queue.Push(platform.CommandEvent(platform.CommandQuit))
	}

	w.keys = inpututil.AppendJustPressedKeys(w.keys[:0])
	for _, k := range w.keys {
		if c, ok := commandKeys[k]; ok {
			w.queue.Push(platform.CommandEvent(c))
			continue
		}
		if b, ok := buttonKeys[k]; ok {
			w.queue.Push(platform.KeyEvent(b, true))
		}
	}
	w.keys = inpututil.AppendJustReleasedKeys(w.keys[:0])
	for _, k := range w.keys {
		if b, ok := buttonKeys[k]; ok {
			w.queue.Push(platform.KeyEvent(b, false))
		}
	}

	w.pollPads()
	return nil
}

func (w *Window) pollPads() {
	var pads [core.MaxGamepads]platform.PadState
	w.padIDs = ebiten.AppendGamepadIDs(w.padIDs[:0])
	for i, id := range w.padIDs {
		if i >= core.MaxGamepads {
			break
		}
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		p := &pads[i]
		p.Connected = true
		p.StickX = axisToInt16(ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal))
		// Ebitengine reports down as positive.
		p.StickY = axisToInt16(-ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical))
		for _, pb := range padButtons {
			if ebiten.IsStandardGamepadButtonPressed(id, pb.button) {
				p.Buttons |= pb.mask
			}
		}
	}

	w.mu.Lock()
	w.pads = pads
	w.mu.Unlock()
}

func axisToInt16(v float64) int16 {
	switch {
	case v >= 1:
		return 32767
	case v <= -1:
		return -32768
	case v < 0:
		return int16(v * 32768)
	default:
		return int16(v * 32767)
	}
}

// Draw uploads the latest frame.
func (w *Window) Draw(screen *ebiten.Image) {
	if w.image == nil {
		w.image = ebiten.NewImage(w.width, w.height)
	}

	w.mu.Lock()
	if w.dirty && len(w.frame) == w.width*w.height*4 {
		w.image.WritePixels(w.frame)
		w.dirty = false
	}
	w.mu.Unlock()

	screen.DrawImage(w.image, nil)
}

// Layout keeps the logical screen at the back buffer size; the window
// scales it.
func (w *Window) Layout(_, _ int) (int, int) {
	return w.width, w.height
}

// Run shows the window and runs engine until either stops. It must be
// called from the main goroutine.
func Run(ctx context.Context, w *Window, engine *platform.Engine) error {
	ebiten.SetWindowSize(w.width*w.scale, w.height*w.scale)
	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowResizable(true)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var engineErr error
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		defer close(w.done)
		engineErr = engine.Run(ctx)
	}()

	err := ebiten.RunGame(w)
	cancel()
	<-finished

	if err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return engineErr
}
