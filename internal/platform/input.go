// Package platform runs the frame loop: it builds the input snapshot, drives
// the active module, feeds the audio ring, paces frames and presents.
package platform

import "github.com/vovakirdan/handmade/internal/core"

// InputConfig tunes gamepad normalisation.
type InputConfig struct {
	// Deadzone is the raw stick magnitude treated as centred.
	Deadzone int16
	// StickThreshold is the normalised deflection that also presses the
	// Move* buttons.
	StickThreshold float32
}

// DefaultInputConfig matches the common left-stick deadzone of pad drivers.
func DefaultInputConfig() InputConfig {
	return InputConfig{Deadzone: 7849, StickThreshold: 0.5}
}

// InputBuffers holds the current and previous input snapshots. The two
// slots swap roles once per frame; nothing is copied.
type InputBuffers struct {
	slots  [2]core.GameInput
	newIdx int
}

// New returns the snapshot being built this frame.
func (b *InputBuffers) New() *core.GameInput { return &b.slots[b.newIdx] }

// Old returns last frame's snapshot.
func (b *InputBuffers) Old() *core.GameInput { return &b.slots[1-b.newIdx] }

// Swap makes this frame's snapshot the old one.
func (b *InputBuffers) Swap() { b.newIdx = 1 - b.newIdx }

// BeginFrame prepares the new snapshot: the keyboard carries its held state
// over from the previous frame with transition counts reset.
func (b *InputBuffers) BeginFrame(dt float32) *core.GameInput {
	in := b.New()
	in.DeltaSeconds = dt
	BeginKeyboard(b.Old().Keyboard(), in.Keyboard())
	return in
}

// BeginKeyboard copies EndedDown from prev into next and zeroes every
// HalfTransitionCount. Keyboard events only arrive on change, so a key held
// across frames has to be carried forward explicitly.
func BeginKeyboard(prev, next *core.ControllerInput) {
	*next = core.ControllerInput{IsConnected: true}
	for i := range next.Buttons {
		next.Buttons[i].EndedDown = prev.Buttons[i].EndedDown
	}
}

// ProcessKeyboardMessage applies one key transition. Repeats of the current
// state are ignored.
func ProcessKeyboardMessage(s *core.ButtonState, isDown bool) {
	if s.EndedDown != isDown {
		s.EndedDown = isDown
		s.HalfTransitionCount++
	}
}

// ProcessDigitalButton sets next from a polled button: one half transition if
// the state differs from prev, none otherwise.
func ProcessDigitalButton(prev, next *core.ButtonState, isDown bool) {
	next.EndedDown = isDown
	if prev.EndedDown != isDown {
		next.HalfTransitionCount = 1
	} else {
		next.HalfTransitionCount = 0
	}
}

// NormalizeStick maps a raw axis value to [-1, 1]. Values within the
// deadzone are 0; beyond it the range is rescaled so the deadzone edge is 0
// and the device extremes are exactly -1 and 1.
func NormalizeStick(raw, deadzone int16) float32 {
	dz := float32(deadzone)
	switch {
	case raw < -deadzone:
		return (float32(raw) + dz) / (32768 - dz)
	case raw > deadzone:
		return (float32(raw) - dz) / (32767 - dz)
	default:
		return 0
	}
}

// PadButtons is a bitmask of digital pad buttons.
type PadButtons uint16

const (
	PadDPadUp PadButtons = 1 << iota
	PadDPadDown
	PadDPadLeft
	PadDPadRight
	PadStart
	PadBack
	PadLeftShoulder
	PadRightShoulder
	PadA
	PadB
	PadX
	PadY
)

// PadState is the raw polled state of one gamepad. Stick Y is positive up.
type PadState struct {
	Connected bool
	StickX    int16
	StickY    int16
	Buttons   PadButtons
}

// Has reports whether every button in mask is held.
func (p PadState) Has(mask PadButtons) bool { return p.Buttons&mask == mask }

// ProcessGamepad fills next from a polled pad, using prev for edge detection.
// The D-pad overrides the stick, and stick deflection past the threshold
// drives the Move* buttons.
func ProcessGamepad(prev, next *core.ControllerInput, pad PadState, cfg InputConfig) {
	if !pad.Connected {
		*next = core.ControllerInput{}
		return
	}
	next.IsConnected = true
	next.IsAnalog = true

	x := NormalizeStick(pad.StickX, cfg.Deadzone)
	y := NormalizeStick(pad.StickY, cfg.Deadzone)
	if x == 0 && y == 0 {
		next.IsAnalog = prev.IsAnalog
	}

	if pad.Has(PadDPadUp) {
		y = 1
		next.IsAnalog = false
	}
	if pad.Has(PadDPadDown) {
		y = -1
		next.IsAnalog = false
	}
	if pad.Has(PadDPadLeft) {
		x = -1
		next.IsAnalog = false
	}
	if pad.Has(PadDPadRight) {
		x = 1
		next.IsAnalog = false
	}
	next.StickAverageX = x
	next.StickAverageY = y

	t := cfg.StickThreshold
	digital := func(b core.Button, down bool) {
		ProcessDigitalButton(&prev.Buttons[b], &next.Buttons[b], down)
	}
	digital(core.ButtonMoveLeft, x < -t)
	digital(core.ButtonMoveRight, x > t)
	digital(core.ButtonMoveDown, y < -t)
	digital(core.ButtonMoveUp, y > t)

	digital(core.ButtonActionDown, pad.Has(PadA))
	digital(core.ButtonActionRight, pad.Has(PadB))
	digital(core.ButtonActionLeft, pad.Has(PadX))
	digital(core.ButtonActionUp, pad.Has(PadY))
	digital(core.ButtonLeftShoulder, pad.Has(PadLeftShoulder))
	digital(core.ButtonRightShoulder, pad.Has(PadRightShoulder))
	digital(core.ButtonStart, pad.Has(PadStart))
	digital(core.ButtonBack, pad.Has(PadBack))
}
