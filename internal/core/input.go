package core

// Button identifies one digital button on a controller.
// The same layout is used for the keyboard (controller 0) and gamepads.
type Button int

const (
	ButtonMoveUp Button = iota
	ButtonMoveDown
	ButtonMoveLeft
	ButtonMoveRight
	ButtonActionUp
	ButtonActionDown
	ButtonActionLeft
	ButtonActionRight
	ButtonLeftShoulder
	ButtonRightShoulder
	ButtonBack
	ButtonStart

	ButtonCount // number of buttons, not a button
)

// String returns a human-readable name for the button.
func (b Button) String() string {
	switch b {
	case ButtonMoveUp:
		return "MoveUp"
	case ButtonMoveDown:
		return "MoveDown"
	case ButtonMoveLeft:
		return "MoveLeft"
	case ButtonMoveRight:
		return "MoveRight"
	case ButtonActionUp:
		return "ActionUp"
	case ButtonActionDown:
		return "ActionDown"
	case ButtonActionLeft:
		return "ActionLeft"
	case ButtonActionRight:
		return "ActionRight"
	case ButtonLeftShoulder:
		return "LeftShoulder"
	case ButtonRightShoulder:
		return "RightShoulder"
	case ButtonBack:
		return "Back"
	case ButtonStart:
		return "Start"
	default:
		return "Unknown"
	}
}

// KeyboardController is the controller index the keyboard is mapped to.
const KeyboardController = 0

// MaxGamepads is the number of physical controllers polled each frame.
const MaxGamepads = 4

// ControllerCount is the keyboard plus every gamepad slot.
const ControllerCount = MaxGamepads + 1

// ButtonState is the state of one button at the end of a frame.
//
// HalfTransitionCount counts observed up/down flips during the frame; the
// platform reports at most one per frame for polled devices.
type ButtonState struct {
	HalfTransitionCount int32
	EndedDown           bool
}

// Pressed reports a down edge this frame.
func (s ButtonState) Pressed() bool {
	return s.EndedDown && s.HalfTransitionCount > 0
}

// Released reports an up edge this frame.
func (s ButtonState) Released() bool {
	return !s.EndedDown && s.HalfTransitionCount > 0
}

// ControllerInput is the per-frame snapshot of one controller.
// All fields are fixed size so the struct can be streamed with encoding/binary.
type ControllerInput struct {
	IsConnected   bool
	IsAnalog      bool
	StickAverageX float32
	StickAverageY float32
	Buttons       [ButtonCount]ButtonState
}

// Button returns the state of button b.
func (c *ControllerInput) Button(b Button) ButtonState {
	if b < 0 || b >= ButtonCount {
		return ButtonState{}
	}
	return c.Buttons[b]
}

// GameInput is everything the simulation sees for one frame.
type GameInput struct {
	DeltaSeconds float32
	Controllers  [ControllerCount]ControllerInput
}

// Controller returns controller i, or nil when i is out of range.
func (in *GameInput) Controller(i int) *ControllerInput {
	if i < 0 || i >= ControllerCount {
		return nil
	}
	return &in.Controllers[i]
}

// Keyboard returns the keyboard controller.
func (in *GameInput) Keyboard() *ControllerInput {
	return &in.Controllers[KeyboardController]
}
