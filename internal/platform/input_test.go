package platform

import (
	"testing"

	"github.com/vovakirdan/handmade/internal/core"
)

func TestProcessKeyboardMessage(t *testing.T) {
	tests := []struct {
		name        string
		start       bool
		messages    []bool
		endedDown   bool
		transitions int32
	}{
		{"press", false, []bool{true}, true, 1},
		{"press and release", false, []bool{true, false}, false, 2},
		{"tap twice", false, []bool{true, false, true, false}, false, 4},
		{"repeat while held", true, []bool{true, true, true}, true, 0},
		{"release", true, []bool{false}, false, 1},
		{"no messages", true, nil, true, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := core.ButtonState{EndedDown: tc.start}
			for _, down := range tc.messages {
				ProcessKeyboardMessage(&s, down)
			}
			if s.EndedDown != tc.endedDown {
				t.Errorf("EndedDown = %v, expected %v", s.EndedDown, tc.endedDown)
			}
			if s.HalfTransitionCount != tc.transitions {
				t.Errorf("HalfTransitionCount = %d, expected %d", s.HalfTransitionCount, tc.transitions)
			}
		})
	}
}

func TestProcessDigitalButton(t *testing.T) {
	tests := []struct {
		prev, down  bool
		transitions int32
	}{
		{false, false, 0},
		{false, true, 1},
		{true, true, 0},
		{true, false, 1},
	}

	for _, tc := range tests {
		prev := core.ButtonState{EndedDown: tc.prev, HalfTransitionCount: 7}
		next := core.ButtonState{HalfTransitionCount: 9}
		ProcessDigitalButton(&prev, &next, tc.down)
		if next.EndedDown != tc.down || next.HalfTransitionCount != tc.transitions {
			t.Errorf("ProcessDigitalButton(%v -> %v) = %+v, expected %d transitions", tc.prev, tc.down, next, tc.transitions)
		}
	}
}

func TestBeginFrameCarriesHeldKeys(t *testing.T) {
	var b InputBuffers

	in := b.BeginFrame(0.033)
	ProcessKeyboardMessage(&in.Keyboard().Buttons[core.ButtonMoveLeft], true)
	b.Swap()

	in = b.BeginFrame(0.033)
	left := in.Keyboard().Buttons[core.ButtonMoveLeft]
	if !left.EndedDown || left.HalfTransitionCount != 0 {
		t.Errorf("held key = %+v, expected down with no transitions", left)
	}
	if !in.Keyboard().IsConnected {
		t.Error("keyboard should always be connected")
	}
	if in.DeltaSeconds != 0.033 {
		t.Errorf("DeltaSeconds = %v, expected 0.033", in.DeltaSeconds)
	}
	if b.Old() == b.New() {
		t.Error("old and new snapshots must be distinct")
	}
}

func TestNormalizeStick(t *testing.T) {
	const dz = 7849

	tests := []struct {
		name     string
		raw      int16
		expected float32
	}{
		{"centre", 0, 0},
		{"inside positive deadzone", dz, 0},
		{"inside negative deadzone", -dz, 0},
		{"positive extreme", 32767, 1},
		{"negative extreme", -32768, -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeStick(tc.raw, dz); got != tc.expected {
				t.Errorf("NormalizeStick(%d) = %v, expected %v", tc.raw, got, tc.expected)
			}
		})
	}

	// Just past the deadzone the value starts near zero, not near 0.24.
	if got := NormalizeStick(dz+1, dz); got <= 0 || got > 0.001 {
		t.Errorf("NormalizeStick(dz+1) = %v, expected a tiny positive value", got)
	}
	if got := NormalizeStick(-dz-1, dz); got >= 0 || got < -0.001 {
		t.Errorf("NormalizeStick(-dz-1) = %v, expected a tiny negative value", got)
	}
}

func TestProcessGamepad(t *testing.T) {
	cfg := DefaultInputConfig()

	t.Run("disconnected clears the controller", func(t *testing.T) {
		prev := core.ControllerInput{}
		next := core.ControllerInput{IsConnected: true, StickAverageX: 0.5}
		ProcessGamepad(&prev, &next, PadState{}, cfg)
		if next != (core.ControllerInput{}) {
			t.Errorf("next = %+v, expected zero value", next)
		}
	})

	t.Run("stick past threshold presses move", func(t *testing.T) {
		var prev, next core.ControllerInput
		ProcessGamepad(&prev, &next, PadState{Connected: true, StickX: 32767, StickY: -32768}, cfg)
		if !next.IsAnalog {
			t.Error("stick input should be analog")
		}
		if next.StickAverageX != 1 || next.StickAverageY != -1 {
			t.Errorf("stick = (%v, %v), expected (1, -1)", next.StickAverageX, next.StickAverageY)
		}
		if !next.Buttons[core.ButtonMoveRight].EndedDown || !next.Buttons[core.ButtonMoveDown].EndedDown {
			t.Error("MoveRight and MoveDown should be down")
		}
		if next.Buttons[core.ButtonMoveRight].HalfTransitionCount != 1 {
			t.Errorf("MoveRight transitions = %d, expected 1", next.Buttons[core.ButtonMoveRight].HalfTransitionCount)
		}
		if next.Buttons[core.ButtonMoveLeft].EndedDown || next.Buttons[core.ButtonMoveUp].EndedDown {
			t.Error("MoveLeft and MoveUp should be up")
		}
	})

	t.Run("dpad overrides stick", func(t *testing.T) {
		var prev, next core.ControllerInput
		pad := PadState{Connected: true, StickX: 32767, Buttons: PadDPadLeft | PadDPadUp}
		ProcessGamepad(&prev, &next, pad, cfg)
		if next.StickAverageX != -1 || next.StickAverageY != 1 {
			t.Errorf("stick = (%v, %v), expected (-1, 1)", next.StickAverageX, next.StickAverageY)
		}
		if next.IsAnalog {
			t.Error("dpad input should not be analog")
		}
		if !next.Buttons[core.ButtonMoveLeft].EndedDown || next.Buttons[core.ButtonMoveRight].EndedDown {
			t.Error("dpad left should win over the stick")
		}
	})

	t.Run("face buttons", func(t *testing.T) {
		prev := core.ControllerInput{}
		prev.Buttons[core.ButtonActionDown].EndedDown = true
		var next core.ControllerInput
		ProcessGamepad(&prev, &next, PadState{Connected: true, Buttons: PadA | PadStart}, cfg)

		a := next.Buttons[core.ButtonActionDown]
		if !a.EndedDown || a.HalfTransitionCount != 0 {
			t.Errorf("held A = %+v, expected down with no transition", a)
		}
		start := next.Buttons[core.ButtonStart]
		if !start.EndedDown || start.HalfTransitionCount != 1 {
			t.Errorf("Start = %+v, expected a fresh press", start)
		}
	})
}

func TestScriptedEvents(t *testing.T) {
	s := NewScriptedEvents(nil).
		Hold(core.ButtonMoveUp, 1, 3).
		At(2, CommandEvent(CommandQuit))

	var got [][]Event
	for i := 0; i < 4; i++ {
		got = append(got, s.PollEvents())
	}

	if len(got[0]) != 0 {
		t.Errorf("frame 0 events = %v, expected none", got[0])
	}
	if len(got[1]) != 1 || got[1][0] != KeyEvent(core.ButtonMoveUp, true) {
		t.Errorf("frame 1 events = %v, expected MoveUp down", got[1])
	}
	if len(got[2]) != 1 || !got[2][0].IsCommand() || got[2][0].Command != CommandQuit {
		t.Errorf("frame 2 events = %v, expected quit", got[2])
	}
	if len(got[3]) != 1 || got[3][0] != KeyEvent(core.ButtonMoveUp, false) {
		t.Errorf("frame 3 events = %v, expected MoveUp up", got[3])
	}
}

func TestEventQueueDrains(t *testing.T) {
	var q EventQueue
	q.Push(KeyEvent(core.ButtonStart, true), CommandEvent(CommandToggleRecord))

	if got := q.PollEvents(); len(got) != 2 {
		t.Fatalf("PollEvents() returned %d events, expected 2", len(got))
	}
	if got := q.PollEvents(); got != nil {
		t.Errorf("second PollEvents() = %v, expected nil", got)
	}
}
