package registry

import "github.com/vovakirdan/handmade/internal/core"

// StubID is the id reported by the stub module.
const StubID = "stub"

// Stub is the module used whenever a real one fails to load. It leaves the
// pixel buffer untouched and outputs silence.
type Stub struct {
	// Reason records why the stub is active, for display.
	Reason string
}

func (Stub) ID() string    { return StubID }
func (Stub) Title() string { return "Stub" }

func (Stub) UpdateAndRender(*core.Memory, *core.GameInput, *core.PixelBuffer) {}

func (Stub) GetSoundSamples(_ *core.Memory, sb *core.SoundBuffer) {
	sb.Silence()
}
