// Package gradient is the platform test pattern: a scrolling blue/green
// gradient and a steady sine tone.
package gradient

import (
	"encoding/binary"
	"math"

	"github.com/vovakirdan/handmade/internal/core"
	"github.com/vovakirdan/handmade/internal/registry"
)

const (
	baseToneHz  = 256
	toneRangeHz = 128
	toneVolume  = 3000
	scrollSpeed = 4
)

type state struct {
	BlueOffset  int32
	GreenOffset int32
	ToneHz      int32
	SinePhase   float32
}

// Game implements registry.Module.
type Game struct{}

func init() {
	registry.Register(registry.ModuleInfo{ID: "gradient", Title: "Gradient test pattern"}, func(registry.Options) (registry.Module, error) {
		return New(), nil
	})
}

// New creates the module.
func New() *Game { return &Game{} }

func (g *Game) ID() string    { return "gradient" }
func (g *Game) Title() string { return "Gradient test pattern" }

func (g *Game) load(mem *core.Memory) state {
	var st state
	if !mem.IsInitialized {
		st.ToneHz = baseToneHz
		mem.IsInitialized = true
		//nolint:errcheck // The arena is sized far above the state.
		mem.StoreState(&st)
		return st
	}
	//nolint:errcheck // The arena is sized far above the state.
	mem.LoadState(&st)
	return st
}

// UpdateAndRender scrolls the gradient with the stick or the move buttons.
func (g *Game) UpdateAndRender(mem *core.Memory, in *core.GameInput, buf *core.PixelBuffer) {
	st := g.load(mem)

	for i := range in.Controllers {
		c := &in.Controllers[i]
		if !c.IsConnected {
			continue
		}
		if c.IsAnalog {
			st.BlueOffset += int32(scrollSpeed * c.StickAverageX)
			st.ToneHz = baseToneHz + int32(toneRangeHz*c.StickAverageY)
		} else {
			if c.Buttons[core.ButtonMoveLeft].EndedDown {
				st.BlueOffset -= scrollSpeed
			}
			if c.Buttons[core.ButtonMoveRight].EndedDown {
				st.BlueOffset += scrollSpeed
			}
			if c.Buttons[core.ButtonMoveUp].EndedDown {
				st.GreenOffset -= scrollSpeed
			}
			if c.Buttons[core.ButtonMoveDown].EndedDown {
				st.GreenOffset += scrollSpeed
			}
		}
		if c.Buttons[core.ButtonActionDown].EndedDown {
			st.GreenOffset++
		}
	}

	//nolint:errcheck // The arena is sized far above the state.
	mem.StoreState(&st)
	Render(buf, int(st.BlueOffset), int(st.GreenOffset))
}

// GetSoundSamples writes the tone.
func (g *Game) GetSoundSamples(mem *core.Memory, sb *core.SoundBuffer) {
	st := g.load(mem)
	if st.ToneHz <= 0 {
		sb.Silence()
		return
	}
	wavePeriod := sb.SamplesPerSecond / int(st.ToneHz)
	if wavePeriod <= 0 {
		sb.Silence()
		return
	}

	step := 2 * math.Pi / float64(wavePeriod)
	phase := float64(st.SinePhase)
	for i := 0; i < sb.SampleCount; i++ {
		v := int16(math.Sin(phase) * toneVolume)
		sb.SetFrame(i, v, v)
		phase += step
	}
	st.SinePhase = float32(math.Mod(phase, 2*math.Pi))

	//nolint:errcheck // The arena is sized far above the state.
	mem.StoreState(&st)
}

// Render draws the gradient: blue follows x, green follows y, both wrapping
// every 256 pixels.
func Render(buf *core.PixelBuffer, xOffset, yOffset int) {
	for y := 0; y < buf.Height(); y++ {
		row := buf.Row(y)
		green := uint32(uint8(y + yOffset))
		for x := 0; x < buf.Width(); x++ {
			blue := uint32(uint8(x + xOffset))
			binary.LittleEndian.PutUint32(row[x*core.BytesPerPixel:], green<<8|blue)
		}
	}
}
