// Package handmade is the reference simulation: a player walking a grid of
// tile maps, a sine tone whose pitch follows the stick, and a scrolling
// tint on the floor tiles.
//
// All state lives in the permanent memory arena and nothing reads the wall
// clock, so a recorded input stream replays to identical frames.
package handmade

import (
	"math"

	"github.com/vovakirdan/handmade/internal/config"
	"github.com/vovakirdan/handmade/internal/core"
	"github.com/vovakirdan/handmade/internal/registry"
	"github.com/vovakirdan/handmade/internal/world"
)

const (
	baseToneHz   = 256
	toneRangeHz  = 128
	toneVolume   = 3000
	walkSpeed    = 240 // world units per second
	runFactor    = 3
	playerWidthT = 0.75 // of a tile
)

// state is the permanent-arena layout. Every field is fixed size.
type state struct {
	Player      world.RawPosition
	ToneHz      float32
	BlueOffset  int32
	GreenOffset int32
	SinePhase   float64
}

// Game implements registry.Module.
type Game struct {
	world *world.World
}

func init() {
	registry.Register(registry.ModuleInfo{ID: "handmade", Title: "Handmade"}, func(opts registry.Options) (registry.Module, error) {
		return New(opts.World)
	})
}

// New creates the module for w. A nil world uses the built-in one.
func New(w *world.World) (*Game, error) {
	if w == nil {
		var err error
		if w, err = config.DefaultWorld(); err != nil {
			return nil, err
		}
	}
	return &Game{world: w}, nil
}

// ID returns the module identifier.
func (g *Game) ID() string { return "handmade" }

// Title returns the display name.
func (g *Game) Title() string { return "Handmade" }

// World returns the tile world the module walks.
func (g *Game) World() *world.World { return g.world }

// StartPosition is where a fresh memory puts the player: the centre of tile
// (3,3) of the first tile map.
func (g *Game) StartPosition() world.RawPosition {
	minX, minY, maxX, maxY := g.world.TileRect(3, 3)
	return world.RawPosition{X: (minX + maxX) / 2, Y: (minY + maxY) / 2}
}

// PlayerPosition decodes the player position from mem.
func (g *Game) PlayerPosition(mem *core.Memory) world.RawPosition {
	var st state
	//nolint:errcheck // Zero state on a short arena.
	mem.LoadState(&st)
	return st.Player
}

func (g *Game) load(mem *core.Memory) state {
	var st state
	if !mem.IsInitialized {
		st = state{Player: g.StartPosition(), ToneHz: baseToneHz}
		mem.IsInitialized = true
		//nolint:errcheck // The arena is sized far above the state.
		mem.StoreState(&st)
		return st
	}
	//nolint:errcheck // The arena is sized far above the state.
	mem.LoadState(&st)
	return st
}

// UpdateAndRender moves the player and draws the current tile map.
func (g *Game) UpdateAndRender(mem *core.Memory, in *core.GameInput, buf *core.PixelBuffer) {
	st := g.load(mem)
	dt := float64(in.DeltaSeconds)

	for i := range in.Controllers {
		c := &in.Controllers[i]
		if !c.IsConnected {
			continue
		}

		if c.IsAnalog {
			st.BlueOffset += int32(4 * c.StickAverageX)
			st.ToneHz = baseToneHz + toneRangeHz*c.StickAverageY
		}
		if c.Buttons[core.ButtonActionDown].EndedDown {
			st.GreenOffset++
		}

		var dx, dy float64
		if c.Buttons[core.ButtonMoveUp].EndedDown {
			dy = -1
		}
		if c.Buttons[core.ButtonMoveDown].EndedDown {
			dy = 1
		}
		if c.Buttons[core.ButtonMoveLeft].EndedDown {
			dx = -1
		}
		if c.Buttons[core.ButtonMoveRight].EndedDown {
			dx = 1
		}
		if dx == 0 && dy == 0 {
			continue
		}

		speed := float64(walkSpeed)
		if c.Buttons[core.ButtonActionUp].EndedDown {
			speed *= runFactor
		}
		next := st.Player.Offset(dx*speed*dt, dy*speed*dt)
		if world.CanMoveTo(g.world, next, g.halfWidth()) {
			st.Player = world.Canonicalize(g.world, next).Raw(g.world)
		}
	}

	//nolint:errcheck // The arena is sized far above the state.
	mem.StoreState(&st)
	g.render(&st, buf)
}

// GetSoundSamples writes a sine tone at the pitch the last update chose.
func (g *Game) GetSoundSamples(mem *core.Memory, sb *core.SoundBuffer) {
	st := g.load(mem)
	if st.ToneHz <= 0 || sb.SamplesPerSecond <= 0 {
		sb.Silence()
		return
	}

	step := 2 * math.Pi * float64(st.ToneHz) / float64(sb.SamplesPerSecond)
	for i := 0; i < sb.SampleCount; i++ {
		v := int16(math.Sin(st.SinePhase) * toneVolume)
		sb.SetFrame(i, v, v)
		st.SinePhase += step
		if st.SinePhase > 2*math.Pi {
			st.SinePhase -= 2 * math.Pi
		}
	}

	//nolint:errcheck // The arena is sized far above the state.
	mem.StoreState(&st)
}

func (g *Game) halfWidth() float64 {
	return g.world.TileWidth * playerWidthT / 2
}

// render draws the player's tile map scaled so its rows fill the buffer
// height.
func (g *Game) render(st *state, buf *core.PixelBuffer) {
	w := g.world
	buf.Clear(core.ColorBackdrop)

	scale := float64(buf.Height()) / (float64(w.CountY) * w.TileHeight)
	tm := w.TileMap(st.Player.TileMapX, st.Player.TileMapY)

	for y := int32(0); y < w.CountY; y++ {
		for x := int32(0); x < w.CountX; x++ {
			code, ok := tm.Tile(x, y)
			c := core.ColorTileSolid
			if ok && code == world.TileEmpty {
				c = floorTint(x, y, st)
			}
			minX, minY, maxX, maxY := w.TileRect(x, y)
			buf.FillRectF(minX*scale, minY*scale, maxX*scale, maxY*scale, c)
		}
	}

	hw := g.halfWidth()
	p := st.Player
	buf.FillRectF(
		(p.X-hw)*scale, (p.Y-w.TileHeight)*scale,
		(p.X+hw)*scale, p.Y*scale,
		core.ColorPlayer,
	)
}

// floorTint is the grey floor with a low-contrast gradient that scrolls
// with the offsets.
func floorTint(x, y int32, st *state) core.Color {
	g := uint8(0x60 + (x*8+st.GreenOffset)&0x3f)
	b := uint8(0x60 + (y*8+st.BlueOffset)&0x3f)
	return core.RGB(0x60, g, b)
}
