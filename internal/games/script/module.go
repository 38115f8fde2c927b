// Package script runs a simulation written in Lua.
//
// The script defines a global update_and_render(input) function and draws
// with the host functions clear, fill_rect and set_tone. Sound is synthesised
// in Go from the tone the script last set. Script state lives in the Lua VM,
// not in the platform's memory arenas, so script modules do not replay
// deterministically across reloads.
package script

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/vovakirdan/handmade/internal/core"
	"github.com/vovakirdan/handmade/internal/registry"
)

// ID is the registry id of script modules.
const ID = "script"

const defaultVolume = 3000

// updateFunc is the global every script must define.
const updateFunc = "update_and_render"

//go:embed demo.lua
var demoSource string

// ErrNoUpdate is returned when a script does not define update_and_render.
var ErrNoUpdate = errors.New("script: update_and_render is not defined")

var buttonNames = [core.ButtonCount]string{
	core.ButtonMoveUp:        "move_up",
	core.ButtonMoveDown:      "move_down",
	core.ButtonMoveLeft:      "move_left",
	core.ButtonMoveRight:     "move_right",
	core.ButtonActionUp:      "action_up",
	core.ButtonActionDown:    "action_down",
	core.ButtonActionLeft:    "action_left",
	core.ButtonActionRight:   "action_right",
	core.ButtonLeftShoulder:  "left_shoulder",
	core.ButtonRightShoulder: "right_shoulder",
	core.ButtonBack:          "back",
	core.ButtonStart:         "start",
}

// Module is a loaded script.
type Module struct {
	name   string
	L      *lua.LState
	update *lua.LFunction

	// Target of the drawing functions during update_and_render.
	buf *core.PixelBuffer

	toneHz float64
	volume float64
	phase  float64

	lastErr error
}

func init() {
	registry.Register(registry.ModuleInfo{ID: ID, Title: "Lua script"}, func(opts registry.Options) (registry.Module, error) {
		if opts.Script == "" {
			m, err := LoadSource("demo.lua", demoSource)
			if err != nil {
				return nil, err
			}
			return m, nil
		}
		return Load(opts.Script)
	})
}

// Load reads and runs the script at path. It matches module.Loader.
func Load(path string) (registry.Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: cannot read %s: %w", path, err)
	}
	m, err := LoadSource(path, string(src))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// LoadSource runs src and binds its update_and_render function.
func LoadSource(name, src string) (*Module, error) {
	m := &Module{name: name, volume: defaultVolume}

	L := lua.NewState()
	L.SetGlobal("clear", L.NewFunction(m.luaClear))
	L.SetGlobal("fill_rect", L.NewFunction(m.luaFillRect))
	L.SetGlobal("set_tone", L.NewFunction(m.luaSetTone))
	L.SetGlobal("width", L.NewFunction(m.luaWidth))
	L.SetGlobal("height", L.NewFunction(m.luaHeight))

	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, fmt.Errorf("script: %s: %w", name, err)
	}
	fn, ok := L.GetGlobal(updateFunc).(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("%w in %s", ErrNoUpdate, name)
	}

	m.L = L
	m.update = fn
	return m, nil
}

func (m *Module) ID() string    { return ID }
func (m *Module) Title() string { return "Lua: " + m.name }

// Err returns the error raised by the most recent update, if any.
func (m *Module) Err() error { return m.lastErr }

// ToneHz returns the tone the script last set.
func (m *Module) ToneHz() float64 { return m.toneHz }

// Close releases the Lua state.
func (m *Module) Close() error {
	if m.L != nil {
		m.L.Close()
		m.L = nil
	}
	return nil
}

// UpdateAndRender calls the script. A runtime error leaves the frame filled
// red and is kept for Err.
func (m *Module) UpdateAndRender(_ *core.Memory, in *core.GameInput, buf *core.PixelBuffer) {
	if m.L == nil {
		buf.Clear(core.ColorRed)
		return
	}

	m.buf = buf
	defer func() { m.buf = nil }()

	err := m.L.CallByParam(lua.P{Fn: m.update, NRet: 0, Protect: true}, m.inputTable(in))
	m.lastErr = err
	if err != nil {
		buf.Clear(core.ColorRed)
	}
}

// GetSoundSamples plays the script's tone.
func (m *Module) GetSoundSamples(_ *core.Memory, sb *core.SoundBuffer) {
	if m.toneHz <= 0 || sb.SamplesPerSecond <= 0 {
		sb.Silence()
		return
	}
	step := 2 * math.Pi * m.toneHz / float64(sb.SamplesPerSecond)
	for i := 0; i < sb.SampleCount; i++ {
		v := int16(math.Sin(m.phase) * m.volume)
		sb.SetFrame(i, v, v)
		m.phase += step
	}
	m.phase = math.Mod(m.phase, 2*math.Pi)
}

// inputTable converts the snapshot to
//
//	{dt = n, controllers = {{connected, analog, stick_x, stick_y,
//	  down = {move_up = bool, ...}, pressed = {...}}, ...}}
//
// with the keyboard first.
func (m *Module) inputTable(in *core.GameInput) *lua.LTable {
	L := m.L
	t := L.NewTable()
	t.RawSetString("dt", lua.LNumber(in.DeltaSeconds))

	controllers := L.NewTable()
	for i := range in.Controllers {
		c := &in.Controllers[i]
		ct := L.NewTable()
		ct.RawSetString("connected", lua.LBool(c.IsConnected))
		ct.RawSetString("analog", lua.LBool(c.IsAnalog))
		ct.RawSetString("stick_x", lua.LNumber(c.StickAverageX))
		ct.RawSetString("stick_y", lua.LNumber(c.StickAverageY))

		down := L.NewTable()
		pressed := L.NewTable()
		for b, name := range buttonNames {
			s := c.Buttons[b]
			down.RawSetString(name, lua.LBool(s.EndedDown))
			pressed.RawSetString(name, lua.LBool(s.Pressed()))
		}
		ct.RawSetString("down", down)
		ct.RawSetString("pressed", pressed)
		controllers.Append(ct)
	}
	t.RawSetString("controllers", controllers)
	return t
}

func checkColor(L *lua.LState, from int) core.Color {
	r := core.Clamp(L.CheckInt(from), 0, 255)
	g := core.Clamp(L.CheckInt(from+1), 0, 255)
	b := core.Clamp(L.CheckInt(from+2), 0, 255)
	return core.RGB(uint8(r), uint8(g), uint8(b))
}

// clear(r, g, b)
func (m *Module) luaClear(L *lua.LState) int {
	c := checkColor(L, 1)
	if m.buf != nil {
		m.buf.Clear(c)
	}
	return 0
}

// fill_rect(x, y, w, h, r, g, b)
func (m *Module) luaFillRect(L *lua.LState) int {
	x := float64(L.CheckNumber(1))
	y := float64(L.CheckNumber(2))
	w := float64(L.CheckNumber(3))
	h := float64(L.CheckNumber(4))
	c := checkColor(L, 5)
	if m.buf != nil {
		m.buf.FillRectF(x, y, x+w, y+h, c)
	}
	return 0
}

// set_tone(hz [, volume])
func (m *Module) luaSetTone(L *lua.LState) int {
	m.toneHz = float64(L.CheckNumber(1))
	m.volume = math.Min(float64(L.OptNumber(2, defaultVolume)), math.MaxInt16)
	return 0
}

func (m *Module) luaWidth(L *lua.LState) int {
	w := 0
	if m.buf != nil {
		w = m.buf.Width()
	}
	L.Push(lua.LNumber(w))
	return 1
}

func (m *Module) luaHeight(L *lua.LState) int {
	h := 0
	if m.buf != nil {
		h = m.buf.Height()
	}
	L.Push(lua.LNumber(h))
	return 1
}
