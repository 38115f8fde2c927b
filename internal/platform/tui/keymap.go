package tui

import (
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/handmade/internal/core"
	"github.com/vovakirdan/handmade/internal/platform"
)

// KeyMap binds terminal keys to controller buttons and platform commands.
type KeyMap struct {
	Buttons [core.ButtonCount]key.Binding
	Quit    key.Binding
	Record  key.Binding
}

// DefaultKeyMap follows the usual layout: WASD moves, arrows are the four
// action buttons, Q/E the shoulders.
func DefaultKeyMap() KeyMap {
	var km KeyMap
	bind := func(b core.Button, help string, keys ...string) {
		km.Buttons[b] = key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
	}
	bind(core.ButtonMoveUp, "move up", "w")
	bind(core.ButtonMoveDown, "move down", "s")
	bind(core.ButtonMoveLeft, "move left", "a")
	bind(core.ButtonMoveRight, "move right", "d")
	bind(core.ButtonActionUp, "action up", "up")
	bind(core.ButtonActionDown, "action down", "down")
	bind(core.ButtonActionLeft, "action left", "left")
	bind(core.ButtonActionRight, "action right", "right")
	bind(core.ButtonLeftShoulder, "left shoulder", "q")
	bind(core.ButtonRightShoulder, "right shoulder", "e")
	bind(core.ButtonBack, "back", "esc")
	bind(core.ButtonStart, "start", " ", "enter")

	km.Quit = key.NewBinding(
		key.WithKeys("ctrl+c", "f10"),
		key.WithHelp("ctrl+c", "quit"),
	)
	km.Record = key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "record/replay"),
	)
	return km
}

// ShortHelp returns key bindings for the status line.
func (km KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		km.Buttons[core.ButtonMoveUp],
		km.Buttons[core.ButtonActionDown],
		km.Record,
		km.Quit,
	}
}

// FullHelp returns every binding.
func (km KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{km.Buttons[:], {km.Record, km.Quit}}
}

// Command maps a key to a platform command.
func (km KeyMap) Command(msg tea.KeyMsg) platform.Command {
	switch {
	case key.Matches(msg, km.Quit):
		return platform.CommandQuit
	case key.Matches(msg, km.Record):
		return platform.CommandToggleRecord
	}
	return platform.CommandNone
}

// Button maps a key to a controller button.
func (km KeyMap) Button(msg tea.KeyMsg) (core.Button, bool) {
	for b := range km.Buttons {
		if key.Matches(msg, km.Buttons[b]) {
			return core.Button(b), true
		}
	}
	return 0, false
}

// KeyHolder turns key presses into press/release pairs. Terminals only
// report presses (and auto-repeats), so a button counts as held until no
// press has arrived for the hold duration.
type KeyHolder struct {
	mu       sync.Mutex
	hold     time.Duration
	deadline [core.ButtonCount]time.Time
	held     [core.ButtonCount]bool
}

// NewKeyHolder creates a holder releasing keys after hold.
func NewKeyHolder(hold time.Duration) *KeyHolder {
	return &KeyHolder{hold: hold}
}

// Press records a press of b at now. It returns the down event when b was
// not already held.
func (h *KeyHolder) Press(b core.Button, now time.Time) (platform.Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.deadline[b] = now.Add(h.hold)
	if h.held[b] {
		return platform.Event{}, false
	}
	h.held[b] = true
	return platform.KeyEvent(b, true), true
}

// Expire returns release events for every held button whose deadline has
// passed.
func (h *KeyHolder) Expire(now time.Time) []platform.Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []platform.Event
	for b := range h.held {
		if h.held[b] && !now.Before(h.deadline[b]) {
			h.held[b] = false
			out = append(out, platform.KeyEvent(core.Button(b), false))
		}
	}
	return out
}

// Held reports whether b is currently held.
func (h *KeyHolder) Held(b core.Button) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.held[b]
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionSessions
	MenuActionBack
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "tab":
		return MenuActionSessions
	case "b", "esc":
		return MenuActionBack
	}
	return MenuActionNone
}
