package platform

import (
	"sync"

	"github.com/vovakirdan/handmade/internal/core"
)

// Command is a platform-level request that never reaches the module.
type Command int

const (
	CommandNone Command = iota
	CommandQuit
	// CommandToggleRecord cycles idle -> recording -> playback -> idle.
	CommandToggleRecord
)

func (c Command) String() string {
	switch c {
	case CommandQuit:
		return "quit"
	case CommandToggleRecord:
		return "toggle-record"
	default:
		return "none"
	}
}

// Event is either a keyboard transition or a command.
type Event struct {
	Button  core.Button
	Down    bool
	Command Command
}

// KeyEvent builds a keyboard transition event.
func KeyEvent(b core.Button, down bool) Event {
	return Event{Button: b, Down: down}
}

// CommandEvent builds a command event.
func CommandEvent(c Command) Event {
	return Event{Command: c}
}

// IsCommand reports whether the event carries a command.
func (e Event) IsCommand() bool { return e.Command != CommandNone }

// EventSource delivers the keyboard and command events since the last poll.
type EventSource interface {
	PollEvents() []Event
}

// GamepadSource reports the raw state of up to core.MaxGamepads pads.
type GamepadSource interface {
	PollGamepads(pads *[core.MaxGamepads]PadState)
}

// EventQueue is an EventSource fed from another goroutine, such as a
// presenter's own event loop.
type EventQueue struct {
	mu     sync.Mutex
	events []Event
}

// Push appends events.
func (q *EventQueue) Push(events ...Event) {
	q.mu.Lock()
	q.events = append(q.events, events...)
	q.mu.Unlock()
}

// PollEvents drains the queue.
func (q *EventQueue) PollEvents() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = nil
	return out
}

// ScriptedEvents replays a fixed schedule of events keyed by frame index.
// Each PollEvents call is one frame.
type ScriptedEvents struct {
	schedule map[int][]Event
	frame    int
}

// NewScriptedEvents creates a source from a frame -> events schedule.
func NewScriptedEvents(schedule map[int][]Event) *ScriptedEvents {
	return &ScriptedEvents{schedule: schedule}
}

// Hold schedules b to go down at frame from and up at frame to.
func (s *ScriptedEvents) Hold(b core.Button, from, to int) *ScriptedEvents {
	if s.schedule == nil {
		s.schedule = make(map[int][]Event)
	}
	s.schedule[from] = append(s.schedule[from], KeyEvent(b, true))
	s.schedule[to] = append(s.schedule[to], KeyEvent(b, false))
	return s
}

// At schedules an arbitrary event.
func (s *ScriptedEvents) At(frame int, e Event) *ScriptedEvents {
	if s.schedule == nil {
		s.schedule = make(map[int][]Event)
	}
	s.schedule[frame] = append(s.schedule[frame], e)
	return s
}

func (s *ScriptedEvents) PollEvents() []Event {
	events := s.schedule[s.frame]
	s.frame++
	return events
}

// NoGamepads reports every pad as disconnected.
type NoGamepads struct{}

func (NoGamepads) PollGamepads(pads *[core.MaxGamepads]PadState) {
	*pads = [core.MaxGamepads]PadState{}
}
