// Package tui presents the platform loop in a terminal through Bubble Tea,
// locally or over SSH.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/handmade/internal/platform"
	"github.com/vovakirdan/handmade/internal/timing"
)

// frameMsg reports one finished engine frame.
type frameMsg struct {
	frame  timing.Frame
	status string
	err    error
}

var statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

// Model is the Bubble Tea model driving an Engine. Exactly one step command
// is in flight at a time, so the engine itself is only touched from that
// command's goroutine; the governor inside Step does the pacing.
type Model struct {
	ctx       context.Context
	engine    *platform.Engine
	queue     *platform.EventQueue
	presenter *Presenter
	keys      KeyMap
	holder    *KeyHolder
	help      help.Model
	title     string
	status    string
	err       error
	quitting  bool
	// lock, when set, is held for the whole of each Step.
	lock *sync.Mutex
}

// NewModel wires a model to an engine built with queue as its event source
// and presenter as its presenter.
func NewModel(ctx context.Context, engine *platform.Engine, queue *platform.EventQueue, presenter *Presenter, hold time.Duration, title string) Model {
	return Model{
		ctx:       ctx,
		engine:    engine,
		queue:     queue,
		presenter: presenter,
		keys:      DefaultKeyMap(),
		holder:    NewKeyHolder(hold),
		help:      help.New(),
		title:     title,
	}
}

// Init starts the frame loop.
func (m Model) Init() tea.Cmd {
	return m.stepCmd()
}

// stepCmd releases expired keys and runs one engine frame.
func (m Model) stepCmd() tea.Cmd {
	engine, queue, holder, ctx, lock := m.engine, m.queue, m.holder, m.ctx, m.lock
	return func() tea.Msg {
		if lock != nil {
			lock.Lock()
			defer lock.Unlock()
		}
		queue.Push(holder.Expire(time.Now())...)
		f, err := engine.Step(ctx)
		if err != nil {
			return frameMsg{err: err}
		}
		return frameMsg{frame: f, status: statusLine(engine)}
	}
}

func statusLine(e *platform.Engine) string {
	stats := e.Stats()
	fa := e.LastAudio()
	audio := "audio off"
	if !fa.Skipped {
		audio = fmt.Sprintf("audio %.0fms", fa.LatencySeconds*1000)
	}
	return fmt.Sprintf("%.1f fps  %.2fms  missed %d  %s  %s",
		stats.FPS(), float64(e.LastFrame().Elapsed.Microseconds())/1000, stats.Missed, audio, e.Session().State())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		// One row is kept for the status line.
		m.presenter.Resize(msg.Width, max(msg.Height-1, 1))
		m.help.Width = msg.Width
		return m, nil

	case frameMsg:
		if msg.err != nil {
			if !errors.Is(msg.err, platform.ErrStopped) && !errors.Is(msg.err, context.Canceled) {
				m.err = msg.err
			}
			m.quitting = true
			return m, tea.Quit
		}
		m.status = msg.status
		return m, m.stepCmd()
	}

	return m, nil
}

// handleKey turns a key into a command or a button press for the next frame.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if c := m.keys.Command(msg); c != platform.CommandNone {
		m.queue.Push(platform.CommandEvent(c))
		return m, nil
	}
	if b, ok := m.keys.Button(msg); ok {
		if ev, changed := m.holder.Press(b, time.Now()); changed {
			m.queue.Push(ev)
		}
	}
	return m, nil
}

// View renders the latest frame and the status line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	status := statusStyle.Render(m.title + "  " + m.status + "  " + m.help.ShortHelpView(m.keys.ShortHelp()))
	return m.presenter.Frame() + "\n" + status
}

// WithStepLock makes every frame run under mu, so the owner can close the
// engine from another goroutine once mu is held.
func (m Model) WithStepLock(mu *sync.Mutex) Model {
	m.lock = mu
	return m
}

// Err returns the error that stopped the engine, if any.
func (m Model) Err() error { return m.err }

// Done reports whether the engine has stopped.
func (m Model) Done() bool { return m.quitting }

// Run starts the Bubble Tea program for engine and blocks until it quits.
func Run(ctx context.Context, engine *platform.Engine, queue *platform.EventQueue, presenter *Presenter, hold time.Duration, title string) error {
	model := NewModel(ctx, engine, queue, presenter, hold, title)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if fm, ok := final.(Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}
