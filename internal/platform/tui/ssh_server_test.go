package tui

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/handmade/internal/config"
	"github.com/vovakirdan/handmade/internal/module"
	"github.com/vovakirdan/handmade/internal/platform"
	"github.com/vovakirdan/handmade/internal/registry"
	"github.com/vovakirdan/handmade/internal/timing"
)

func newTestServer(t *testing.T, started *[]string) *SSHServer {
	t.Helper()
	dir := t.TempDir()
	logger := log.New(io.Discard)

	factory := func(user, moduleID string, queue *platform.EventQueue, presenter *Presenter) (*platform.Engine, error) {
		if moduleID == "beta" {
			return nil, errors.New("beta is broken")
		}
		*started = append(*started, user+"/"+moduleID)

		cfg := config.DefaultEngineConfig()
		cfg.Video.Width, cfg.Video.Height = 32, 18
		cfg.Audio.Device = "virtual"
		cfg.Memory.PermanentKB, cfg.Memory.TransientKB = 4, 4
		cfg.Replay.Path = filepath.Join(dir, user+".hmi")

		m, err := registry.Create(moduleID, registry.Options{})
		if err != nil {
			return nil, err
		}
		return platform.New(cfg, platform.Options{
			Logger:        logger,
			Slot:          module.NewSlot(m),
			Events:        queue,
			Presenter:     presenter,
			PresenterName: "ssh",
			Clock:         timing.NewSimulatedClock(time.Unix(0, 0), 10*time.Microsecond),
		})
	}

	return &SSHServer{
		config:  SSHServerConfig{KeyHold: 100 * time.Millisecond},
		factory: factory,
		logger:  logger,
	}
}

func updateSession(t *testing.T, m SessionModel, msg tea.Msg) (SessionModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	sm, ok := next.(SessionModel)
	if !ok {
		t.Fatalf("Update() returned %T, expected SessionModel", next)
	}
	return sm, cmd
}

func TestSessionModelRunsModuleAndReturnsToMenu(t *testing.T) {
	var started []string
	srv := newTestServer(t, &started)
	active := &activeEngine{}
	m := newSessionModel(context.Background(), srv, "ada", active, 40, 12)

	m, cmd := updateSession(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.view != viewPlay {
		t.Fatalf("view = %v after selecting, expected play", m.view)
	}
	if len(started) != 1 || started[0] != "ada/alpha" {
		t.Fatalf("started = %v, expected [ada/alpha]", started)
	}
	if active.engine == nil {
		t.Fatal("active engine not set")
	}

	// One frame, then quit from the keyboard.
	m, _ = updateSession(t, m, cmd())
	m, _ = updateSession(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	m, cmd = updateSession(t, m, m.play.stepCmd()())

	if m.view != viewMenu {
		t.Errorf("view = %v after quit, expected menu", m.view)
	}
	if m.quitting {
		t.Error("quitting the module ended the SSH session")
	}
	if active.engine != nil {
		t.Error("engine still active after returning to the menu")
	}
	if cmd != nil {
		if _, isQuit := cmd().(tea.QuitMsg); isQuit {
			t.Error("returning to the menu quit the program")
		}
	}
}

func TestSessionModelFactoryError(t *testing.T) {
	var started []string
	srv := newTestServer(t, &started)
	m := newSessionModel(context.Background(), srv, "ada", &activeEngine{}, 80, 24)

	m, _ = updateSession(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = updateSession(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.view != viewMenu {
		t.Fatalf("view = %v, expected menu after a failed start", m.view)
	}
	if !strings.Contains(m.View(), "beta is broken") {
		t.Error("View() does not show the start error")
	}
}

func TestSessionModelSessionsAndQuit(t *testing.T) {
	var started []string
	srv := newTestServer(t, &started)
	m := newSessionModel(context.Background(), srv, "ada", &activeEngine{}, 80, 24)

	m, _ = updateSession(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.view != viewSessions {
		t.Fatalf("view = %v, expected sessions", m.view)
	}
	m, _ = updateSession(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.view != viewMenu {
		t.Fatalf("view = %v, expected menu after esc", m.view)
	}

	m, cmd := updateSession(t, m, runeKey('q'))
	if !m.quitting || cmd == nil {
		t.Fatal("q in the menu did not end the session")
	}
}
