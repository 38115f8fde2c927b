package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/handmade/internal/core"
	"github.com/vovakirdan/handmade/internal/registry"
	"github.com/vovakirdan/handmade/internal/storage"
)

type menuProbe struct{ id string }

func (m menuProbe) ID() string    { return m.id }
func (m menuProbe) Title() string { return "Probe " + m.id }

func (menuProbe) UpdateAndRender(*core.Memory, *core.GameInput, *core.PixelBuffer) {}

func (menuProbe) GetSoundSamples(_ *core.Memory, sb *core.SoundBuffer) { sb.Silence() }

func init() {
	for _, id := range []string{"alpha", "beta"} {
		registry.Register(registry.ModuleInfo{ID: id, Title: "Probe " + id}, func(registry.Options) (registry.Module, error) {
			return menuProbe{id: id}, nil
		})
	}
}

func pressMenu(m MenuModel, msgs ...tea.KeyMsg) MenuModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(MenuModel)
	}
	return m
}

func TestMenuListsModules(t *testing.T) {
	m := NewMenuModel(80, 24)
	view := m.View()
	for _, want := range []string{"alpha", "beta", "Probe beta"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if strings.Contains(view, registry.StubID+" ") {
		t.Error("View() lists the stub module")
	}
}

func TestMenuNavigation(t *testing.T) {
	down := tea.KeyMsg{Type: tea.KeyDown}
	up := tea.KeyMsg{Type: tea.KeyUp}
	enter := tea.KeyMsg{Type: tea.KeyEnter}

	tests := []struct {
		name     string
		keys     []tea.KeyMsg
		expected string
	}{
		{"first", []tea.KeyMsg{enter}, "alpha"},
		{"down", []tea.KeyMsg{down, enter}, "beta"},
		{"clamped at bottom", []tea.KeyMsg{down, down, down, enter}, "beta"},
		{"clamped at top", []tea.KeyMsg{up, up, enter}, "alpha"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := pressMenu(NewMenuModel(80, 24), tt.keys...)
			sel := m.Selected()
			if sel == nil {
				t.Fatal("Selected() = nil")
			}
			if sel.ModuleID != tt.expected {
				t.Errorf("Selected().ModuleID = %q, expected %q", sel.ModuleID, tt.expected)
			}
		})
	}
}

func TestMenuQuitAndSessions(t *testing.T) {
	m := pressMenu(NewMenuModel(80, 24), runeKey('q'))
	if !m.IsQuitting() {
		t.Error("IsQuitting() = false after q")
	}

	m = pressMenu(NewMenuModel(80, 24), tea.KeyMsg{Type: tea.KeyTab})
	if !m.WantsSessions() {
		t.Error("WantsSessions() = false after tab")
	}
	if m.Selected() != nil {
		t.Error("Selected() set after tab")
	}
}

func TestSessionsModel(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	defer store.Close()

	now := time.Now()
	for _, rec := range []storage.SessionRecord{
		{ModuleID: "alpha", Presenter: "tui", Frames: 120, AvgMs: 33.3, WorstMs: 40, StartedAt: now.Add(-time.Hour), EndedAt: now.Add(-time.Hour)},
		{ModuleID: "beta", Presenter: "window", Frames: 60, Missed: 2, AvgMs: 33.4, WorstMs: 50, StartedAt: now, EndedAt: now},
	} {
		if _, err := store.SaveSession(rec); err != nil {
			t.Fatalf("SaveSession() error = %v", err)
		}
	}

	m := NewSessionsModel(store, 100, 30)
	if len(m.sessions) != 2 {
		t.Fatalf("sessions = %d, expected 2", len(m.sessions))
	}
	if !strings.Contains(m.summary, "alpha: 1 runs, 120 frames") {
		t.Errorf("summary = %q, expected the alpha totals", m.summary)
	}
	if !strings.Contains(m.View(), "SESSIONS") {
		t.Error("View() missing the title")
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !next.(SessionsModel).IsGoingBack() {
		t.Error("IsGoingBack() = false after esc")
	}
}

func TestSessionsModelWithoutStore(t *testing.T) {
	m := NewSessionsModel(nil, 80, 24)
	if !strings.Contains(m.View(), "No sessions recorded yet") {
		t.Error("View() without a store should show the empty message")
	}

	next, _ := m.Update(runeKey('q'))
	if !next.(SessionsModel).IsQuitting() {
		t.Error("IsQuitting() = false after q")
	}
}
