package module

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/handmade/internal/core"
	"github.com/vovakirdan/handmade/internal/registry"
)

type namedModule struct {
	registry.Stub
	id string
}

func (m namedModule) ID() string { return m.id }

func TestSlotSwapsOnlyOnCommit(t *testing.T) {
	s := NewSlot(nil)
	if s.Current().ID() != registry.StubID {
		t.Errorf("empty slot = %q, expected stub", s.Current().ID())
	}

	s.Stage(namedModule{id: "a"})
	if s.Current().ID() != registry.StubID {
		t.Error("Stage should not change the current module")
	}
	if !s.Pending() {
		t.Error("Pending() = false after Stage")
	}

	s.Stage(namedModule{id: "b"})
	m, ok := s.Commit()
	if !ok || m.ID() != "b" || s.Current().ID() != "b" {
		t.Errorf("Commit() = %v, %v; expected the last staged module", m, ok)
	}
	if _, ok := s.Commit(); ok {
		t.Error("second Commit should have nothing to install")
	}
}

func TestSlotInFlightCallKeepsModule(t *testing.T) {
	s := NewSlot(namedModule{id: "old"})
	m := s.Current()

	// A swap staged while a frame is running does not affect that frame.
	s.Stage(namedModule{id: "new"})
	m.UpdateAndRender(core.NewMemory(1, 1), &core.GameInput{}, core.NewPixelBuffer(1, 1))
	if m.ID() != "old" || s.Current().ID() != "old" {
		t.Error("module changed before the frame boundary")
	}
	s.Commit()
	if s.Current().ID() != "new" {
		t.Errorf("Current() = %q after Commit, expected new", s.Current().ID())
	}
}

func TestScriptWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.lua")
	if err := os.WriteFile(path, []byte("v1"), 0o600); err != nil {
		t.Fatal(err)
	}

	loader := func(p string) (registry.Module, error) {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		if string(data) == "broken" {
			return nil, errors.New("syntax error")
		}
		return namedModule{id: string(data)}, nil
	}

	slot := NewSlot(nil)
	w := NewScriptWatcher(path, loader, slot, log.New(io.Discard))
	if err := w.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	slot.Commit()
	if slot.Current().ID() != "v1" {
		t.Fatalf("Current() = %q, expected v1", slot.Current().ID())
	}

	if w.Poll() {
		t.Error("Poll() without a change should not reload")
	}

	writeLater(t, path, "broken")
	if !w.Poll() {
		t.Fatal("Poll() should notice the change")
	}
	slot.Commit()
	if slot.Current().ID() != registry.StubID {
		t.Errorf("Current() = %q after failed load, expected stub", slot.Current().ID())
	}

	writeLater(t, path, "v2!")
	w.Poll()
	slot.Commit()
	if slot.Current().ID() != "v2!" {
		t.Errorf("Current() = %q after fix, expected v2!", slot.Current().ID())
	}
	if w.Loads() != 3 {
		t.Errorf("Loads() = %d, expected 3", w.Loads())
	}
}

// writeLater rewrites path with a modification time distinct from the last.
func writeLater(t *testing.T, path, content string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	next := info.ModTime().Add(2 * time.Second)
	if err := os.Chtimes(path, next, next); err != nil {
		t.Fatal(err)
	}
}
