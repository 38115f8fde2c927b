package module

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/handmade/internal/registry"
)

// Loader builds a module from a source file.
type Loader func(path string) (registry.Module, error)

// ScriptWatcher reloads a module when its source file changes on disk.
type ScriptWatcher struct {
	path    string
	load    Loader
	slot    *Slot
	logger  *log.Logger
	modTime time.Time
	size    int64
	loads   int
}

// NewScriptWatcher watches path and stages modules built by load into slot.
func NewScriptWatcher(path string, load Loader, slot *Slot, logger *log.Logger) *ScriptWatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &ScriptWatcher{
		path:   path,
		load:   load,
		slot:   slot,
		logger: logger,
	}
}

// Path returns the watched file.
func (w *ScriptWatcher) Path() string { return w.path }

// Loads is the number of reload attempts, successful or not.
func (w *ScriptWatcher) Loads() int { return w.loads }

// Load builds the module now and stages it. On failure the stub is staged
// and the error returned.
func (w *ScriptWatcher) Load() error {
	info, err := os.Stat(w.path)
	if err == nil {
		w.modTime = info.ModTime()
		w.size = info.Size()
	}
	return w.reload()
}

// Poll checks the file once and reloads it if its modification time or size
// changed. It reports whether a reload was attempted.
func (w *ScriptWatcher) Poll() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	if info.ModTime().Equal(w.modTime) && info.Size() == w.size {
		return false
	}
	w.modTime = info.ModTime()
	w.size = info.Size()

	//nolint:errcheck // Failure is logged and the stub staged.
	w.reload()
	return true
}

func (w *ScriptWatcher) reload() error {
	w.loads++
	m, err := w.load(w.path)
	if err != nil {
		w.logger.Warn("module load failed, using stub", "path", w.path, "err", err)
		w.slot.Stage(registry.Stub{Reason: err.Error()})
		return fmt.Errorf("module: cannot load %s: %w", w.path, err)
	}
	w.logger.Info("module loaded", "path", w.path, "id", m.ID())
	w.slot.Stage(m)
	return nil
}
