package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/handmade/internal/audio"
	"github.com/vovakirdan/handmade/internal/config"
	"github.com/vovakirdan/handmade/internal/core"
	"github.com/vovakirdan/handmade/internal/module"
	"github.com/vovakirdan/handmade/internal/replay"
	"github.com/vovakirdan/handmade/internal/storage"
	"github.com/vovakirdan/handmade/internal/timing"
)

// ErrStopped is returned by Step once a quit command has been received.
var ErrStopped = errors.New("platform: engine stopped")

// Options carries the collaborators an Engine is wired to. Only Slot is
// required; everything else has a headless default.
type Options struct {
	Logger        *log.Logger
	Slot          *module.Slot
	Watcher       *module.ScriptWatcher
	Events        EventSource
	Gamepads      GamepadSource
	Presenter     Presenter
	PresenterName string
	// Device overrides the device named in the audio config.
	Device audio.Device
	Clock  timing.Clock
	// Store receives the session summary and recording metadata. Optional.
	Store *storage.Store
	// MaxFrames stops Run after this many frames; 0 runs until quit.
	MaxFrames int
}

// Engine is the application context of one running platform loop.
type Engine struct {
	cfg    config.EngineConfig
	logger *log.Logger

	slot    *module.Slot
	watcher *module.ScriptWatcher

	mem      *core.Memory
	inputs   InputBuffers
	inputCfg InputConfig
	pads     [core.MaxGamepads]PadState
	pixels   *core.PixelBuffer

	device   audio.Device
	sync     *audio.Synchronizer
	governor *timing.Governor
	session  *replay.Session

	events        EventSource
	gamepads      GamepadSource
	presenter     Presenter
	presenterName string

	store     *storage.Store
	maxFrames int

	stats     timing.Stats
	lastFrame timing.Frame
	lastAudio audio.FrameAudio
	frame     int
	running   bool
	started   time.Time
	persisted bool
}

// New builds an engine from cfg. The pixel buffer, memory arenas, audio ring
// and governor are all sized from the config.
func New(cfg config.EngineConfig, opts Options) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Slot == nil {
		return nil, errors.New("platform: engine needs a module slot")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Clock == nil {
		opts.Clock = timing.SystemClock{}
	}
	if opts.Events == nil {
		opts.Events = &EventQueue{}
	}
	if opts.Gamepads == nil {
		opts.Gamepads = NoGamepads{}
	}
	if opts.Presenter == nil {
		opts.Presenter = &HeadlessPresenter{}
		opts.PresenterName = "headless"
	}

	out, frameBytes, err := SoundOutputFor(cfg)
	if err != nil {
		return nil, err
	}
	device := opts.Device
	if device == nil {
		device, err = OpenDevice(cfg, out, opts.Clock)
		if err != nil {
			return nil, err
		}
	}
	sync, err := audio.NewSynchronizer(device, out, frameBytes, opts.Logger)
	if err != nil {
		closeDevice(device)
		return nil, err
	}

	e := &Engine{
		cfg:     cfg,
		logger:  opts.Logger,
		slot:    opts.Slot,
		watcher: opts.Watcher,
		mem:     core.NewMemory(cfg.Memory.PermanentKB*1024, cfg.Memory.TransientKB*1024),
		inputCfg: InputConfig{
			Deadzone:       int16(cfg.Input.Deadzone),
			StickThreshold: float32(cfg.Input.StickThreshold),
		},
		pixels:        core.NewPixelBuffer(cfg.Video.Width, cfg.Video.Height),
		device:        device,
		sync:          sync,
		governor:      timing.NewGovernor(cfg.Timing.FrameDuration(), opts.Clock, cfg.Timing.SleepGranular),
		session:       replay.NewSession(cfg.Replay.Path, opts.Logger),
		events:        opts.Events,
		gamepads:      opts.Gamepads,
		presenter:     opts.Presenter,
		presenterName: opts.PresenterName,
		store:         opts.Store,
		maxFrames:     opts.MaxFrames,
		running:       true,
		started:       time.Now(),
	}

	e.logger.Info("engine ready",
		"module", e.slot.Current().ID(),
		"size", fmt.Sprintf("%dx%d", cfg.Video.Width, cfg.Video.Height),
		"frame", e.governor.Target(),
		"audio", cfg.Audio.Device,
		"ring", out.BufferSize,
		"safety", out.SafetyBytes,
	)
	return e, nil
}

// Memory returns the module's memory arenas.
func (e *Engine) Memory() *core.Memory { return e.mem }

// Pixels returns the back buffer.
func (e *Engine) Pixels() *core.PixelBuffer { return e.pixels }

// Session returns the record/replay session.
func (e *Engine) Session() *replay.Session { return e.session }

// Stats returns the frame statistics so far.
func (e *Engine) Stats() timing.Stats { return e.stats }

// Synchronizer returns the audio synchronizer.
func (e *Engine) Synchronizer() *audio.Synchronizer { return e.sync }

// FrameIndex is the number of completed frames.
func (e *Engine) FrameIndex() int { return e.frame }

// Running reports whether a quit command has not yet been received.
func (e *Engine) Running() bool { return e.running }

// LastAudio returns the synchronizer report of the most recent frame.
func (e *Engine) LastAudio() audio.FrameAudio { return e.lastAudio }

// LastFrame returns the governor report of the most recent frame.
func (e *Engine) LastFrame() timing.Frame { return e.lastFrame }

// StartRecording begins recording at the next frame.
func (e *Engine) StartRecording() error {
	return e.session.BeginRecording(e.mem)
}

// StartPlayback restores the recording's memory snapshot and loops its
// input from the next frame.
func (e *Engine) StartPlayback() error {
	return e.session.BeginPlayback(e.mem)
}

// Stop makes the next Step return ErrStopped.
func (e *Engine) Stop() { e.running = false }

// Step runs one frame: input, record or playback, simulation, audio, wait,
// present, then the frame boundary work.
func (e *Engine) Step(ctx context.Context) (timing.Frame, error) {
	if err := ctx.Err(); err != nil {
		return timing.Frame{}, err
	}
	if !e.running {
		return timing.Frame{}, ErrStopped
	}

	in := e.gatherInput()
	if !e.running {
		return timing.Frame{}, ErrStopped
	}
	e.recordOrPlayback(in)

	m := e.slot.Current()
	m.UpdateAndRender(e.mem, in, e.pixels)

	e.lastAudio = e.sync.Fill(func(sb *core.SoundBuffer) {
		m.GetSoundSamples(e.mem, sb)
	})

	frame := e.governor.Wait()
	e.lastFrame = frame
	e.stats.Add(frame)
	if frame.Missed {
		e.logger.Debug("missed frame", "frame", e.frame, "work", frame.Work, "target", e.governor.Target())
	}

	if err := e.presenter.Present(e.pixels); err != nil {
		return frame, fmt.Errorf("platform: present failed: %w", err)
	}

	e.sync.Observe()
	e.inputs.Swap()

	if e.watcher != nil {
		e.watcher.Poll()
	}
	if next, swapped := e.slot.Commit(); swapped {
		e.logger.Info("module swapped", "id", next.ID(), "frame", e.frame)
	}

	e.logger.Debug("frame",
		"n", e.frame,
		"ms", float64(frame.Elapsed.Microseconds())/1000,
		"audio_latency", e.lastAudio.LatencySeconds,
		"samples", e.lastAudio.SampleCount,
	)
	e.frame++
	return frame, nil
}

// Run steps until ctx is cancelled, a quit command arrives or MaxFrames is
// reached, then saves the session summary.
func (e *Engine) Run(ctx context.Context) error {
	e.governor.Reset()
	defer e.persistSession()

	for e.maxFrames <= 0 || e.frame < e.maxFrames {
		if _, err := e.Step(ctx); err != nil {
			if errors.Is(err, ErrStopped) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
	return nil
}

// Close ends any recording or playback, saves the session summary if Run
// did not, and releases the audio device.
func (e *Engine) Close() error {
	err := e.finishSession()
	e.persistSession()
	if cerr := closeDevice(e.device); err == nil {
		err = cerr
	}
	return err
}

func (e *Engine) gatherInput() *core.GameInput {
	in := e.inputs.BeginFrame(e.governor.TargetSeconds())
	kb := in.Keyboard()

	for _, ev := range e.events.PollEvents() {
		if ev.IsCommand() {
			e.handleCommand(ev.Command)
			continue
		}
		if ev.Button < 0 || ev.Button >= core.ButtonCount {
			continue
		}
		ProcessKeyboardMessage(&kb.Buttons[ev.Button], ev.Down)
	}

	e.gamepads.PollGamepads(&e.pads)
	prev := e.inputs.Old()
	for i, pad := range e.pads {
		c := i + 1
		ProcessGamepad(&prev.Controllers[c], &in.Controllers[c], pad, e.inputCfg)
	}
	return in
}

func (e *Engine) handleCommand(c Command) {
	switch c {
	case CommandQuit:
		e.logger.Info("quit requested", "frame", e.frame)
		e.running = false
	case CommandToggleRecord:
		e.toggleRecording()
	}
}

func (e *Engine) toggleRecording() {
	wasRecording := e.session.State() == replay.Recording
	frames := e.session.Frames()

	state, err := e.session.Toggle(e.mem)
	if err != nil {
		e.logger.Warn("record toggle failed", "state", state, "err", err)
		return
	}
	if wasRecording {
		e.saveRecording(frames)
	}
}

func (e *Engine) recordOrPlayback(in *core.GameInput) {
	switch e.session.State() {
	case replay.Recording:
		if err := e.session.RecordInput(in); err != nil {
			e.logger.Warn("recording stopped", "err", err)
			frames := e.session.Frames()
			//nolint:errcheck // Already failing; the write error was logged.
			e.session.Close()
			e.saveRecording(frames)
		}
	case replay.Playing:
		if err := e.session.PlaybackInput(in); err != nil {
			e.logger.Warn("playback stopped", "err", err)
			//nolint:errcheck // Already failing; the read error was logged.
			e.session.Close()
		}
	}
}

func (e *Engine) saveRecording(frames int) {
	if e.store == nil || frames == 0 {
		return
	}
	_, err := e.store.SaveRecording(storage.RecordingRecord{
		Path:        e.session.Path(),
		ModuleID:    e.slot.Current().ID(),
		Frames:      frames,
		MemoryBytes: e.mem.TotalSize(),
		CreatedAt:   time.Now(),
	})
	if err != nil {
		e.logger.Warn("could not save recording metadata", "err", err)
	}
}

func (e *Engine) finishSession() error {
	if e.session.State() == replay.Recording {
		frames := e.session.Frames()
		if _, err := e.session.EndRecording(); err != nil {
			return err
		}
		e.saveRecording(frames)
		return nil
	}
	return e.session.Close()
}

func (e *Engine) persistSession() {
	if e.persisted || e.stats.Frames == 0 {
		return
	}
	e.persisted = true
	e.logger.Info("session finished", "stats", e.stats.String(), "audio_skips", e.sync.Skips(), "resyncs", e.sync.Resyncs())

	if e.store == nil {
		return
	}
	_, err := e.store.SaveSession(storage.SessionRecord{
		ModuleID:   e.slot.Current().ID(),
		Presenter:  e.presenterName,
		Frames:     e.stats.Frames,
		Missed:     e.stats.Missed,
		AudioSkips: e.sync.Skips(),
		Resyncs:    e.sync.Resyncs(),
		AvgMs:      e.stats.AverageMs(),
		WorstMs:    e.stats.WorstMs(),
		StartedAt:  e.started,
		EndedAt:    time.Now(),
	})
	if err != nil {
		e.logger.Warn("could not save session", "err", err)
	}
}

func closeDevice(d audio.Device) error {
	if c, ok := d.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
