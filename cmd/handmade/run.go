package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/handmade/internal/config"
	"github.com/vovakirdan/handmade/internal/platform"
	"github.com/vovakirdan/handmade/internal/platform/tui"
	"github.com/vovakirdan/handmade/internal/platform/window"
	"github.com/vovakirdan/handmade/internal/registry"
)

var (
	flagPresenter string
	flagAudio     string
	flagFrames    int
	flagScript    string
	flagWorld     string
	flagRecord    bool
	flagPlayback  string
)

var runCmd = &cobra.Command{
	Use:   "run [module]",
	Short: "Run a module",
	Long: `Run a module on the platform loop.

Without a module the terminal presenter starts with a module picker and
returns to it when the module quits.

Presenters:
  tui       - Half-block true-colour rendering in this terminal (default)
  window    - Desktop window with keyboard and gamepad input
  headless  - No output; stops after --frames or Ctrl+C

Controls:
  W/A/S/D         - Move
  Arrows          - Action buttons
  Q/E             - Shoulders
  Space/Enter     - Start
  Esc             - Back
  L               - Record / loop playback / stop
  Ctrl+C or F10   - Quit

Examples:
  handmade run
  handmade run gradient
  handmade run handmade --presenter window
  handmade run --script ./demo.lua
  handmade run handmade --presenter headless --frames 300 --audio virtual
  handmade run handmade --playback ~/.handmade/loop.hmi`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagPresenter, "presenter", "tui", "Presenter: tui, window, headless")
	runCmd.Flags().StringVar(&flagAudio, "audio", "", "Audio device: oto, virtual, none (default from config)")
	runCmd.Flags().IntVar(&flagFrames, "frames", 0, "Stop after this many frames (window and headless; 0 = until quit)")
	runCmd.Flags().StringVar(&flagScript, "script", "", "Lua script to run and reload on change")
	runCmd.Flags().StringVar(&flagWorld, "world", "", "Path to world YAML")
	runCmd.Flags().BoolVar(&flagRecord, "record", false, "Start recording input from the first frame")
	runCmd.Flags().StringVar(&flagPlayback, "playback", "", "Loop this recording from the first frame")
}

func runRun(_ *cobra.Command, args []string) {
	cfg := loadConfig()

	if len(args) == 1 {
		cfg.Module.ID = args[0]
		if !registry.Exists(cfg.Module.ID) {
			fmt.Fprintf(os.Stderr, "Error: unknown module %q\n", cfg.Module.ID)
			fmt.Fprintln(os.Stderr, "Run 'handmade modules' to see available modules.")
			os.Exit(1)
		}
	}
	if flagAudio != "" {
		cfg.Audio.Device = flagAudio
	}
	if flagScript != "" {
		cfg.Module.ID = "script"
		cfg.Module.Script = flagScript
	}
	if flagWorld != "" {
		cfg.Module.World = flagWorld
	}
	if flagPlayback != "" {
		cfg.Replay.Path = flagPlayback
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch flagPresenter {
	case "tui":
		picker := len(args) == 0 && flagScript == ""
		err = runTUI(ctx, cfg, picker)
	case "window":
		err = runWindow(ctx, cfg)
	case "headless":
		err = runHeadless(ctx, cfg)
	default:
		err = fmt.Errorf("unknown presenter %q", flagPresenter)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI runs the terminal presenter. With picker set it loops through the
// module menu until the user quits there.
func runTUI(ctx context.Context, cfg config.EngineConfig, picker bool) error {
	logFile, err := openLogFile()
	if err != nil {
		return fmt.Errorf("cannot open log file: %w", err)
	}
	defer logFile.Close()
	logger := newLogger(logFile)

	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	// Get terminal size
	width, height := 80, 24
	if w, h, sizeErr := term.GetSize(int(os.Stdout.Fd())); sizeErr == nil {
		width, height = w, h
	}
	hold := time.Duration(cfg.Input.KeyHoldMs) * time.Millisecond

	for {
		if picker {
			res, menuErr := tui.RunMenu(width, height)
			if menuErr != nil {
				return menuErr
			}
			if res.Width > 0 {
				width, height = res.Width, res.Height
			}
			if res.Quit {
				return nil
			}
			if res.WantsSessions {
				goBack, sErr := tui.RunSessions(store, width, height)
				if sErr != nil {
					return sErr
				}
				if goBack {
					continue
				}
				return nil
			}
			if res.ModuleID == "" {
				return nil
			}
			cfg.Module.ID = res.ModuleID
		}

		queue := &platform.EventQueue{}
		presenter := tui.NewPresenter(width, max(height-1, 1))
		engine, buildErr := buildEngine(cfg, logger, platform.Options{
			Events:        queue,
			Presenter:     presenter,
			PresenterName: "tui",
			Store:         store,
		})
		if buildErr != nil {
			if !picker {
				return buildErr
			}
			logger.Error("cannot start module", "module", cfg.Module.ID, "err", buildErr)
			continue
		}
		if rErr := startReplay(engine, flagRecord, flagPlayback != ""); rErr != nil {
			logger.Warn("cannot start replay", "err", rErr)
		}

		runErr := tui.Run(ctx, engine, queue, presenter, hold, titleFor(cfg.Module.ID))
		if cErr := engine.Close(); cErr != nil {
			logger.Warn("engine close failed", "err", cErr)
		}

		if !picker || ctx.Err() != nil {
			return runErr
		}
		if runErr != nil {
			logger.Error("module stopped", "module", cfg.Module.ID, "err", runErr)
		}
	}
}

// runWindow runs the desktop window presenter on the main goroutine.
func runWindow(ctx context.Context, cfg config.EngineConfig) error {
	logger := newLogger(os.Stderr)
	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	queue := &platform.EventQueue{}
	win := window.New(cfg.Video, "Handmade - "+titleFor(cfg.Module.ID), queue)
	engine, err := buildEngine(cfg, logger, platform.Options{
		Events:        queue,
		Gamepads:      win,
		Presenter:     win,
		PresenterName: "window",
		Store:         store,
		MaxFrames:     flagFrames,
	})
	if err != nil {
		return err
	}
	defer closeEngine(engine, logger)

	if err := startReplay(engine, flagRecord, flagPlayback != ""); err != nil {
		logger.Warn("cannot start replay", "err", err)
	}
	return window.Run(ctx, win, engine)
}

// runHeadless runs without a presenter and prints the frame statistics.
func runHeadless(ctx context.Context, cfg config.EngineConfig) error {
	logger := newLogger(os.Stderr)
	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	engine, err := buildEngine(cfg, logger, platform.Options{
		Store:     store,
		MaxFrames: flagFrames,
	})
	if err != nil {
		return err
	}
	defer closeEngine(engine, logger)

	if err := startReplay(engine, flagRecord, flagPlayback != ""); err != nil {
		return err
	}
	if err := engine.Run(ctx); err != nil {
		return err
	}

	stats, as := engine.Stats(), engine.Synchronizer()
	fmt.Printf("%s: %s\n", cfg.Module.ID, stats.String())
	fmt.Printf("audio: %d skipped frames, %d resyncs\n", as.Skips(), as.Resyncs())
	return nil
}

func closeEngine(e *platform.Engine, logger *log.Logger) {
	if err := e.Close(); err != nil {
		logger.Warn("engine close failed", "err", err)
	}
}

func titleFor(id string) string {
	for _, m := range registry.List() {
		if m.ID == id {
			return m.Title
		}
	}
	return id
}
