package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/handmade/internal/config"
	"github.com/vovakirdan/handmade/internal/core"
	"github.com/vovakirdan/handmade/internal/platform"
	"github.com/vovakirdan/handmade/internal/replay"
	"github.com/vovakirdan/handmade/internal/storage"
	"github.com/vovakirdan/handmade/internal/timing"
)

var (
	flagReplayModule string
	flagLoops        int
	flagRealtime     bool
	flagQuiet        bool
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Replay a recording headlessly",
	Long: `Play a recording back without a presenter and print a checksum of the
back buffer after every frame. A module whose state lives entirely in its
memory produces the same checksums on every loop.

The module is taken from the recording's metadata in the session database
when --module is not given.

Examples:
  handmade replay ~/.handmade/loop.hmi
  handmade replay ./loop.hmi --module handmade --loops 3
  handmade replay ./loop.hmi --quiet`,
	Args: cobra.ExactArgs(1),
	Run:  runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&flagReplayModule, "module", "", "Module to replay with (default from recording metadata)")
	replayCmd.Flags().IntVar(&flagLoops, "loops", 1, "Number of times to play the recording")
	replayCmd.Flags().BoolVar(&flagRealtime, "realtime", false, "Pace frames at the configured rate")
	replayCmd.Flags().BoolVar(&flagQuiet, "quiet", false, "Only print the per-loop summary")
}

func runReplay(_ *cobra.Command, args []string) {
	path := config.ExpandHome(args[0])
	cfg := loadConfig()
	cfg.Replay.Path = path
	cfg.Audio.Device = "none"
	cfg.Module.Script = ""

	logger := newLogger(os.Stderr)
	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	cfg.Module.ID = replayModule(store, path, cfg.Module.ID)

	frames, err := replay.FrameCount(path, core.NewMemory(cfg.Memory.PermanentKB*1024, cfg.Memory.TransientKB*1024))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if frames == 0 {
		fmt.Fprintf(os.Stderr, "Error: %s holds no input frames\n", path)
		os.Exit(1)
	}

	out := io.Writer(os.Stdout)
	if flagQuiet {
		out = io.Discard
	}
	presenter := &checksumPresenter{w: out, loopLen: frames}

	opts := platform.Options{
		Presenter:     presenter,
		PresenterName: "replay",
		MaxFrames:     frames * max(flagLoops, 1),
	}
	if !flagRealtime {
		opts.Clock = timing.NewSimulatedClock(time.Now(), 10*time.Microsecond)
	}
	engine, err := buildEngine(cfg, logger, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeEngine(engine, logger)

	if err := engine.StartPlayback(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := engine.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: %d frames x %d loops with module %s\n", path, frames, max(flagLoops, 1), cfg.Module.ID)
	for i, sum := range presenter.loopSums {
		fmt.Printf("  loop %d  %08x\n", i+1, sum)
	}
	if !presenter.consistent() {
		fmt.Println("Loops differ: the module keeps state outside its memory.")
		os.Exit(1)
	}
}

// replayModule picks the module a recording was made with.
func replayModule(store *storage.Store, path, fallback string) string {
	if flagReplayModule != "" {
		return flagReplayModule
	}
	if store != nil {
		if rec, err := store.LatestRecording(path); err == nil && rec != nil {
			return rec.ModuleID
		}
	}
	return fallback
}

// checksumPresenter prints a CRC of every presented frame and folds each
// loop into one value.
type checksumPresenter struct {
	w        io.Writer
	loopLen  int
	frame    int
	current  uint32
	loopSums []uint32
}

func (p *checksumPresenter) Present(buf *core.PixelBuffer) error {
	sum := buf.Checksum()
	fmt.Fprintf(p.w, "%6d  %08x\n", p.frame, sum)

	p.current = p.current*31 + sum
	p.frame++
	if p.frame%p.loopLen == 0 {
		p.loopSums = append(p.loopSums, p.current)
		p.current = 0
	}
	return nil
}

func (p *checksumPresenter) consistent() bool {
	for _, s := range p.loopSums {
		if s != p.loopSums[0] {
			return false
		}
	}
	return true
}
