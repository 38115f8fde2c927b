// handmade runs a fixed-timestep game platform loop with synchronized audio,
// input recording and live module swapping.
//
// Usage:
//
//	handmade run [module]     - Run a module (menu in the terminal when omitted)
//	handmade replay <file>    - Replay a recording headlessly with frame checksums
//	handmade modules          - List available modules
//	handmade sessions         - Show recorded sessions
//	handmade serve            - Start SSH server for remote sessions
//
// Global flags:
//
//	--config <path>     - Engine config YAML (default: search ~/.handmade/configs, ./configs)
//	--db <path>         - Session database (default: from config)
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/handmade/internal/config"
	"github.com/vovakirdan/handmade/internal/storage"

	// Import modules to register them
	_ "github.com/vovakirdan/handmade/internal/games/gradient"
	_ "github.com/vovakirdan/handmade/internal/games/handmade"
	_ "github.com/vovakirdan/handmade/internal/games/script"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "handmade",
	Short: "Handmade - a fixed-timestep platform loop for small game modules",
	Long: `Handmade runs game modules on a platform layer that paces frames to a
fixed target, keeps audio a safe distance ahead of the play cursor, records
and loops input, and swaps modules between frames.

Available commands:
  run       - Run a module in the terminal, a window, or headless
  replay    - Replay a recording and print per-frame checksums
  modules   - Show all available modules
  sessions  - View past sessions and recordings
  serve     - Start SSH server for remote sessions

Examples:
  handmade run
  handmade run handmade --presenter window
  handmade run --script ./demo.lua
  handmade replay ~/.handmade/loop.hmi
  handmade serve --ssh :2222`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to engine config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to session database (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(modulesCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig loads the engine config or exits.
func loadConfig() config.EngineConfig {
	cfg, err := config.LoadEngine(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	return cfg
}

// newLogger creates the command logger writing to w.
func newLogger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "handmade",
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", flagLogLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// openLogFile opens ~/.handmade/handmade.log for appending, for commands
// whose stderr belongs to the terminal UI.
func openLogFile() (*os.File, error) {
	path := config.ExpandHome("~/.handmade/handmade.log")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// openStore opens the session database. Failure is only a warning: every
// command but sessions works without it.
func openStore(cfg config.EngineConfig, logger *log.Logger) *storage.Store {
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		logger.Warn("could not open session database", "err", err)
		return nil
	}
	return store
}
