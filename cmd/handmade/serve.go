package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/handmade/internal/config"
	"github.com/vovakirdan/handmade/internal/platform"
	"github.com/vovakirdan/handmade/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH server",
	Long: `Start an SSH server that lets users connect and run modules in
their terminal.

Each SSH connection gets its own engine with a module picker menu. Audio is
simulated on the server, and each user records to their own file under
~/.handmade/replays. Sessions are stored in the shared database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.handmade/host_key

Examples:
  handmade serve                           # Listen on :23234 with auto-generated key
  handmade serve --ssh :2222               # Listen on port 2222
  handmade serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout in minutes (default from config)")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	if flagSSHAddr != "" {
		cfg.Server.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.Server.HostKeyPath = flagHostKey
	}
	if flagIdleTimeout > 0 {
		cfg.Server.IdleTimeoutMinutes = flagIdleTimeout
	}

	logger := newLogger(os.Stderr)
	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	factory := func(user, moduleID string, queue *platform.EventQueue, presenter *tui.Presenter) (*platform.Engine, error) {
		ecfg := cfg
		ecfg.Module.ID = moduleID
		ecfg.Module.Script = ""
		ecfg.Audio.Device = "virtual"
		ecfg.Replay.Path = userReplayPath(cfg.Replay.Path, user)
		return buildEngine(ecfg, logger.With("user", user), platform.Options{
			Events:        queue,
			Presenter:     presenter,
			PresenterName: "ssh",
			Store:         store,
		})
	}

	server, err := tui.NewSSHServer(tui.SSHServerConfigFrom(cfg), store, factory, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting handmade SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

// userReplayPath puts each SSH user's recording next to the configured one,
// in a replays directory.
func userReplayPath(base, user string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, user)
	if name == "" {
		name = "anonymous"
	}
	return filepath.Join(filepath.Dir(config.ExpandHome(base)), "replays", name+filepath.Ext(base))
}
