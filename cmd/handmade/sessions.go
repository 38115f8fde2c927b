package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/handmade/internal/platform/tui"
	"github.com/vovakirdan/handmade/internal/storage"
)

var (
	flagPlain bool
	flagLimit int
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Show recorded sessions and recordings",
	Long: `Display past sessions with their frame timing, and the input
recordings saved by the record toggle.

In a terminal the session list opens as an interactive table; --plain
prints it instead.

Examples:
  handmade sessions
  handmade sessions --plain --limit 20`,
	Run: runSessions,
}

func init() {
	sessionsCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print instead of opening the interactive table")
	sessionsCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of sessions and recordings to print")
}

func runSessions(_ *cobra.Command, _ []string) {
	cfg := loadConfig()

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening session database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if !flagPlain && term.IsTerminal(int(os.Stdout.Fd())) {
		width, height := 80, 24
		if w, h, sizeErr := term.GetSize(int(os.Stdout.Fd())); sizeErr == nil {
			width, height = w, h
		}
		if _, err := tui.RunSessions(store, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := printSessions(store, flagLimit); err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving sessions: %v\n", err)
		os.Exit(1)
	}
}

func printSessions(store *storage.Store, limit int) error {
	sessions, err := store.RecentSessions(limit)
	if err != nil {
		return err
	}

	fmt.Println("Recent sessions")
	fmt.Println()
	if len(sessions) == 0 {
		fmt.Println("No sessions recorded yet.")
	} else {
		fmt.Printf("  %-16s  %-10s  %-8s  %8s  %6s  %7s  %7s\n", "Started", "Module", "Via", "Frames", "Missed", "Avg ms", "Worst")
		for _, s := range sessions {
			fmt.Printf("  %-16s  %-10s  %-8s  %8d  %6d  %7.2f  %7.2f\n",
				s.StartedAt.Format("2006-01-02 15:04"), s.ModuleID, s.Presenter,
				s.Frames, s.Missed, s.AvgMs, s.WorstMs)
		}
	}

	stats, err := store.GetAllModuleStats()
	if err != nil {
		return err
	}
	if len(stats) > 0 {
		ids := make([]string, 0, len(stats))
		for id := range stats {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		fmt.Println()
		fmt.Println("Per module")
		fmt.Println()
		for _, id := range ids {
			st := stats[id]
			fmt.Printf("  %-10s  %3d sessions  %8d frames  %6d missed  avg %.2fms  worst %.2fms\n",
				id, st.Sessions, st.TotalFrames, st.TotalMissed, st.AvgMs, st.WorstMs)
		}
	}

	recordings, err := store.Recordings(limit)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println("Recordings")
	fmt.Println()
	if len(recordings) == 0 {
		fmt.Println("No recordings yet. Press L while a module runs to record.")
		return nil
	}
	for _, r := range recordings {
		fmt.Printf("  %-16s  %-10s  %6d frames  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.ModuleID, r.Frames, r.Path)
	}
	return nil
}
