package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/handmade/internal/registry"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List all available modules",
	Long:  `Shows a list of all modules registered with the platform.`,
	Run:   runModules,
}

func runModules(_ *cobra.Command, _ []string) {
	modules := registry.List()

	if len(modules) == 0 {
		fmt.Println("No modules available.")
		return
	}

	fmt.Println("Available modules:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, m := range modules {
		if len(m.ID) > maxIDLen {
			maxIDLen = len(m.ID)
		}
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----")

	for _, m := range modules {
		fmt.Printf("  %-*s  %s\n", maxIDLen, m.ID, m.Title)
	}

	fmt.Println()
	fmt.Println("Run 'handmade run <id>' to run a module.")
}
