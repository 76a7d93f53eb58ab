package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/bombarena/internal/games/bomber/agent"
	"github.com/vovakirdan/bombarena/internal/games/bomber/scenario"
	"github.com/vovakirdan/bombarena/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List game modes, strategies and scenarios",
	Long:  `Shows the registered game modes, the CPU strategies and the built-in scenarios.`,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	games := registry.List()

	fmt.Println("Game modes:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, g := range games {
		maxIDLen = max(maxIDLen, len(g.ID))
	}
	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----")
	for _, g := range games {
		fmt.Printf("  %-*s  %s\n", maxIDLen, g.ID, g.Title)
	}

	fmt.Println()
	fmt.Println("Strategies:")
	fmt.Println()
	for _, name := range agent.Names() {
		marker := ""
		if name == agent.Default {
			marker = " (default)"
		}
		fmt.Printf("  %s%s\n", name, marker)
	}

	fmt.Println()
	fmt.Println("Scenarios:")
	fmt.Println()
	scenarios, err := scenario.Builtin().LoadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scenarios: %v\n", err)
		return
	}
	for _, sc := range scenarios {
		fmt.Printf("  %-12s  %-24s  %dx%d\n", sc.ID, sc.Name, sc.Width(), sc.Height())
	}

	fmt.Println()
	fmt.Println("Run 'bombarena play' to play, or 'bombarena watch --scenario <id>' to watch a scenario.")
}
