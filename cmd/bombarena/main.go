// bombarena is a turn-based bomb arena for the terminal.
//
// Usage:
//
//	bombarena list              - List game modes, strategies and scenarios
//	bombarena play              - Play against CPU strategies
//	bombarena watch             - Watch CPU strategies play each other
//	bombarena menu              - Pick a mode interactively
//	bombarena sim               - Run headless matches and record results
//	bombarena scores            - Show high scores, matches and strategy stats
//	bombarena replay <file>     - Print a recorded match
//	bombarena serve             - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>     - Set tick rate (default: 30)
//	--seed <value>   - Set RNG seed for reproducible arenas
//	--db <path>      - Set database path (default: ~/.bombarena/scores.db)
//	--config <path>  - Use a custom bomber.yaml
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/bombarena/internal/config"
)

var (
	// Global flags
	flagFPS    int
	flagSeed   int64
	flagDBPath string
	flagConfig string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bombarena",
	Short: "Bomb Arena - turn-based bomb battles in your terminal",
	Long: `Bomb Arena is a deterministic, turn-based arena game. Players take
turns moving or placing bombs; bombs detonate after a number of full rounds
and set off every bomb caught in their blast.

Examples:
  bombarena play
  bombarena play --strategy aggressive --difficulty hard
  bombarena watch --scenario chain
  bombarena sim --matches 200 --workers 8
  bombarena scores --stats
  bombarena serve --ssh :2222`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/"+config.AppDir+"/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom bomber config YAML")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(serveCmd)
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
