package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/bombarena/internal/config"
	"github.com/vovakirdan/bombarena/internal/core"
	"github.com/vovakirdan/bombarena/internal/games/bomber"
	"github.com/vovakirdan/bombarena/internal/platform/tui"
	"github.com/vovakirdan/bombarena/internal/registry"
	"github.com/vovakirdan/bombarena/internal/storage"
)

var (
	flagDifficulty string
	flagStrategy   string
	flagScenario   string
	flagRecord     string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play against CPU strategies",
	Long: `Start a match where you control player 1 and CPU strategies control
the other seats. Every key press is one whole turn.

Controls:
  WASD/Arrows/HJKL  - Move
  Space/X           - Place a bomb
  E                 - Lift the bomb underfoot (needs the p+ power-up)
  Shift+direction   - Throw the carried bomb
  .                 - Stay
  P                 - Pause
  R                 - Restart (after game over)
  B/Esc             - Leave (after game over or while paused)
  Q/Ctrl+C          - Quit

Difficulty options:
  easy   - Sparser arena, longer fuses, more loot, gentler CPUs
  normal - The rules from the config
  hard   - Denser arena, shorter fuses, less loot, sharper CPUs

Examples:
  bombarena play
  bombarena play --difficulty hard --strategy aggressive
  bombarena play --scenario corridor
  bombarena play --record ~/.bombarena/replays/last.bar`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		runGame("bomber")
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch CPU strategies play each other",
	Long: `Start a match where every seat is a CPU strategy. Seats use the
strategies listed in the config unless --strategy names one for all.

Examples:
  bombarena watch
  bombarena watch --strategy tactical --seed 42
  bombarena watch --scenario chain`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		runGame("bomber_watch")
	},
}

func init() {
	for _, cmd := range []*cobra.Command{playCmd, watchCmd} {
		cmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
		cmd.Flags().StringVar(&flagStrategy, "strategy", "", "Strategy for every CPU seat (see 'bombarena list')")
		cmd.Flags().StringVar(&flagScenario, "scenario", "", "Scenario file or built-in scenario ID")
		cmd.Flags().StringVar(&flagRecord, "record", "", "Write a replay of the match to this file")
	}
}

// applyGameFlags hands the command line settings to the bomber package
// before a game is created.
func applyGameFlags() {
	bomber.SetConfigPath(flagConfig)
	bomber.SetDifficultyPreset(flagDifficulty)
	bomber.SetStrategy(flagStrategy)
	bomber.SetScenario(flagScenario)
	bomber.SetReplayPath(expandHome(flagRecord))
}

// terminalConfig builds the runtime config from the terminal size and the
// global flags.
func terminalConfig() core.RuntimeConfig {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

func runGame(gameID string) {
	if _, err := config.ParsePreset(flagDifficulty); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	applyGameFlags()

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		store = nil
	}

	runErr := tui.Run(game, store, terminalConfig())

	if store != nil {
		store.Close()
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
