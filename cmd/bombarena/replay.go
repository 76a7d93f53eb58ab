package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/bombarena/internal/core"
	"github.com/vovakirdan/bombarena/internal/games/bomber"
	"github.com/vovakirdan/bombarena/internal/games/bomber/engine"
	"github.com/vovakirdan/bombarena/internal/games/bomber/replay"
	"github.com/vovakirdan/bombarena/internal/platform/tui"
)

var (
	flagReplayAll   bool
	flagReplayTurn  int
	flagReplayDelay int
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Print a recorded match",
	Long: `Read a replay written by 'play --record' or 'sim --replays' and print
the board. By default only the final position is shown.

Examples:
  bombarena replay last.bar
  bombarena replay last.bar --turn 12
  bombarena replay last.bar --all
  bombarena replay last.bar --delay 300`,
	Args: cobra.ExactArgs(1),
	Run:  runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&flagReplayAll, "all", false, "Print every frame")
	replayCmd.Flags().IntVar(&flagReplayTurn, "turn", -1, "Print the frame after this turn")
	replayCmd.Flags().IntVar(&flagReplayDelay, "delay", 0, "Animate in place, waiting this many milliseconds per frame")
}

func runReplay(_ *cobra.Command, args []string) {
	rep, err := replay.Open(expandHome(args[0]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(rep.Frames) == 0 {
		fmt.Fprintln(os.Stderr, "Error: replay has no frames")
		os.Exit(1)
	}

	h := rep.Header
	fmt.Printf("Match %s\n", orDash(h.MatchID))
	fmt.Printf("Scenario %s  seed %d  %dx%d  %d players  recorded %s\n",
		orDash(h.Scenario), h.Seed, h.Width, h.Height, h.Players, h.StartedAt.Local().Format("2006-01-02 15:04"))
	for i, s := range h.Strategies {
		fmt.Printf("  P%d %s\n", i+1, s)
	}
	fmt.Println()

	frames := rep.Frames[len(rep.Frames)-1:]
	switch {
	case flagReplayTurn >= 0:
		frames = nil
		for _, f := range rep.Frames {
			if f.Turn == flagReplayTurn {
				frames = append(frames, f)
			}
		}
		if len(frames) == 0 {
			fmt.Fprintf(os.Stderr, "Error: no frame for turn %d (last turn is %d)\n",
				flagReplayTurn, rep.Frames[len(rep.Frames)-1].Turn)
			os.Exit(1)
		}
	case flagReplayAll || flagReplayDelay > 0:
		frames = rep.Frames
	}

	for _, f := range frames {
		snap, err := f.State()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: turn %d: %v\n", f.Turn, err)
			os.Exit(1)
		}
		if flagReplayDelay > 0 {
			fmt.Print("\033[H\033[2J")
		}
		printFrame(f, snap)
		if flagReplayDelay > 0 {
			time.Sleep(time.Duration(flagReplayDelay) * time.Millisecond)
		}
	}
}

// printFrame draws one frame's board followed by the standings.
func printFrame(f replay.Frame, snap engine.Snapshot) {
	if f.Turn == 0 {
		fmt.Println("Start")
	} else {
		fmt.Printf("Turn %d  round %d  P%d: %s\n", f.Turn, snap.RoundCount, f.Player, f.Action)
	}

	w, h := bomber.BoardSize(snap)
	screen := core.NewScreen(w+2, h+2)
	screen.DrawBox(screen.Bounds(), core.ColorGray)
	bomber.DrawBoard(screen, snap, 1, 1, time.Time{})
	fmt.Println(tui.RenderScreen(screen))

	for _, p := range snap.Players {
		state := "alive"
		if !p.Alive {
			state = "out"
		}
		fmt.Printf("  P%d  %5d  %-5s  bombs %d/%d  range %d\n", p.ID, p.Score, state, p.ActiveBombs, p.Capacity, p.Range)
	}
	if snap.Over {
		if snap.Winner != 0 {
			fmt.Printf("  P%d wins\n", snap.Winner)
		} else {
			fmt.Println("  Draw")
		}
	}
	fmt.Println()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
