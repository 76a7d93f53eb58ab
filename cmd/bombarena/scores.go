package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/bombarena/internal/registry"
	"github.com/vovakirdan/bombarena/internal/storage"
)

var (
	flagScoresMatches int
	flagScoresStats   bool
	flagScoresClear   bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [game]",
	Short: "Show high scores, recent matches and strategy stats",
	Long: `Display the top 10 high scores for a game mode (default: bomber).

Examples:
  bombarena scores
  bombarena scores bomber_watch
  bombarena scores --matches 20
  bombarena scores --stats
  bombarena scores bomber --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresMatches, "matches", 0, "Show the N most recent matches instead")
	scoresCmd.Flags().BoolVar(&flagScoresStats, "stats", false, "Show per-strategy results across all matches instead")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete the high scores and match history of the game")
}

func runScores(_ *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	ctx := context.Background()

	switch {
	case flagScoresStats:
		err = printStrategyStats(ctx, store)
	case flagScoresMatches > 0:
		err = printRecentMatches(ctx, store, flagScoresMatches)
	default:
		gameID := "bomber"
		if len(args) > 0 {
			gameID = args[0]
		}
		if !registry.Exists(gameID) && gameID != simGameID {
			fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", gameID)
			fmt.Fprintln(os.Stderr, "Run 'bombarena list' to see available game modes.")
			os.Exit(1)
		}
		if flagScoresClear {
			err = store.ClearScores(gameID)
			if err == nil {
				err = store.ClearMatches(ctx, gameID)
			}
			if err == nil {
				fmt.Printf("Cleared high scores and match history for %s.\n", gameID)
			}
			break
		}
		err = printHighScores(store, gameID)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHighScores(store *storage.Store, gameID string) error {
	scores, err := store.TopScores(gameID, 10)
	if err != nil {
		return err
	}

	fmt.Printf("High Scores - %s\n", gameID)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'bombarena play' to set the first high score!")
		return nil
	}

	fmt.Printf("  %-4s  %-10s  %s\n", "Rank", "Score", "Date")
	fmt.Printf("  %-4s  %-10s  %s\n", "----", "-----", "----")
	for i, entry := range scores {
		fmt.Printf("  %-4d  %-10d  %s\n", i+1, entry.Score, entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	stats, err := store.GetGameStats(gameID)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Best: %d  Average: %.1f  Games: %d\n", stats.HighScore, stats.AvgScore, stats.GamesCount)
	return nil
}

func printRecentMatches(ctx context.Context, store *storage.Store, limit int) error {
	matches, err := store.RecentMatches(ctx, limit)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("No matches recorded yet.")
		return nil
	}

	fmt.Printf("  %-16s  %-12s  %6s  %-8s  %-13s  %s\n", "Date", "Mode", "Rounds", "Winner", "End", "Seats")
	fmt.Printf("  %-16s  %-12s  %6s  %-8s  %-13s  %s\n", "----", "----", "------", "------", "---", "-----")
	for _, m := range matches {
		winner := "draw"
		if m.WinnerSeat != 0 {
			winner = fmt.Sprintf("P%d", m.WinnerSeat)
		}
		seats := make([]string, 0, len(m.Players))
		for _, p := range m.Players {
			seats = append(seats, fmt.Sprintf("P%d %s %d", p.Seat, p.Strategy, p.Score))
		}
		fmt.Printf("  %-16s  %-12s  %6d  %-8s  %-13s  %s\n",
			m.CreatedAt.Format("2006-01-02 15:04"), m.GameID, m.Rounds, winner, m.EndReason,
			strings.Join(seats, ", "))
	}
	return nil
}

func printStrategyStats(ctx context.Context, store *storage.Store) error {
	stats, err := store.StrategyStats(ctx)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Println("No matches recorded yet.")
		return nil
	}

	fmt.Printf("  %-12s  %6s  %6s  %7s  %8s  %9s\n", "Strategy", "Games", "Wins", "Win %", "Survived", "Avg score")
	fmt.Printf("  %-12s  %6s  %6s  %7s  %8s  %9s\n", "--------", "-----", "----", "-----", "--------", "---------")
	for _, st := range stats {
		fmt.Printf("  %-12s  %6d  %6d  %6.1f%%  %8d  %9.1f\n",
			st.Strategy, st.Games, st.Wins, st.WinRate()*100, st.Survived, st.AvgScore)
	}
	return nil
}
