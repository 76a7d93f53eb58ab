package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/bombarena/internal/config"
	"github.com/vovakirdan/bombarena/internal/games/bomber/agent"
	"github.com/vovakirdan/bombarena/internal/games/bomber/scenario"
	"github.com/vovakirdan/bombarena/internal/games/bomber/sim"
	"github.com/vovakirdan/bombarena/internal/storage"
)

// simGameID is the game ID stored with headless matches.
const simGameID = "bomber_sim"

var (
	flagSimMatches    int
	flagSimWorkers    int
	flagSimStrategies string
	flagSimScenario   string
	flagSimDifficulty string
	flagSimReplays    string
	flagSimRounds     int
	flagSimNoStore    bool
	flagSimVerbose    bool
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run headless matches between CPU strategies",
	Long: `Play a batch of matches without a terminal UI. Matches run in
parallel; every result is stored in the scores database and a summary per
strategy is printed at the end. Ctrl+C stops the batch after the running
matches.

Match i uses seed --seed + i, so a batch with a fixed seed is reproducible.

Examples:
  bombarena sim
  bombarena sim --matches 500 --workers 8 --seed 1
  bombarena sim --strategies tactical,aggressive
  bombarena sim --scenario chain --replays ./replays`,
	Args: cobra.NoArgs,
	Run:  runSim,
}

func init() {
	simCmd.Flags().IntVar(&flagSimMatches, "matches", 100, "Number of matches to play")
	simCmd.Flags().IntVar(&flagSimWorkers, "workers", runtime.NumCPU(), "Matches played in parallel")
	simCmd.Flags().StringVar(&flagSimStrategies, "strategies", "", "Comma-separated strategies per seat (default: from config)")
	simCmd.Flags().StringVar(&flagSimScenario, "scenario", "", "Scenario file or built-in scenario ID")
	simCmd.Flags().StringVar(&flagSimDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	simCmd.Flags().StringVar(&flagSimReplays, "replays", "", "Directory to write one replay per match")
	simCmd.Flags().IntVar(&flagSimRounds, "rounds", 0, "Round cap override (0 = from config)")
	simCmd.Flags().BoolVar(&flagSimNoStore, "no-store", false, "Do not record results in the database")
	simCmd.Flags().BoolVarP(&flagSimVerbose, "verbose", "v", false, "Log every match")
}

func runSim(_ *cobra.Command, _ []string) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "sim",
	})
	if flagSimVerbose {
		logger.SetLevel(log.DebugLevel)
	}

	matches, err := buildMatches()
	if err != nil {
		logger.Fatal("invalid batch", "error", err)
	}

	var store *storage.Store
	if !flagSimNoStore {
		if store, err = storage.Open(flagDBPath); err != nil {
			logger.Fatal("could not open scores database", "error", err)
		}
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting batch", "matches", len(matches), "workers", flagSimWorkers)
	start := time.Now()

	// This loop is the only writer to the database
	var summary sim.Summary
	for r := range sim.Run(ctx, matches, flagSimWorkers, logger) {
		summary.Add(r)
		if r.Err != nil {
			logger.Warn("match failed", "match", r.Match.Index, "seed", r.Match.Seed, "error", r.Err)
			continue
		}
		logger.Debug("match done",
			"match", r.Match.Index,
			"winner", r.Final.Winner,
			"rounds", r.Final.RoundCount,
			"fallbacks", r.Fallbacks,
		)
		if store == nil {
			continue
		}
		rec := storage.NewMatchRecord(simGameID, r.Match.Seed, r.Final, r.Seats, r.Elapsed)
		if r.Match.Scenario != nil {
			rec.Scenario = r.Match.Scenario.ID
		}
		if _, err := store.SaveMatch(context.Background(), rec); err != nil {
			logger.Error("could not save match", "match", r.Match.Index, "error", err)
		}
	}

	printSummary(&summary, time.Since(start))
	if ctx.Err() != nil {
		logger.Warn("batch interrupted")
	}
}

// buildMatches turns the flags and the loaded config into match specs.
func buildMatches() ([]sim.Match, error) {
	if flagSimMatches <= 0 {
		return nil, fmt.Errorf("--matches must be positive")
	}

	bc, err := config.LoadBomber(flagConfig)
	if err != nil {
		return nil, err
	}
	preset, err := config.ParsePreset(flagSimDifficulty)
	if err != nil {
		return nil, err
	}
	config.ApplyBomberPreset(&bc, preset)

	strategies := bc.Agents.Strategies
	if flagSimStrategies != "" {
		strategies = strings.Split(flagSimStrategies, ",")
	}
	for i, name := range strategies {
		strategies[i] = strings.TrimSpace(name)
		if _, err := agent.New(strategies[i], 0); err != nil {
			return nil, err
		}
	}

	var sc *scenario.Scenario
	if flagSimScenario != "" {
		if sc, err = scenario.Load(flagSimScenario); err != nil {
			return nil, err
		}
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	base := bc.ToEngine(seed)
	if flagSimRounds > 0 {
		base.MaxRounds = flagSimRounds
	}

	replayDir := expandHome(flagSimReplays)
	matches := make([]sim.Match, flagSimMatches)
	for i := range matches {
		m := sim.Match{
			Index:      i,
			Seed:       seed + int64(i),
			Config:     base,
			Strategies: strategies,
			Scenario:   sc,
		}
		if replayDir != "" {
			m.ReplayPath = filepath.Join(replayDir, fmt.Sprintf("match_%04d_%d.bar", i, m.Seed))
		}
		matches[i] = m
	}
	return matches, nil
}

func printSummary(s *sim.Summary, wall time.Duration) {
	fmt.Println()
	fmt.Printf("Matches: %d  Draws: %d  Failed: %d  Avg turns: %.1f  Wall time: %s\n",
		s.Matches, s.Draws, s.Failed, s.AvgTurns(), wall.Round(time.Millisecond))
	fmt.Println()

	tallies := s.Strategies()
	if len(tallies) == 0 {
		return
	}
	fmt.Printf("  %-12s  %6s  %6s  %7s  %8s  %9s\n", "Strategy", "Seats", "Wins", "Win %", "Survived", "Avg score")
	fmt.Printf("  %-12s  %6s  %6s  %7s  %8s  %9s\n", "--------", "-----", "----", "-----", "--------", "---------")
	for _, t := range tallies {
		rate := 0.0
		avg := 0.0
		if t.Seats > 0 {
			rate = float64(t.Wins) / float64(t.Seats) * 100
			avg = float64(t.Score) / float64(t.Seats)
		}
		fmt.Printf("  %-12s  %6d  %6d  %6.1f%%  %8d  %9.1f\n", t.Name, t.Seats, t.Wins, rate, t.Survived, avg)
	}
}
