package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vovakirdan/bombarena/internal/games/bomber/engine"
)

// End reasons stored with every match.
const (
	EndLastStanding = "last_standing" // At most one player survived
	EndRoundCap     = "round_cap"     // The round limit was reached
	EndAborted      = "aborted"       // Stopped before the engine declared it over
)

// MatchPlayer is one seat's result.
type MatchPlayer struct {
	Seat     int
	Strategy string
	Score    int
	Alive    bool
}

// MatchRecord is a finished (or aborted) arena match.
type MatchRecord struct {
	ID         int64
	MatchID    string
	GameID     string
	Seed       int64
	Scenario   string
	Rounds     int
	Turns      int
	WinnerSeat int // Zero on a draw
	EndReason  string
	Duration   time.Duration
	Players    []MatchPlayer
	CreatedAt  time.Time
}

// NewMatchRecord builds a record from the final snapshot of a match.
// strategies names the controller of each seat in player order.
func NewMatchRecord(gameID string, seed int64, snap engine.Snapshot, strategies []string, elapsed time.Duration) MatchRecord {
	m := MatchRecord{
		MatchID:    uuid.NewString(),
		GameID:     gameID,
		Seed:       seed,
		Rounds:     snap.RoundCount,
		Turns:      snap.TurnCount,
		WinnerSeat: int(snap.Winner),
		Duration:   elapsed,
	}

	alive := 0
	for i, p := range snap.Players {
		strategy := ""
		if i < len(strategies) {
			strategy = strategies[i]
		}
		if p.Alive {
			alive++
		}
		m.Players = append(m.Players, MatchPlayer{
			Seat:     int(p.ID),
			Strategy: strategy,
			Score:    p.Score,
			Alive:    p.Alive,
		})
	}

	switch {
	case !snap.Over:
		m.EndReason = EndAborted
	case alive <= 1:
		m.EndReason = EndLastStanding
	default:
		m.EndReason = EndRoundCap
	}
	return m
}

// SaveMatch stores a match and its players in one transaction.
// Returns the row ID of the match.
func (s *Store) SaveMatch(ctx context.Context, m MatchRecord) (int64, error) {
	if m.MatchID == "" {
		m.MatchID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO matches
		 (match_id, game_id, seed, scenario, rounds, turns, winner_seat, end_reason, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.MatchID, m.GameID, m.Seed, m.Scenario, m.Rounds, m.Turns,
		m.WinnerSeat, m.EndReason, m.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save match: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	for _, p := range m.Players {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO match_players (match_id, seat, strategy, score, alive)
			 VALUES (?, ?, ?, ?, ?)`,
			m.MatchID, p.Seat, p.Strategy, p.Score, p.Alive,
		)
		if err != nil {
			return 0, fmt.Errorf("storage: cannot save seat %d: %w", p.Seat, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit match: %w", err)
	}
	return id, nil
}

// ClearMatches deletes the match history of the given game. Seat rows go
// with their match through the foreign key.
func (s *Store) ClearMatches(ctx context.Context, gameID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM matches WHERE game_id = ?", gameID); err != nil {
		return fmt.Errorf("storage: cannot clear matches: %w", err)
	}
	return nil
}

const matchColumns = `id, match_id, game_id, seed, scenario, rounds, turns,
	winner_seat, end_reason, duration_ms, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (MatchRecord, error) {
	var m MatchRecord
	var durationMS int64
	var createdAt any
	err := row.Scan(&m.ID, &m.MatchID, &m.GameID, &m.Seed, &m.Scenario, &m.Rounds,
		&m.Turns, &m.WinnerSeat, &m.EndReason, &durationMS, &createdAt)
	if err != nil {
		return MatchRecord{}, err
	}
	m.Duration = time.Duration(durationMS) * time.Millisecond
	m.CreatedAt = parseTime(createdAt)
	return m, nil
}

// MatchByID retrieves a match and its players. Returns nil when the match
// does not exist.
func (s *Store) MatchByID(ctx context.Context, matchID string) (*MatchRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE match_id = ?`, matchID)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match: %w", err)
	}

	if m.Players, err = s.matchPlayers(ctx, m.MatchID); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecentMatches retrieves the latest matches, newest first, with players.
func (s *Store) RecentMatches(ctx context.Context, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+matchColumns+`
		 FROM matches
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}

	var matches []MatchRecord
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("storage: cannot scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	// Release the connection before the per-match player queries
	rows.Close()

	for i := range matches {
		if matches[i].Players, err = s.matchPlayers(ctx, matches[i].MatchID); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

func (s *Store) matchPlayers(ctx context.Context, matchID string) ([]MatchPlayer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seat, strategy, score, alive
		 FROM match_players
		 WHERE match_id = ?
		 ORDER BY seat`,
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match players: %w", err)
	}
	defer rows.Close()

	var players []MatchPlayer
	for rows.Next() {
		var p MatchPlayer
		if err := rows.Scan(&p.Seat, &p.Strategy, &p.Score, &p.Alive); err != nil {
			return nil, fmt.Errorf("storage: cannot scan match player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return players, nil
}

// StrategyStats aggregates results per controller across all matches.
type StrategyStats struct {
	Strategy string
	Games    int
	Wins     int
	Survived int
	AvgScore float64
}

// WinRate returns the fraction of games won.
func (s StrategyStats) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games)
}

// StrategyStats returns per-strategy results ordered by wins, then name.
func (s *Store) StrategyStats(ctx context.Context) ([]StrategyStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.strategy,
		        COUNT(*),
		        SUM(CASE WHEN m.winner_seat = p.seat THEN 1 ELSE 0 END),
		        SUM(p.alive),
		        AVG(p.score)
		 FROM match_players p
		 JOIN matches m ON m.match_id = p.match_id
		 GROUP BY p.strategy
		 ORDER BY 3 DESC, p.strategy ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query strategy stats: %w", err)
	}
	defer rows.Close()

	var stats []StrategyStats
	for rows.Next() {
		var st StrategyStats
		if err := rows.Scan(&st.Strategy, &st.Games, &st.Wins, &st.Survived, &st.AvgScore); err != nil {
			return nil, fmt.Errorf("storage: cannot scan strategy stats: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return stats, nil
}
