// internal/daily/store.go
//
// SQLite persistence for daily results and the per-date leaderboard.

package daily

import (
	"context"
	"database/sql"
)

// Result is one player's finished daily challenge.
type Result struct {
	Player      string  `json:"player"`
	Date        string  `json:"date"`
	Level       int     `json:"level"`
	Stars       int     `json:"stars"`
	Errors      int     `json:"errors"`
	RemainingMs int64   `json:"remainingMs"`
	WPM         float64 `json:"wpm"`
}

// Store reads and writes daily_results.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether player has a result recorded for date.
func (s *Store) AlreadyPlayed(ctx context.Context, player, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE player=? AND date=?`,
		player, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records a result. A second result for the same player and
// date is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(player, date, level, stars, errors, remaining_ms, wpm)
		 VALUES(?,?,?,?,?,?,?)`,
		r.Player, r.Date, r.Level, r.Stars, r.Errors, r.RemainingMs, r.WPM,
	)
	return err
}

// Leaderboard returns the best results for date: most stars, then most
// time left, then fewest errors, then earliest finish.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT player, date, level, stars, errors, remaining_ms, wpm
		 FROM daily_results
		 WHERE date=?
		 ORDER BY stars DESC, remaining_ms DESC, errors ASC, created_at ASC
		 LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Player, &r.Date, &r.Level, &r.Stars, &r.Errors, &r.RemainingMs, &r.WPM); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
