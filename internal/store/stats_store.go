package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserStats is the snapshot shown to one user. LatestTime is nil until the
// user has recorded at least one solve.
type UserStats struct {
	PuzzlesSolved  int
	PuzzlesCreated int
	LatestTime     *float64
}

// LeaderboardRow is one line of the all-users table. FastestTime and
// AverageTime are nil for users with no recorded solves.
type LeaderboardRow struct {
	Username       string
	PuzzlesSolved  int
	PuzzlesCreated int
	FastestTime    *float64
	AverageTime    *float64
}

type StatsStore struct {
	db *pgxpool.Pool
}

func NewStatsStore(db *pgxpool.Pool) *StatsStore {
	return &StatsStore{db: db}
}

// CurrentUser returns the user's counters plus the time of their most recent
// solve. An unknown user yields zero stats, not an error.
func (s *StatsStore) CurrentUser(ctx context.Context, username string) (UserStats, error) {
	var st UserStats
	err := s.db.QueryRow(ctx,
		`SELECT puzzles_solved, puzzles_created FROM users WHERE username = $1`,
		username,
	).Scan(&st.PuzzlesSolved, &st.PuzzlesCreated)
	if errors.Is(err, pgx.ErrNoRows) {
		return UserStats{}, nil
	}
	if err != nil {
		return UserStats{}, err
	}

	err = s.db.QueryRow(ctx,
		`SELECT time_taken FROM solutions
		 WHERE username = $1 ORDER BY solved_at DESC LIMIT 1`,
		username,
	).Scan(&st.LatestTime)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return UserStats{}, err
	}
	return st, nil
}

// AllUsers returns every user with solve-time aggregates, best solvers first.
func (s *StatsStore) AllUsers(ctx context.Context) ([]LeaderboardRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT u.username, u.puzzles_solved, u.puzzles_created,
		       min(s.time_taken), avg(s.time_taken)
		FROM users u
		LEFT JOIN solutions s ON s.username = u.username
		GROUP BY u.username, u.puzzles_solved, u.puzzles_created
		ORDER BY u.puzzles_solved DESC, u.puzzles_created DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaderboardRow
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.Username, &r.PuzzlesSolved, &r.PuzzlesCreated, &r.FastestTime, &r.AverageTime); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
