package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SolveResult is the competitive outcome of one verified-correct submission.
// Rank is 1 + the number of other solvers with a strictly smaller time;
// TotalSolvers counts every solver of the puzzle including this one.
type SolveResult struct {
	Rank         int
	TotalSolvers int
	FirstSolve   bool
}

// SolveRecord is one row of a user's solve history with its rank recomputed
// against the current solver set.
type SolveRecord struct {
	PuzzleID     int64
	Title        string
	TimeTaken    float64
	Rank         int
	TotalSolvers int
	SolvedAt     time.Time
}

type SolutionStore struct {
	db *pgxpool.Pool
}

func NewSolutionStore(db *pgxpool.Pool) *SolutionStore {
	return &SolutionStore{db: db}
}

// SaveSolution records a verified-correct solve and computes rank and solver
// count in one transaction. The puzzle row is locked first so that the
// count-then-insert sequence is serialized per puzzle: two concurrent
// submissions for the same puzzle cannot double-count each other.
//
// One solutions row is kept per (user, puzzle) holding the best time. Only
// the first solve bumps the user's solved counter and the puzzle's solve
// counter; repeat solves may improve the stored best time. The returned rank
// is computed against the submitted time, not the stored best.
func (s *SolutionStore) SaveSolution(ctx context.Context, username string, puzzleID int64, timeTaken float64) (SolveResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return SolveResult{}, err
	}
	defer tx.Rollback(ctx)

	// Serialization point for this puzzle.
	var locked int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM puzzles WHERE id = $1 FOR UPDATE`, puzzleID,
	).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return SolveResult{}, ErrPuzzleNotFound
	}
	if err != nil {
		return SolveResult{}, err
	}

	var best float64
	err = tx.QueryRow(ctx,
		`SELECT time_taken FROM solutions WHERE username = $1 AND puzzle_id = $2`,
		username, puzzleID,
	).Scan(&best)

	res := SolveResult{}
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		res.FirstSolve = true
		if _, err := tx.Exec(ctx,
			`INSERT INTO solutions (username, puzzle_id, time_taken) VALUES ($1, $2, $3)`,
			username, puzzleID, timeTaken); err != nil {
			return SolveResult{}, err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE users SET puzzles_solved = puzzles_solved + 1 WHERE username = $1`,
			username); err != nil {
			return SolveResult{}, err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE puzzles SET times_solved = times_solved + 1 WHERE id = $1`,
			puzzleID); err != nil {
			return SolveResult{}, err
		}
	case err != nil:
		return SolveResult{}, err
	case timeTaken < best:
		if _, err := tx.Exec(ctx,
			`UPDATE solutions SET time_taken = $3, solved_at = now()
			 WHERE username = $1 AND puzzle_id = $2`,
			username, puzzleID, timeTaken); err != nil {
			return SolveResult{}, err
		}
	}

	err = tx.QueryRow(ctx,
		`SELECT 1 + count(*) FROM solutions
		 WHERE puzzle_id = $1 AND username <> $2 AND time_taken < $3`,
		puzzleID, username, timeTaken,
	).Scan(&res.Rank)
	if err != nil {
		return SolveResult{}, err
	}

	err = tx.QueryRow(ctx,
		`SELECT count(*) FROM solutions WHERE puzzle_id = $1`, puzzleID,
	).Scan(&res.TotalSolvers)
	if err != nil {
		return SolveResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return SolveResult{}, err
	}
	return res, nil
}

// History returns the user's solve records, newest first, with ranks
// recomputed against the current solver set of each puzzle.
func (s *SolutionStore) History(ctx context.Context, username string) ([]SolveRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT s.puzzle_id, p.title, s.time_taken, s.solved_at,
		       1 + (SELECT count(*) FROM solutions o
		            WHERE o.puzzle_id = s.puzzle_id
		              AND o.username <> s.username
		              AND o.time_taken < s.time_taken) AS rank,
		       (SELECT count(*) FROM solutions t WHERE t.puzzle_id = s.puzzle_id) AS total
		FROM solutions s
		JOIN puzzles p ON p.id = s.puzzle_id
		WHERE s.username = $1
		ORDER BY s.solved_at DESC
	`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SolveRecord
	for rows.Next() {
		var r SolveRecord
		if err := rows.Scan(&r.PuzzleID, &r.Title, &r.TimeTaken, &r.SolvedAt, &r.Rank, &r.TotalSolvers); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
