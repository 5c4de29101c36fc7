package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"example.com/crossword-server/internal/puzzle"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

var ErrPuzzleNotFound = errors.New("puzzle not found")

// Puzzle is the durable record: board, stored answer and raw clue lists.
// Grid, answer and clues live as JSONB; the geometry of system-puzzle clues
// is derived on read, never stored.
type Puzzle struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Author      string       `json:"author"`
	Grid        puzzle.Grid  `json:"grid"`
	Answer      puzzle.Grid  `json:"answer"`
	Clues       puzzle.Clues `json:"clues"`
	IsSystem    bool         `json:"isSystem"`
	TimesSolved int          `json:"timesSolved"`
}

type PuzzleSummary struct {
	ID     int64
	Title  string
	Author string
}

// PuzzleStore persists puzzles in Postgres and keeps a read-through Redis
// cache of full puzzle rows. Puzzle content is immutable after creation, so
// cached entries only ever expire, they are never invalidated.
type PuzzleStore struct {
	db    *pgxpool.Pool
	cache *redis.Client // optional; nil disables caching
	ttl   time.Duration
}

func NewPuzzleStore(db *pgxpool.Pool, cache *redis.Client, ttl time.Duration) *PuzzleStore {
	return &PuzzleStore{db: db, cache: cache, ttl: ttl}
}

func (s *PuzzleStore) key(id int64) string {
	return fmt.Sprintf("puzzle:%d:snapshot", id)
}

// List returns all puzzles, newest first.
func (s *PuzzleStore) List(ctx context.Context) ([]PuzzleSummary, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, title, author FROM puzzles ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PuzzleSummary
	for rows.Next() {
		var p PuzzleSummary
		if err := rows.Scan(&p.ID, &p.Title, &p.Author); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PuzzleStore) Get(ctx context.Context, id int64) (Puzzle, error) {
	if p, ok := s.cached(ctx, id); ok {
		return p, nil
	}

	var (
		p                   Puzzle
		grid, answer, clues []byte
	)
	err := s.db.QueryRow(ctx,
		`SELECT id, title, author, grid, answer, clues, is_system, times_solved
		 FROM puzzles WHERE id = $1`, id,
	).Scan(&p.ID, &p.Title, &p.Author, &grid, &answer, &clues, &p.IsSystem, &p.TimesSolved)
	if errors.Is(err, pgx.ErrNoRows) {
		return Puzzle{}, ErrPuzzleNotFound
	}
	if err != nil {
		return Puzzle{}, err
	}

	if err := json.Unmarshal(grid, &p.Grid); err != nil {
		return Puzzle{}, fmt.Errorf("puzzle %d: bad grid data: %w", id, err)
	}
	if err := json.Unmarshal(answer, &p.Answer); err != nil {
		return Puzzle{}, fmt.Errorf("puzzle %d: bad answer data: %w", id, err)
	}
	if err := json.Unmarshal(clues, &p.Clues); err != nil {
		return Puzzle{}, fmt.Errorf("puzzle %d: bad clues data: %w", id, err)
	}

	s.store(ctx, p)
	return p, nil
}

// Save inserts a builder puzzle and bumps the author's created counter in one
// transaction.
func (s *PuzzleStore) Save(ctx context.Context, p Puzzle) (int64, error) {
	grid, err := json.Marshal(p.Grid)
	if err != nil {
		return 0, err
	}
	answer, err := json.Marshal(p.Answer)
	if err != nil {
		return 0, err
	}
	clues, err := json.Marshal(p.Clues)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO puzzles (title, author, grid, answer, clues, is_system)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		p.Title, p.Author, grid, answer, clues, p.IsSystem,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET puzzles_created = puzzles_created + 1 WHERE username = $1`,
		p.Author)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *PuzzleStore) cached(ctx context.Context, id int64) (Puzzle, bool) {
	if s.cache == nil {
		return Puzzle{}, false
	}
	val, err := s.cache.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		return Puzzle{}, false
	}
	var p Puzzle
	if err := json.Unmarshal(val, &p); err != nil {
		return Puzzle{}, false
	}
	return p, true
}

func (s *PuzzleStore) store(ctx context.Context, p Puzzle) {
	if s.cache == nil {
		return
	}
	b, err := json.Marshal(p)
	if err != nil {
		return
	}
	// best-effort
	_ = s.cache.Set(ctx, s.key(p.ID), b, s.ttl).Err()
}
