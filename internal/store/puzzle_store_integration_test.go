//go:build integration

package store

import (
	"context"
	"os"
	"testing"
	"time"

	"example.com/crossword-server/internal/puzzle"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, rdb.Ping(ctx).Err(), "redis is not reachable")
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestPuzzleStore_SaveGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	s := NewPuzzleStore(pool, nil, 0)

	author := createTestUser(t, pool)
	in := Puzzle{
		Title:  "round trip",
		Author: author,
		Grid:   puzzle.Grid{{"", ""}, {"", "."}},
		Answer: puzzle.Grid{{"A", "T"}, {"S", "."}},
		Clues: puzzle.Clues{
			Across: []puzzle.Clue{{Number: 1, Text: "At", Row: 0, Col: 0, Len: 2}},
			Down:   []puzzle.Clue{{Number: 1, Text: "As", Row: 0, Col: 0, Len: 2}},
		},
	}

	id, err := s.Save(ctx, in)
	require.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, in.Grid, got.Grid)
	assert.Equal(t, in.Answer, got.Answer)
	assert.Equal(t, in.Clues, got.Clues)
	assert.False(t, got.IsSystem)

	var created int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT puzzles_created FROM users WHERE username = $1`, author).Scan(&created))
	assert.Equal(t, 1, created)
}

func TestPuzzleStore_Get_NotFound(t *testing.T) {
	pool := newTestPool(t)
	s := NewPuzzleStore(pool, nil, 0)

	_, err := s.Get(context.Background(), -1)
	assert.ErrorIs(t, err, ErrPuzzleNotFound)
}

func TestPuzzleStore_CacheServesSecondRead(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	rdb := newTestRedis(t)
	s := NewPuzzleStore(pool, rdb, time.Hour)

	id := createTestPuzzle(t, pool)

	first, err := s.Get(ctx, id)
	require.NoError(t, err)

	// The snapshot is now cached; a read that bypasses Postgres entirely
	// must return the same puzzle.
	require.NoError(t, rdb.Exists(ctx, s.key(id)).Err())

	cached, ok := s.cached(ctx, id)
	require.True(t, ok)
	assert.Equal(t, first, cached)

	second, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
