package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"example.com/crossword-server/internal/config"
	"example.com/crossword-server/internal/server"
	"example.com/crossword-server/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg config.Config
	log *slog.Logger

	db  *pgxpool.Pool
	rdb *redis.Client

	srv *server.Server
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	// --- Postgres ---
	dbpool, err := pgxpool.New(ctx, cfg.Postgres.URL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})

	// Quick connectivity checks (fail fast).
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := dbpool.Ping(pingCtx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		dbpool.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping (%s db=%d): %w", cfg.Redis.Addr, cfg.Redis.DB, err)
	}

	// --- Stores ---
	handlers := &server.Handlers{
		Users:     store.NewUserStore(dbpool),
		Puzzles:   store.NewPuzzleStore(dbpool, rdb, cfg.Redis.PuzzleTTL),
		Solutions: store.NewSolutionStore(dbpool),
		Stats:     store.NewStatsStore(dbpool),
		Friends:   store.NewFriendStore(dbpool),
		Messages:  store.NewMessageStore(dbpool),
		JWTSecret: []byte(cfg.Auth.Secret),
		TokenTTL:  cfg.Auth.TokenTTL,
	}

	// --- Protocol server ---
	disp := server.NewDispatcher(log)
	handlers.Register(disp)

	srv := server.New(server.Config{
		Addr:        cfg.TCP.Addr,
		IdleTimeout: cfg.TCP.IdleTimeout,
	}, disp, log)

	return &App{cfg: cfg, log: log, db: dbpool, rdb: rdb, srv: srv}, nil
}

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	a.log.Info("tcp server starting", "addr", a.cfg.TCP.Addr)

	g.Go(func() error {
		return a.srv.ListenAndServe(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.TCP.ShutdownTimeout)
		defer cancel()
		a.log.Info("tcp server shutting down")
		_ = a.srv.Shutdown(shutdownCtx)
		return nil
	})

	err := g.Wait()
	_ = a.Close(context.Background())
	return err
}

func (a *App) Close(ctx context.Context) error {
	// best-effort
	if a.db != nil {
		a.db.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	return nil
}
