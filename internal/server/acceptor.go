package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"
)

// Config carries the listener settings.
type Config struct {
	Addr        string
	IdleTimeout time.Duration // 0 => sessions have no read deadline
}

// Server accepts TCP connections and runs one Session per connection,
// unbounded. The accept loop itself is single-threaded and only blocks on
// the next connection.
type Server struct {
	cfg  Config
	disp *Dispatcher
	log  *slog.Logger

	mu    sync.Mutex
	ln    net.Listener
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

func New(cfg Config, disp *Dispatcher, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		cfg:   cfg,
		disp:  disp,
		log:   log,
		conns: make(map[net.Conn]struct{}),
	}
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts until the listener is closed. Session failures only affect
// their own connection; the accept loop and other sessions keep going.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		s.track(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)

			s.log.Info("connection accepted", "remote", conn.RemoteAddr())
			sess := NewSession(conn, s.disp, s.log, s.cfg.IdleTimeout)
			if err := sess.Run(ctx); err != nil {
				s.log.Warn("session ended", "remote", conn.RemoteAddr(), "error", err)
				return
			}
			s.log.Info("connection closed", "remote", conn.RemoteAddr())
		}()
	}
}

// Shutdown stops accepting, closes live connections and waits for sessions
// to drain or the context to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.ln != nil {
		_ = s.ln.Close()
	}
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) track(c net.Conn) {
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(c net.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}
