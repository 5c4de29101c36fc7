package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"example.com/crossword-server/internal/proto"
)

// Session owns one connection's lifecycle: assemble a frame, dispatch it,
// write the response, repeat. Requests on a connection are strictly
// sequential; the next frame is not assembled until the current response has
// been fully written, which is why the protocol needs no correlation ids.
type Session struct {
	conn net.Conn
	disp *Dispatcher
	log  *slog.Logger

	// idle is the optional read deadline between requests; zero keeps the
	// connection open until the peer closes it.
	idle time.Duration

	username string // set by a successful login, empty before
}

func NewSession(conn net.Conn, disp *Dispatcher, log *slog.Logger, idle time.Duration) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{conn: conn, disp: disp, log: log, idle: idle}
}

// Username returns the identity bound to this connection by login.
func (s *Session) Username() string { return s.username }

// Run serves the connection until the peer closes it or a fatal protocol
// error occurs. A malformed frame gets one error response and then ends the
// session: the transport cannot resynchronize mid-stream. A clean peer close
// (EOF with no partial frame buffered) returns nil.
func (s *Session) Run(ctx context.Context) error {
	defer s.conn.Close()

	asm := &proto.Assembler{}
	buf := make([]byte, 4096)

	for {
		if s.idle > 0 {
			_ = s.conn.SetReadDeadline(time.Now().Add(s.idle))
		}

		n, readErr := s.conn.Read(buf)
		if n > 0 {
			msg, err := asm.Feed(buf[:n])
			if err != nil {
				s.log.Warn("malformed frame", "remote", s.conn.RemoteAddr(), "error", err)
				s.write(proto.NewError("Invalid message format: " + err.Error()))
				return err
			}
			if msg != nil {
				resp := s.disp.Dispatch(ctx, s, msg)
				if err := s.write(resp); err != nil {
					return err
				}
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				if asm.Pending() {
					return io.ErrUnexpectedEOF
				}
				return nil
			}
			return readErr
		}
	}
}

func (s *Session) write(resp any) error {
	b, err := proto.Encode(resp)
	if err != nil {
		// Encoding our own response should never fail; fall back to a fixed
		// error frame so the peer still gets exactly one response.
		s.log.Error("response encode failed", "error", err)
		b, _ = proto.Encode(proto.NewError("Invalid server response format"))
	}
	_, werr := s.conn.Write(b)
	return werr
}
