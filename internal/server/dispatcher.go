package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"example.com/crossword-server/internal/proto"
)

// HandlerFunc processes one decoded request and returns the success response.
// A returned error becomes a status:error response; handlers never write to
// the connection themselves, and all durable effects go through the stores.
type HandlerFunc func(ctx context.Context, sess *Session, raw json.RawMessage) (any, error)

// Dispatcher maps action names to handlers. The table is extensible: new
// actions register themselves, unknown actions get a fixed error response and
// never terminate the connection.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	log      *slog.Logger
}

func NewDispatcher(log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		log:      log,
	}
}

func (d *Dispatcher) Handle(action string, h HandlerFunc) {
	d.handlers[action] = h
}

// Dispatch routes one request and always yields a well-formed response.
// Handler failures of any kind, panics included, are recovered into
// status:error; only transport-level failures may end a session, and those
// are not this layer's business.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *Session, raw json.RawMessage) (resp any) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("handler panic", "panic", r)
			resp = proto.NewError(fmt.Sprintf("Server error: %v", r))
		}
	}()

	var env proto.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return proto.NewError("Unknown action type")
	}

	h, ok := d.handlers[env.Action]
	if !ok {
		return proto.NewError("Unknown action type")
	}

	out, err := h(ctx, sess, raw)
	if err != nil {
		d.log.Debug("request failed", "action", env.Action, "error", err)
		return proto.NewError(err.Error())
	}
	return out
}
