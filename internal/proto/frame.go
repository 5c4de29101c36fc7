package proto

import (
	"encoding/json"
	"errors"
)

// Assembler reconstructs one complete message from an arbitrary sequence of
// byte chunks read off a stream connection. The transport carries no length
// prefix and no delimiter, so after every chunk the accumulated buffer is
// probed with a full decode. An ErrIncomplete probe result means "keep
// reading"; any other decode failure is a protocol error and is surfaced to
// the caller rather than retried, otherwise malformed input would spin the
// read loop forever.
type Assembler struct {
	buf []byte
}

// Feed appends chunk to the internal buffer and attempts to extract one
// complete message. It returns (nil, nil) when more bytes are needed.
// On success the buffer is reset for the next frame.
func (a *Assembler) Feed(chunk []byte) (json.RawMessage, error) {
	a.buf = append(a.buf, chunk...)

	var msg json.RawMessage
	err := Decode(a.buf, &msg)
	if errors.Is(err, ErrIncomplete) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	a.buf = a.buf[:0]
	return msg, nil
}

// Pending reports whether a partially assembled frame is buffered. A peer
// that closes the connection mid-frame left Pending true.
func (a *Assembler) Pending() bool { return len(a.buf) > 0 }
