package proto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrIncomplete reports that the buffer is a truncated message: it is a
// prefix of a valid document and more bytes may complete it.
var ErrIncomplete = errors.New("proto: incomplete message")

// MalformedError reports input that no amount of additional bytes can fix.
type MalformedError struct {
	Offset int64
	Err    error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("proto: malformed message at offset %d: %v", e.Offset, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// Encode serializes one message as a UTF-8 JSON document. There is no length
// prefix and no delimiter; the peer discovers the end of the message by
// attempted decode.
func Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("proto: encode: %w", err)
	}
	return b, nil
}

// Decode parses exactly one JSON document out of data into v.
//
// Truncated input (EOF in the middle of a value) yields ErrIncomplete so the
// caller can keep reading. Anything else that fails is a *MalformedError,
// including trailing non-whitespace after a complete document. Decoding must
// never be retried on a malformed buffer; the classification here is what the
// frame assembler keys its retry-vs-fail decision on.
func Decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := dec.Decode(v); err != nil {
		return classify(err, dec.InputOffset())
	}

	// One document per frame. Extra tokens mean the stream lost framing.
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		return &MalformedError{Offset: dec.InputOffset(), Err: errors.New("trailing data after message")}
	}
	return nil
}

// classify maps encoding/json failures onto the Incomplete/Malformed split.
// json.Decoder reports EOF inside a value as io.ErrUnexpectedEOF and an empty
// buffer as io.EOF; both mean "more bytes may help". Everything else won't be
// fixed by more input.
func classify(err error, offset int64) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrIncomplete
	}
	return &MalformedError{Offset: offset, Err: err}
}
