// Package codec turns cipher protocol messages into their exact on-wire
// literals and back.
//
// The wire format has no framing of its own: tokens are bare ASCII strings
// read with a single receive, text and key are raw bytes whose length was
// announced earlier. Strict step ordering keeps the two apart.
package codec

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"gitlab.com/otp-2025.net/internal/domain"
	"gitlab.com/otp-2025.net/internal/static/errs"
	"gitlab.com/otp-2025.net/internal/tcp/defs"
)

// Message is one transfer on a cipher connection
type Message struct {
	Kind    defs.MessageKind
	Size    int
	Payload []byte
}

// Codec encodes and decodes messages for one cipher direction
type Codec struct {
	direction domain.Direction
	tokens    map[defs.MessageKind]string
}

// New creates a codec carrying the literal tokens of direction
func New(direction domain.Direction) *Codec {
	tokens := map[defs.MessageKind]string{
		defs.KindReject:     defs.TokenReject,
		defs.KindRequestKey: defs.TokenSendKey,
	}
	if direction == domain.DirectionDecrypt {
		tokens[defs.KindClientHello] = defs.TokenDecClient
		tokens[defs.KindServerHello] = defs.TokenDecDaemon
		tokens[defs.KindRequestText] = defs.TokenSendCipherText
	} else {
		tokens[defs.KindClientHello] = defs.TokenEncClient
		tokens[defs.KindServerHello] = defs.TokenEncDaemon
		tokens[defs.KindRequestText] = defs.TokenSendPlainText
	}
	return &Codec{direction: direction, tokens: tokens}
}

// Direction returns the cipher direction the codec was built for
func (c *Codec) Direction() domain.Direction {
	return c.direction
}

// Token returns the literal sent for a token kind
func (c *Codec) Token(kind defs.MessageKind) (string, bool) {
	tok, ok := c.tokens[kind]
	return tok, ok
}

// Encode renders msg as the bytes that go on the wire
func (c *Codec) Encode(msg Message) ([]byte, error) {
	switch {
	case msg.Kind.IsToken():
		return []byte(c.tokens[msg.Kind]), nil
	case msg.Kind == defs.KindSizeAnnounce:
		if msg.Size < 0 {
			return nil, fmt.Errorf("negative size %d", msg.Size)
		}
		return []byte(strconv.Itoa(msg.Size)), nil
	case msg.Kind == defs.KindText, msg.Kind == defs.KindKey, msg.Kind == defs.KindResult:
		return msg.Payload, nil
	}
	return nil, fmt.Errorf("cannot encode message kind %d", msg.Kind)
}

// Decode interprets raw as one of the expected kinds. Trailing NUL padding
// left by the fixed receive buffer is ignored.
func (c *Codec) Decode(raw []byte, expected ...defs.MessageKind) (Message, error) {
	trimmed := bytes.TrimRight(raw, "\x00")

	for _, kind := range expected {
		switch {
		case kind.IsToken():
			if string(trimmed) == c.tokens[kind] {
				return Message{Kind: kind}, nil
			}
		case kind == defs.KindSizeAnnounce:
			size, err := parseSize(trimmed)
			if err != nil {
				return Message{}, err
			}
			return Message{Kind: kind, Size: size}, nil
		default:
			return Message{Kind: kind, Payload: append([]byte(nil), trimmed...)}, nil
		}
	}
	return Message{}, fmt.Errorf("%w: expected %v, got %q", errs.ErrProtocolViolation, expected, trimmed)
}

// Send encodes msg and writes all of it to w
func (c *Codec) Send(w io.Writer, msg Message) error {
	raw, err := c.Encode(msg)
	if err != nil {
		return err
	}
	if _, err := WriteFull(w, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", msg.Kind, err)
	}
	return nil
}

// Receive performs one blocking read and decodes it as one of expected
func (c *Codec) Receive(r io.Reader, expected ...defs.MessageKind) (Message, error) {
	raw, err := ReadToken(r)
	if err != nil {
		return Message{}, fmt.Errorf("failed to read %v: %w", expected, err)
	}
	return c.Decode(raw, expected...)
}

// ReceivePayload reads exactly n bytes of a Text or Key message
func (c *Codec) ReceivePayload(r io.Reader, kind defs.MessageKind, n int) (Message, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Message{}, fmt.Errorf("failed to read %s: %w", kind, err)
	}
	return Message{Kind: kind, Payload: buf}, nil
}

// ReceiveResult reads the final result: up to n bytes, stopping early only
// when the daemon closes the stream.
func (c *Codec) ReceiveResult(r io.Reader, n int) (Message, error) {
	buf, err := io.ReadAll(io.LimitReader(r, int64(n)))
	if err != nil {
		return Message{}, fmt.Errorf("failed to read %s: %w", defs.KindResult, err)
	}
	if len(buf) == 0 && n > 0 {
		return Message{}, errs.ErrShortResult
	}
	return Message{Kind: defs.KindResult, Payload: buf}, nil
}

func parseSize(raw []byte) (int, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("%w: empty", errs.ErrMalformedSize)
	}
	for _, b := range raw {
		if b < '0' || b > '9' {
			return 0, fmt.Errorf("%w: %q", errs.ErrMalformedSize, raw)
		}
	}
	size, err := strconv.Atoi(string(raw))
	if err != nil || size > defs.MaxTextLength {
		return 0, fmt.Errorf("%w: %q out of range", errs.ErrMalformedSize, raw)
	}
	return size, nil
}
