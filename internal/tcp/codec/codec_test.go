package codec

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"gitlab.com/otp-2025.net/internal/domain"
	"gitlab.com/otp-2025.net/internal/static/errs"
	"gitlab.com/otp-2025.net/internal/tcp/defs"
)

// trickleWriter accepts at most one byte per call
type trickleWriter struct {
	buf   bytes.Buffer
	calls int
}

func (w *trickleWriter) Write(p []byte) (int, error) {
	w.calls++
	if len(p) == 0 {
		return 0, nil
	}
	w.buf.WriteByte(p[0])
	return 1, nil
}

type stuckWriter struct{}

func (stuckWriter) Write(p []byte) (int, error) { return 0, nil }

func TestWireLiterals(t *testing.T) {
	tests := []struct {
		dir  domain.Direction
		kind defs.MessageKind
		want string
	}{
		{domain.DirectionEncrypt, defs.KindClientHello, "otp_enc"},
		{domain.DirectionEncrypt, defs.KindServerHello, "otp_enc_d"},
		{domain.DirectionEncrypt, defs.KindRequestText, "sendPlainText"},
		{domain.DirectionDecrypt, defs.KindClientHello, "otp_dec"},
		{domain.DirectionDecrypt, defs.KindServerHello, "otp_dec_d"},
		{domain.DirectionDecrypt, defs.KindRequestText, "sendCipherText"},
		{domain.DirectionDecrypt, defs.KindRequestKey, "sendKey"},
		{domain.DirectionEncrypt, defs.KindReject, "no"},
	}
	for _, tt := range tests {
		raw, err := New(tt.dir).Encode(Message{Kind: tt.kind})
		if err != nil {
			t.Fatalf("Encode(%s/%s): %v", tt.dir, tt.kind, err)
		}
		if string(raw) != tt.want {
			t.Errorf("Encode(%s/%s): expected %q, got %q", tt.dir, tt.kind, tt.want, raw)
		}
	}
}

func TestEncodeSizeAnnounce(t *testing.T) {
	raw, err := New(domain.DirectionEncrypt).Encode(Message{Kind: defs.KindSizeAnnounce, Size: 1234})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if string(raw) != "1234" {
		t.Fatalf("expected 1234, got %q", raw)
	}
	if _, err := New(domain.DirectionEncrypt).Encode(Message{Kind: defs.KindSizeAnnounce, Size: -1}); err == nil {
		t.Fatal("expected error for negative size")
	}
}

func TestDecodeTrimsPadding(t *testing.T) {
	c := New(domain.DirectionEncrypt)
	msg, err := c.Decode([]byte("otp_enc_d\x00\x00\x00"), defs.KindServerHello, defs.KindReject)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if msg.Kind != defs.KindServerHello {
		t.Fatalf("expected ServerHello, got %s", msg.Kind)
	}

	msg, err = c.Decode([]byte("no"), defs.KindServerHello, defs.KindReject)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if msg.Kind != defs.KindReject {
		t.Fatalf("expected Reject, got %s", msg.Kind)
	}
}

func TestDecodeWrongDirectionIsViolation(t *testing.T) {
	c := New(domain.DirectionDecrypt)
	_, err := c.Decode([]byte("sendPlainText"), defs.KindRequestText)
	if !errors.Is(err, errs.ErrProtocolViolation) {
		t.Fatalf("expected ErrProtocolViolation, got %v", err)
	}
}

func TestDecodeSize(t *testing.T) {
	c := New(domain.DirectionEncrypt)

	msg, err := c.Decode([]byte("42"), defs.KindSizeAnnounce)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if msg.Size != 42 {
		t.Fatalf("expected 42, got %d", msg.Size)
	}

	for _, raw := range []string{"", "abc", "12a", "-3", "99999999999999999999"} {
		if _, err := c.Decode([]byte(raw), defs.KindSizeAnnounce); !errors.Is(err, errs.ErrMalformedSize) {
			t.Errorf("Decode(%q): expected ErrMalformedSize, got %v", raw, err)
		}
	}
}

func TestWriteFullRetriesShortWrites(t *testing.T) {
	w := &trickleWriter{}
	n, err := WriteFull(w, []byte("sendPlainText"))
	if err != nil {
		t.Fatalf("WriteFull returned error: %v", err)
	}
	if n != len("sendPlainText") || w.buf.String() != "sendPlainText" {
		t.Fatalf("expected full payload, got %d bytes %q", n, w.buf.String())
	}
	if w.calls != len("sendPlainText") {
		t.Fatalf("expected one call per byte, got %d", w.calls)
	}
}

func TestWriteFullStopsWithoutProgress(t *testing.T) {
	if _, err := WriteFull(stuckWriter{}, []byte("x")); !errors.Is(err, io.ErrShortWrite) {
		t.Fatalf("expected io.ErrShortWrite, got %v", err)
	}
}

func TestReceivePayloadExactLength(t *testing.T) {
	c := New(domain.DirectionEncrypt)
	r := io.MultiReader(strings.NewReader("HEL"), strings.NewReader("LOXMCKL"))

	text, err := c.ReceivePayload(r, defs.KindText, 5)
	if err != nil {
		t.Fatalf("ReceivePayload returned error: %v", err)
	}
	if string(text.Payload) != "HELLO" {
		t.Fatalf("expected HELLO, got %q", text.Payload)
	}
	key, err := c.ReceivePayload(r, defs.KindKey, 5)
	if err != nil {
		t.Fatalf("ReceivePayload returned error: %v", err)
	}
	if string(key.Payload) != "XMCKL" {
		t.Fatalf("expected XMCKL, got %q", key.Payload)
	}

	if _, err := c.ReceivePayload(strings.NewReader("AB"), defs.KindKey, 5); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestReceiveResult(t *testing.T) {
	c := New(domain.DirectionEncrypt)

	msg, err := c.ReceiveResult(strings.NewReader("EROW@trailing"), 5)
	if err != nil {
		t.Fatalf("ReceiveResult returned error: %v", err)
	}
	if string(msg.Payload) != "EROW@" {
		t.Fatalf("expected EROW@, got %q", msg.Payload)
	}

	if _, err := c.ReceiveResult(strings.NewReader(""), 5); !errors.Is(err, errs.ErrShortResult) {
		t.Fatalf("expected ErrShortResult, got %v", err)
	}
}

func TestReceiveReadsOnce(t *testing.T) {
	c := New(domain.DirectionEncrypt)
	r := io.MultiReader(strings.NewReader("otp_enc"), strings.NewReader("5"))

	msg, err := c.Receive(r, defs.KindClientHello)
	if err != nil {
		t.Fatalf("Receive returned error: %v", err)
	}
	if msg.Kind != defs.KindClientHello {
		t.Fatalf("expected ClientHello, got %s", msg.Kind)
	}

	msg, err = c.Receive(r, defs.KindSizeAnnounce)
	if err != nil {
		t.Fatalf("Receive returned error: %v", err)
	}
	if msg.Size != 5 {
		t.Fatalf("expected size 5, got %d", msg.Size)
	}
}
