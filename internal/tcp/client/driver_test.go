package client

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"gitlab.com/otp-2025.net/internal/adapter/logging"
	"gitlab.com/otp-2025.net/internal/domain"
	"gitlab.com/otp-2025.net/internal/static/errs"
)

// scriptedDaemon accepts one connection and hands it to script
func scriptedDaemon(t *testing.T, script func(conn net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		script(conn)
	}()
	return ln.Addr().String()
}

func readToken(conn net.Conn) string {
	buf := make([]byte, 1023)
	n, _ := conn.Read(buf)
	return string(buf[:n])
}

func TestRunFullExchange(t *testing.T) {
	received := make(chan [2]string, 1)
	addr := scriptedDaemon(t, func(conn net.Conn) {
		if readToken(conn) != "otp_enc" {
			_, _ = conn.Write([]byte("no"))
			return
		}
		_, _ = conn.Write([]byte("otp_enc_d"))
		size, _ := strconv.Atoi(readToken(conn))
		_, _ = conn.Write([]byte("sendPlainText"))
		text := make([]byte, size)
		_, _ = io.ReadFull(conn, text)
		_, _ = conn.Write([]byte("sendKey"))
		key := make([]byte, size)
		_, _ = io.ReadFull(conn, key)
		received <- [2]string{string(text), string(key)}
		_, _ = conn.Write([]byte("EROW@"))
	})

	d := NewDriver(domain.DirectionEncrypt, addr, logging.NewNopLogger(), WithTimeout(5*time.Second))
	got, err := d.Run(context.Background(), "HELLO", "XMCKLEXTRA")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "EROW@" {
		t.Fatalf("expected EROW@, got %q", got)
	}

	sent := <-received
	if sent[0] != "HELLO" || sent[1] != "XMCKL" {
		t.Fatalf("daemon received text %q key %q", sent[0], sent[1])
	}
}

func TestRunRejected(t *testing.T) {
	addr := scriptedDaemon(t, func(conn net.Conn) {
		readToken(conn)
		_, _ = conn.Write([]byte("no"))
	})

	d := NewDriver(domain.DirectionDecrypt, addr, logging.NewNopLogger(), WithTimeout(5*time.Second))
	_, err := d.Run(context.Background(), "ABC", "ABC")
	if !errors.Is(err, errs.ErrHandshakeRejected) {
		t.Fatalf("expected ErrHandshakeRejected, got %v", err)
	}
}

func TestRunForeignDaemonIsRejected(t *testing.T) {
	addr := scriptedDaemon(t, func(conn net.Conn) {
		readToken(conn)
		_, _ = conn.Write([]byte("otp_dec_d"))
	})

	d := NewDriver(domain.DirectionEncrypt, addr, logging.NewNopLogger(), WithTimeout(5*time.Second))
	_, err := d.Run(context.Background(), "ABC", "ABC")
	if !errors.Is(err, errs.ErrHandshakeRejected) {
		t.Fatalf("expected ErrHandshakeRejected, got %v", err)
	}
}

func TestRunUnexpectedRequest(t *testing.T) {
	addr := scriptedDaemon(t, func(conn net.Conn) {
		readToken(conn)
		_, _ = conn.Write([]byte("otp_enc_d"))
		readToken(conn)
		_, _ = conn.Write([]byte("sendKey"))
	})

	d := NewDriver(domain.DirectionEncrypt, addr, logging.NewNopLogger(), WithTimeout(5*time.Second))
	_, err := d.Run(context.Background(), "ABC", "ABC")
	if !errors.Is(err, errs.ErrProtocolViolation) {
		t.Fatalf("expected ErrProtocolViolation, got %v", err)
	}
}

func TestRunKeyTooShortDoesNotDial(t *testing.T) {
	d := NewDriver(domain.DirectionEncrypt, "127.0.0.1:1", logging.NewNopLogger())
	_, err := d.Run(context.Background(), "HELLO", "AB")
	if !errors.Is(err, errs.ErrKeyTooShort) {
		t.Fatalf("expected ErrKeyTooShort, got %v", err)
	}
}

func TestRunTimesOutOnSilentDaemon(t *testing.T) {
	addr := scriptedDaemon(t, func(conn net.Conn) {
		time.Sleep(2 * time.Second)
	})

	d := NewDriver(domain.DirectionEncrypt, addr, logging.NewNopLogger(), WithTimeout(100*time.Millisecond))
	start := time.Now()
	_, err := d.Run(context.Background(), "ABC", "ABC")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("Run did not honor its timeout")
	}
}
