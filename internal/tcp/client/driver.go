// Package client drives the client half of the cipher protocol.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"gitlab.com/otp-2025.net/internal/core/ports/primary"
	"gitlab.com/otp-2025.net/internal/domain"
	"gitlab.com/otp-2025.net/internal/static/errs"
	"gitlab.com/otp-2025.net/internal/tcp/codec"
	"gitlab.com/otp-2025.net/internal/tcp/defs"
)

// Driver connects to a cipher daemon and runs one exchange per call to Run
type Driver struct {
	direction domain.Direction
	address   string
	codec     *codec.Codec
	dialer    net.Dialer
	timeout   time.Duration
	logger    primary.Logger
}

// DriverOption configures a Driver
type DriverOption func(*Driver)

// WithTimeout bounds a whole exchange, dial included; zero means no deadline
func WithTimeout(timeout time.Duration) DriverOption {
	return func(d *Driver) {
		d.timeout = timeout
	}
}

// NewDriver creates a driver claiming the client identity of direction
func NewDriver(direction domain.Direction, address string, logger primary.Logger, options ...DriverOption) *Driver {
	d := &Driver{
		direction: direction,
		address:   address,
		codec:     codec.New(direction),
		logger:    logger.With("client", direction.ProgramName()),
	}
	for _, option := range options {
		option(d)
	}
	return d
}

// Run sends text and key to the daemon and returns the transformed text.
// Only the first len(text) symbols of key are sent. A daemon that does not
// accept this client's identity yields errs.ErrHandshakeRejected.
func (d *Driver) Run(ctx context.Context, text, key string) (string, error) {
	if err := (domain.CipherJob{Text: text, Key: key, Direction: d.direction}).Validate(); err != nil {
		return "", err
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	conn, err := d.dialer.DialContext(ctx, "tcp", d.address)
	if err != nil {
		return "", fmt.Errorf("failed to connect to %s: %w", d.address, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	result, err := d.exchange(conn, text, key[:len(text)])
	if err != nil && ctx.Err() != nil {
		return "", fmt.Errorf("%w: %w", ctx.Err(), err)
	}
	return result, err
}

func (d *Driver) exchange(conn net.Conn, text, key string) (string, error) {
	if err := d.codec.Send(conn, codec.Message{Kind: defs.KindClientHello}); err != nil {
		return "", err
	}
	hello, err := d.codec.Receive(conn, defs.KindServerHello, defs.KindReject)
	if err != nil {
		if errors.Is(err, errs.ErrProtocolViolation) {
			return "", fmt.Errorf("%w: %w", errs.ErrHandshakeRejected, err)
		}
		return "", err
	}
	if hello.Kind == defs.KindReject {
		d.logger.Warn("Daemon rejected client", "address", d.address)
		return "", errs.ErrHandshakeRejected
	}

	if err := d.codec.Send(conn, codec.Message{Kind: defs.KindSizeAnnounce, Size: len(text)}); err != nil {
		return "", err
	}

	if _, err := d.codec.Receive(conn, defs.KindRequestText); err != nil {
		return "", err
	}
	if err := d.codec.Send(conn, codec.Message{Kind: defs.KindText, Payload: []byte(text)}); err != nil {
		return "", err
	}

	if _, err := d.codec.Receive(conn, defs.KindRequestKey); err != nil {
		return "", err
	}
	if err := d.codec.Send(conn, codec.Message{Kind: defs.KindKey, Payload: []byte(key)}); err != nil {
		return "", err
	}

	result, err := d.codec.ReceiveResult(conn, len(text))
	if err != nil {
		return "", err
	}

	d.logger.Debug("Exchange completed", "address", d.address, "length", len(text))
	return string(result.Payload), nil
}
