package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"gitlab.com/otp-2025.net/internal/cipher"
	"gitlab.com/otp-2025.net/internal/core/ports/primary"
	"gitlab.com/otp-2025.net/internal/domain"
	"gitlab.com/otp-2025.net/internal/static/errs"
	"gitlab.com/otp-2025.net/internal/tcp/codec"
	"gitlab.com/otp-2025.net/internal/tcp/defs"
)

var _ primary.ConnHandler = (*ExchangeHandler)(nil)

// TransformFunc runs the cipher on one job
type TransformFunc func(job domain.CipherJob) (string, error)

// ExchangeHandler runs the daemon half of the six-step exchange on an
// authorized connection.
type ExchangeHandler struct {
	Codec     *codec.Codec
	Transform TransformFunc
	Logger    primary.Logger
	// Probe is how long the daemon listens for unrequested bytes before
	// sending a request token.
	Probe time.Duration
}

func NewExchangeHandler(c *codec.Codec, logger primary.Logger) *ExchangeHandler {
	return &ExchangeHandler{
		Codec:     c,
		Transform: cipher.Transform,
		Logger:    logger,
		Probe:     defs.PrematureDataProbe,
	}
}

// HandleConn implements the ConnHandler interface
func (h *ExchangeHandler) HandleConn(ctx context.Context, conn net.Conn, unit *domain.UnitInfo) error {
	sizeMsg, err := h.Codec.Receive(conn, defs.KindSizeAnnounce)
	if err != nil {
		return err
	}
	size := sizeMsg.Size
	unit.TextLength = size

	if err := h.request(ctx, conn, defs.KindRequestText); err != nil {
		return err
	}
	text, err := h.Codec.ReceivePayload(conn, defs.KindText, size)
	if err != nil {
		return err
	}

	if err := h.request(ctx, conn, defs.KindRequestKey); err != nil {
		return err
	}
	key, err := h.Codec.ReceivePayload(conn, defs.KindKey, size)
	if err != nil {
		return err
	}

	result, err := h.Transform(domain.CipherJob{
		Text:      string(text.Payload),
		Key:       string(key.Payload),
		Direction: h.Codec.Direction(),
	})
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}

	if err := h.Codec.Send(conn, codec.Message{Kind: defs.KindResult, Payload: []byte(result)}); err != nil {
		return err
	}

	h.Logger.Debug("Exchange completed", "unitID", unit.ID, "length", size)
	return nil
}

// request sends a request token once the peer is known to be waiting for it
func (h *ExchangeHandler) request(ctx context.Context, conn net.Conn, kind defs.MessageKind) error {
	if err := h.ensureQuiet(ctx, conn); err != nil {
		return fmt.Errorf("before %s: %w", kind, err)
	}
	return h.Codec.Send(conn, codec.Message{Kind: kind})
}

// ensureQuiet fails when the peer has already pushed bytes that were not
// requested yet; those bytes must never be read as the next payload.
func (h *ExchangeHandler) ensureQuiet(ctx context.Context, conn net.Conn) error {
	if h.Probe <= 0 {
		return nil
	}
	if err := conn.SetReadDeadline(time.Now().Add(h.Probe)); err != nil {
		return err
	}

	var one [1]byte
	n, readErr := conn.Read(one[:])

	if err := ctx.Err(); err != nil {
		return err
	}
	deadline, _ := ctx.Deadline()
	if err := conn.SetReadDeadline(deadline); err != nil {
		return err
	}
	// a cancellation between the check above and the reset lost its
	// interrupting deadline
	if err := ctx.Err(); err != nil {
		_ = conn.SetReadDeadline(time.Unix(1, 0))
		return err
	}

	if n > 0 {
		return fmt.Errorf("%w: %w", errs.ErrProtocolViolation, errs.ErrPrematureData)
	}
	var netErr net.Error
	if readErr == nil || (errors.As(readErr, &netErr) && netErr.Timeout()) {
		return nil
	}
	return readErr
}
