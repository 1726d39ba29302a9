package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"

	"gitlab.com/otp-2025.net/internal/core/ports/primary"
	"gitlab.com/otp-2025.net/internal/domain"
	"gitlab.com/otp-2025.net/internal/static/errs"
	"gitlab.com/otp-2025.net/internal/tcp/codec"
	"gitlab.com/otp-2025.net/internal/tcp/defs"
)

// Each handler runs one phase of the daemon side of the protocol

var _ primary.ConnHandler = (*HandshakeHandler)(nil)

// HandshakeHandler verifies the identity claimed by a freshly accepted peer
type HandshakeHandler struct {
	Codec  *codec.Codec
	Logger primary.Logger
}

func NewHandshakeHandler(c *codec.Codec, logger primary.Logger) *HandshakeHandler {
	return &HandshakeHandler{
		Codec:  c,
		Logger: logger,
	}
}

// HandleConn implements the ConnHandler interface. A peer presenting the
// wrong identity gets the rejection marker and errs.ErrHandshakeRejected is
// returned; the caller must not enter the exchange.
func (h *HandshakeHandler) HandleConn(ctx context.Context, conn net.Conn, unit *domain.UnitInfo) error {
	_, err := h.Codec.Receive(conn, defs.KindClientHello)
	if err != nil {
		if !errors.Is(err, errs.ErrProtocolViolation) {
			return fmt.Errorf("handshake: %w", err)
		}

		h.Logger.Warn("Client failed handshake", "unitID", unit.ID, "remote", unit.RemoteAddr, "error", err)
		if sendErr := h.Codec.Send(conn, codec.Message{Kind: defs.KindReject}); sendErr != nil {
			return fmt.Errorf("failed to send rejection: %w", sendErr)
		}
		return errs.ErrHandshakeRejected
	}

	if err := h.Codec.Send(conn, codec.Message{Kind: defs.KindServerHello}); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}

	h.Logger.Debug("Client authorized", "unitID", unit.ID, "remote", unit.RemoteAddr)
	return nil
}
