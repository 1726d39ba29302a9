package primary

import (
	"context"
	"net"

	"gitlab.com/otp-2025.net/internal/domain"
)

// ConnHandler runs one protocol phase on a connection owned by an execution unit
type ConnHandler interface {
	HandleConn(ctx context.Context, conn net.Conn, unit *domain.UnitInfo) error
}
