package primary

import "gitlab.com/otp-2025.net/internal/domain"

// PoolInspector gives read-only access to a daemon's worker pool
type PoolInspector interface {
	Direction() domain.Direction
	Capacity() int
	ActiveUnits() []domain.UnitInfo
}
