package connectionmanager

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"gitlab.com/otp-2025.net/internal/core/ports/primary"
	"gitlab.com/otp-2025.net/internal/domain"
)

var (
	ErrPoolFull      = errors.New("worker pool is full")
	ErrDuplicateUnit = errors.New("execution unit already registered")
)

// ConnectionManager tracks the execution units currently holding a worker
// slot. Only the pool manager loop mutates it; readers such as the admin API
// take snapshots.
type ConnectionManager struct {
	capacity  int
	units     map[uuid.UUID]domain.UnitInfo
	unitMutex sync.RWMutex
	Logger    primary.Logger
}

// NewConnectionManager creates a manager with room for capacity units
func NewConnectionManager(capacity int, logger primary.Logger) *ConnectionManager {
	return &ConnectionManager{
		capacity: capacity,
		units:    make(map[uuid.UUID]domain.UnitInfo, capacity),
		Logger:   logger,
	}
}

// Capacity returns the number of worker slots
func (cm *ConnectionManager) Capacity() int {
	return cm.capacity
}

// RegisterUnit occupies a slot for unit
func (cm *ConnectionManager) RegisterUnit(unit domain.UnitInfo) error {
	cm.unitMutex.Lock()
	defer cm.unitMutex.Unlock()

	if _, exists := cm.units[unit.ID]; exists {
		return ErrDuplicateUnit
	}
	if len(cm.units) >= cm.capacity {
		return ErrPoolFull
	}
	cm.units[unit.ID] = unit
	return nil
}

// RemoveUnit frees the slot held by unitID. It reports whether the unit was
// registered, so a slot can never be freed twice.
func (cm *ConnectionManager) RemoveUnit(unitID uuid.UUID) bool {
	cm.unitMutex.Lock()
	defer cm.unitMutex.Unlock()

	if _, exists := cm.units[unitID]; !exists {
		return false
	}
	delete(cm.units, unitID)
	return true
}

// GetUnit returns the registered unit with unitID
func (cm *ConnectionManager) GetUnit(unitID uuid.UUID) (domain.UnitInfo, bool) {
	cm.unitMutex.RLock()
	defer cm.unitMutex.RUnlock()

	unit, exists := cm.units[unitID]
	return unit, exists
}

// ActiveCount returns the number of occupied slots
func (cm *ConnectionManager) ActiveCount() int {
	cm.unitMutex.RLock()
	defer cm.unitMutex.RUnlock()

	return len(cm.units)
}

// HasFreeSlot reports whether another unit may be dispatched
func (cm *ConnectionManager) HasFreeSlot() bool {
	return cm.ActiveCount() < cm.capacity
}

// ActiveUnits returns a snapshot of the active units, oldest first
func (cm *ConnectionManager) ActiveUnits() []domain.UnitInfo {
	cm.unitMutex.RLock()
	units := make([]domain.UnitInfo, 0, len(cm.units))
	for _, unit := range cm.units {
		units = append(units, unit)
	}
	cm.unitMutex.RUnlock()

	sort.Slice(units, func(i, j int) bool {
		return units[i].AcceptedAt.Before(units[j].AcceptedAt)
	})
	return units
}
