package pool

import (
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/otp-2025.net/internal/core/ports/primary"
	"gitlab.com/otp-2025.net/internal/domain"
	"gitlab.com/otp-2025.net/internal/handlers"
)

type ApiHandler struct {
	Pool primary.PoolInspector
}

func NewHandler(pool primary.PoolInspector) *ApiHandler {
	return &ApiHandler{
		Pool: pool,
	}
}

// PoolResponse is a snapshot of the worker pool
type PoolResponse struct {
	Daemon   string            `json:"daemon"`
	Capacity int               `json:"capacity"`
	Active   int               `json:"active"`
	Units    []domain.UnitInfo `json:"units"`
}

// Register mounts the pool routes on r, which is expected to carry the /api prefix
func (api *ApiHandler) Register(r *mux.Router) {
	r.HandleFunc("/pool", api.GetPool).Methods("GET")
}

func (api *ApiHandler) GetPool(w http.ResponseWriter, r *http.Request) {
	units := api.Pool.ActiveUnits()
	if units == nil {
		units = []domain.UnitInfo{}
	}

	handlers.ResponseWithJson(w, http.StatusOK, PoolResponse{
		Daemon:   api.Pool.Direction().DaemonName(),
		Capacity: api.Pool.Capacity(),
		Active:   len(units),
		Units:    units,
	})
}
