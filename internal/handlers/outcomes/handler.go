package outcomes

import (
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/otp-2025.net/internal/core/ports/primary"
	"gitlab.com/otp-2025.net/internal/core/services/outcome"
	"gitlab.com/otp-2025.net/internal/domain"
	"gitlab.com/otp-2025.net/internal/handlers"
)

// OutcomeHandler serves recorded execution unit outcomes
type OutcomeHandler struct {
	outcomeService outcome.IOutcomeService
	logger         primary.Logger
}

// NewOutcomeHandler creates a new outcome handler
func NewOutcomeHandler(outcomeService outcome.IOutcomeService, logger primary.Logger) *OutcomeHandler {
	return &OutcomeHandler{
		outcomeService: outcomeService,
		logger:         logger,
	}
}

// RegisterRoutes mounts the outcome routes on router, which carries the /api prefix
func (h *OutcomeHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/outcomes", h.ListOutcomes).Methods("GET")
	router.HandleFunc("/outcomes/stats", h.GetStats).Methods("GET")
}

// ListOutcomes handles recent outcome requests
func (h *OutcomeHandler) ListOutcomes(w http.ResponseWriter, r *http.Request) {
	req, err := parseListOutcomesRequest(r.URL.Query())
	if err != nil {
		handlers.ResponseError(w, err.Error(), http.StatusBadRequest)
		return
	}

	outcomes, err := h.outcomeService.Recent(r.Context(), req.Limit)
	if err != nil {
		h.logger.Error("Failed to list outcomes", "error", err)
		handlers.ResponseError(w, "Failed to list outcomes", http.StatusInternalServerError)
		return
	}
	if outcomes == nil {
		outcomes = []*domain.UnitOutcome{}
	}

	handlers.ResponseWithJson(w, http.StatusOK, ListOutcomesResponse{Outcomes: outcomes})
}

// GetStats handles outcome count requests
func (h *OutcomeHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.outcomeService.Stats(r.Context())
	if err != nil {
		h.logger.Error("Failed to get outcome stats", "error", err)
		handlers.ResponseError(w, "Failed to get outcome stats", http.StatusInternalServerError)
		return
	}

	handlers.ResponseWithJson(w, http.StatusOK, StatsResponse{OutcomeStats: stats, Total: stats.Total()})
}
