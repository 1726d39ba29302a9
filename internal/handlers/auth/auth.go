package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/otp-2025.net/internal/core/ports/primary"
	"gitlab.com/otp-2025.net/internal/core/services/auth"
	"gitlab.com/otp-2025.net/internal/domain"
	"gitlab.com/otp-2025.net/internal/handlers/response"
	"gitlab.com/otp-2025.net/internal/static/errs"
)

type Handler struct {
	authService auth.IAuthService
	logger      primary.Logger
}

func NewHandler(authService auth.IAuthService, logger primary.Logger) *Handler {
	return &Handler{
		authService: authService,
		logger:      logger,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/auth/token", h.Login).Methods("POST")
}

// Login exchanges admin credentials for a bearer token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, response.ErrorMessage{
			Message:    "Invalid request",
			StatusCode: http.StatusBadRequest,
		})
		return
	}

	loginResponse, err := h.authService.Login(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, errs.InvalidCredentials):
			status = http.StatusUnauthorized
		case errors.Is(err, errs.AdminDisabled):
			status = http.StatusServiceUnavailable
		default:
			h.logger.Error("Login failed", "error", err)
		}
		response.WriteError(w, response.ErrorMessage{
			Message:    err.Error(),
			StatusCode: status,
		})
		return
	}

	response.WriteSuccess(w, loginResponse)
}
