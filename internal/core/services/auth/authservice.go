package auth

import (
	"context"

	"gitlab.com/otp-2025.net/internal/domain"
)

type IAuthService interface {
	// Login exchanges admin credentials for a bearer token
	Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
}
