package auth

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/golang-jwt/jwt/v5"

	"gitlab.com/otp-2025.net/internal/config"
	"gitlab.com/otp-2025.net/internal/core/ports/primary"
	"gitlab.com/otp-2025.net/internal/domain"
	"gitlab.com/otp-2025.net/internal/static/errs"
)

var _ IAuthService = &localAuthService{}

type localAuthService struct {
	adminCfg    *config.AdminConfig
	jwtCfg      *config.JwtConfig
	jwtProvider primary.JWTService
	logger      primary.Logger
}

// NewLocalAuthService authenticates the single admin account from configuration
func NewLocalAuthService(
	adminCfg *config.AdminConfig,
	jwtCfg *config.JwtConfig,
	jwtProvider primary.JWTService,
	logger primary.Logger,
) IAuthService {
	return &localAuthService{
		adminCfg:    adminCfg,
		jwtCfg:      jwtCfg,
		jwtProvider: jwtProvider,
		logger:      logger,
	}
}

func (g localAuthService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	if g.adminCfg.PasswordHash == "" || g.jwtCfg.Secret == "" {
		return domain.LoginResponse{}, errs.AdminDisabled
	}
	if req.Username != g.adminCfg.Username {
		return domain.LoginResponse{}, errs.InvalidCredentials
	}
	valid, err := g.jwtProvider.VerifyPassword(ctx, g.adminCfg.PasswordHash, req.Password)
	if err != nil || !valid {
		g.logger.Warn("Admin login failed", "username", req.Username)
		return domain.LoginResponse{}, errs.InvalidCredentials
	}

	authPayload := domain.AuthPayload{
		Username:   req.Username,
		Permission: []string{domain.PermissionPoolRead},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(authPayload); err != nil {
		return domain.LoginResponse{}, errs.InternalError
	}
	var claims map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &claims); err != nil {
		g.logger.Error("Failed to unmarshal auth payload", "error", err)
		return domain.LoginResponse{}, errs.InternalError
	}

	token, err := g.jwtProvider.GenerateTokenHMAC(ctx, jwt.SigningMethodHS256.Name, claims)
	if err != nil {
		g.logger.Error("Failed to generate token", "error", err)
		return domain.LoginResponse{}, errs.GeneratingToken
	}
	return domain.LoginResponse{
		Token:     token,
		ExpiresIn: int64(g.jwtCfg.TokenTTL.Seconds()),
	}, nil
}
