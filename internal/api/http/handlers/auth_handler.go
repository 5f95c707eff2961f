package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coupon-saver/internal/api/dto"
	"github.com/spec-kit/coupon-saver/internal/auth"
	"github.com/spec-kit/coupon-saver/internal/config"
	"github.com/spec-kit/coupon-saver/pkg/util"
)

// AuthHandler issues admin API tokens.
type AuthHandler struct {
	cfg    config.AuthConfig
	tokens *auth.TokenManager
}

// NewAuthHandler returns a new handler instance.
func NewAuthHandler(cfg config.AuthConfig, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{cfg: cfg, tokens: tokens}
}

// Login exchanges the admin credentials for a bearer token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return util.NewValidationError("username and password are required", nil)
	}
	if h.cfg.AdminPasswordHash == "" {
		return util.NewUnauthorized("admin access not configured")
	}
	if req.Username != h.cfg.AdminUsername {
		return util.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(h.cfg.AdminPasswordHash, req.Password); err != nil {
		return util.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := h.tokens.GenerateToken(req.Username)
	if err != nil {
		return util.NewInternalError(err)
	}
	return c.JSON(dto.LoginResponse{AccessToken: token, ExpiresAt: expiresAt})
}
