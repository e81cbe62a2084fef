package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
	"github.com/mahmoodhamdi/sounds-api/pkg/logger"
)

const (
	ClientIDCtx   = "client_id"
	ClientRoleCtx = "client_role"
)

type AuthService interface {
	Actor(ctx context.Context, token string) (models.Actor, error)
}

type AuthMiddlewareProvider struct {
	log     logger.Log
	service AuthService
}

func NewAuthMiddlewareProvider(log logger.Log, s AuthService) *AuthMiddlewareProvider {
	return &AuthMiddlewareProvider{
		log:     log,
		service: s,
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// AuthMiddleware rejects requests without a valid access token.
func (h *AuthMiddlewareProvider) AuthMiddleware(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		abortWith(c, http.StatusUnauthorized, app_errors.ErrInvalidToken)
		return
	}

	actor, err := h.service.Actor(c.Request.Context(), token)
	if err != nil {
		h.log.Info("failed to parse token", "err", err)
		if errors.Is(err, app_errors.ErrTokenExpired) {
			abortWith(c, http.StatusUnauthorized, app_errors.ErrTokenExpired)
			return
		}
		abortWith(c, http.StatusUnauthorized, app_errors.ErrInvalidToken)
		return
	}

	setActor(c, actor)
	c.Next()
}

// OptionalAuth resolves the caller when a token is present and lets
// anonymous requests through.
func (h *AuthMiddlewareProvider) OptionalAuth(c *gin.Context) {
	if token := bearerToken(c); token != "" {
		if actor, err := h.service.Actor(c.Request.Context(), token); err == nil {
			setActor(c, actor)
		}
	}
	c.Next()
}

func setActor(c *gin.Context, actor models.Actor) {
	c.Set(ClientIDCtx, actor.UserID)
	c.Set(ClientRoleCtx, actor.Role)
}

// Actor returns the authenticated caller, or the zero Actor for anonymous requests.
func Actor(c *gin.Context) models.Actor {
	id, ok := c.Get(ClientIDCtx)
	if !ok {
		return models.Actor{}
	}
	actor := models.Actor{UserID: id.(uuid.UUID)}
	actor.Role = c.GetString(ClientRoleCtx)
	return actor
}
