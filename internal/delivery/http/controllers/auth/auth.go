package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/controllers/middleware"
	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/controllers/response"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
	"github.com/mahmoodhamdi/sounds-api/pkg/logger"
)

type AuthService interface {
	Register(ctx context.Context, reg models.Registration) (*models.Session, error)
	Login(ctx context.Context, email, password string) (*models.Session, error)
	User(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context, actor models.Actor) ([]models.User, error)
	UpdateUser(ctx context.Context, actor models.Actor, id uuid.UUID, upd models.UserUpdate) (*models.User, error)
	UploadProfilePicture(ctx context.Context, actor models.Actor, id uuid.UUID, file models.Upload) (*models.User, error)
	DeleteUser(ctx context.Context, actor models.Actor, id uuid.UUID) error
	ResetPassword(ctx context.Context, actor models.Actor, id uuid.UUID, newPassword string) error
}

type AuthHandler struct {
	AuthService AuthService
	log         logger.Log
}

func NewAuthHandler(l logger.Log, auth AuthService) *AuthHandler {
	return &AuthHandler{
		AuthService: auth,
		log:         l,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input models.Registration
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	session, err := h.AuthService.Register(c.Request.Context(), input)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	session, err := h.AuthService.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *AuthHandler) Me(c *gin.Context) {
	actor := middleware.Actor(c)
	user, err := h.AuthService.User(c.Request.Context(), actor, actor.UserID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
