package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/controllers/middleware"
	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/controllers/response"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
)

func (h *AuthHandler) User(c *gin.Context) {
	userID, ok := response.ParamUUID(c, "user_id")
	if !ok {
		return
	}
	user, err := h.AuthService.User(c.Request.Context(), middleware.Actor(c), userID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.AuthService.ListUsers(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *AuthHandler) UpdateUser(c *gin.Context) {
	userID, ok := response.ParamUUID(c, "user_id")
	if !ok {
		return
	}
	var input models.UserUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.AuthService.UpdateUser(c.Request.Context(), middleware.Actor(c), userID, input)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) UploadPicture(c *gin.Context) {
	userID, ok := response.ParamUUID(c, "user_id")
	if !ok {
		return
	}
	upload, closeFn, ok := response.FormUpload(c, "file")
	if !ok {
		return
	}
	defer closeFn()

	user, err := h.AuthService.UploadProfilePicture(c.Request.Context(), middleware.Actor(c), userID, upload)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) DeleteUser(c *gin.Context) {
	userID, ok := response.ParamUUID(c, "user_id")
	if !ok {
		return
	}
	if err := h.AuthService.DeleteUser(c.Request.Context(), middleware.Actor(c), userID); err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required"`
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	userID, ok := response.ParamUUID(c, "user_id")
	if !ok {
		return
	}
	var input resetPasswordRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.AuthService.ResetPassword(c.Request.Context(), middleware.Actor(c), userID, input.NewPassword); err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "password reset"})
}
