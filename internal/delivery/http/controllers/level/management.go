package level

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

type ManagementService interface {
	CreateLevel(ctx context.Context, actor models.Actor, level models.Level) (*models.Level, error)
	UpdateLevel(ctx context.Context, actor models.Actor, id uuid.UUID, upd models.LevelUpdate) (*models.Level, error)
	DeleteLevel(ctx context.Context, actor models.Actor, id uuid.UUID) error
	UploadLevelImage(ctx context.Context, actor models.Actor, id uuid.UUID, file models.Upload) (*models.Level, error)
	SetWelcomeVideo(ctx context.Context, actor models.Actor, url string) (*models.WelcomeVideo, error)
}

type ManagementHandler struct {
	log     logger.Log
	service ManagementService
}

func NewManagementHandler(l logger.Log, s ManagementService) *ManagementHandler {
	return &ManagementHandler{
		log:     l,
		service: s,
	}
}

type newLevelRequest struct {
	Name                string  `json:"name" binding:"required"`
	Description         string  `json:"description"`
	LevelNumber         int     `json:"level_number" binding:"required"`
	WelcomeVideoURL     string  `json:"welcome_video_url"`
	Price               float64 `json:"price"`
	InitialExamQuestion string  `json:"initial_exam_question"`
	FinalExamQuestion   string  `json:"final_exam_question"`
}

func (h *ManagementHandler) CreateLevel(c *gin.Context) {
	var input newLevelRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	level, err := h.service.CreateLevel(c.Request.Context(), middleware.Actor(c), models.Level{
		Name:                input.Name,
		Description:         input.Description,
		LevelNumber:         input.LevelNumber,
		WelcomeVideoURL:     input.WelcomeVideoURL,
		Price:               input.Price,
		InitialExamQuestion: input.InitialExamQuestion,
		FinalExamQuestion:   input.FinalExamQuestion,
	})
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, level)
}

func (h *ManagementHandler) UpdateLevel(c *gin.Context) {
	levelID, ok := response.ParamUUID(c, "level_id")
	if !ok {
		return
	}
	var input models.LevelUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	level, err := h.service.UpdateLevel(c.Request.Context(), middleware.Actor(c), levelID, input)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, level)
}

func (h *ManagementHandler) DeleteLevel(c *gin.Context) {
	levelID, ok := response.ParamUUID(c, "level_id")
	if !ok {
		return
	}
	if err := h.service.DeleteLevel(c.Request.Context(), middleware.Actor(c), levelID); err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *ManagementHandler) UploadLevelImage(c *gin.Context) {
	levelID, ok := response.ParamUUID(c, "level_id")
	if !ok {
		return
	}
	upload, closeFn, ok := response.FormUpload(c, "file")
	if !ok {
		return
	}
	defer closeFn()

	level, err := h.service.UploadLevelImage(c.Request.Context(), middleware.Actor(c), levelID, upload)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, level)
}

type welcomeVideoRequest struct {
	VideoURL string `json:"video_url" binding:"required"`
}

func (h *ManagementHandler) SetWelcomeVideo(c *gin.Context) {
	var input welcomeVideoRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	video, err := h.service.SetWelcomeVideo(c.Request.Context(), middleware.Actor(c), input.VideoURL)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, video)
}
