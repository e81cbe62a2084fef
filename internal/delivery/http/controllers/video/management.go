package video

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

type VideoService interface {
	AddVideo(ctx context.Context, actor models.Actor, video models.Video) (*models.Video, error)
	UpdateVideo(ctx context.Context, actor models.Actor, id uuid.UUID, upd models.VideoUpdate) (*models.Video, error)
	DeleteVideo(ctx context.Context, actor models.Actor, id uuid.UUID) error
	SwapVideos(ctx context.Context, actor models.Actor, levelID, firstID, secondID uuid.UUID) ([]models.Video, error)
	AllVideos(ctx context.Context, actor models.Actor) ([]models.Video, error)
	AddQuestion(ctx context.Context, actor models.Actor, question models.Question) (*models.Question, error)
	UpdateQuestion(ctx context.Context, actor models.Actor, id uuid.UUID, upd models.QuestionUpdate) (*models.Question, error)
	DeleteQuestion(ctx context.Context, actor models.Actor, id uuid.UUID) error
	AllQuestions(ctx context.Context, actor models.Actor) ([]models.Question, error)
	VideoQuestions(ctx context.Context, actor models.Actor, videoID uuid.UUID) ([]models.Question, error)
}

type VideoHandler struct {
	log     logger.Log
	service VideoService
}

func NewVideoHandler(l logger.Log, s VideoService) *VideoHandler {
	return &VideoHandler{
		log:     l,
		service: s,
	}
}

type newVideoRequest struct {
	Name        string `json:"name" binding:"required"`
	YoutubeLink string `json:"youtube_link" binding:"required"`
	Order       int    `json:"order"`
}

func (h *VideoHandler) AddVideo(c *gin.Context) {
	levelID, ok := response.ParamUUID(c, "level_id")
	if !ok {
		return
	}
	var input newVideoRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	video, err := h.service.AddVideo(c.Request.Context(), middleware.Actor(c), models.Video{
		LevelID:     levelID,
		Name:        input.Name,
		YoutubeLink: input.YoutubeLink,
		Order:       input.Order,
	})
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, video)
}

func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	videoID, ok := response.ParamUUID(c, "video_id")
	if !ok {
		return
	}
	var input models.VideoUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	video, err := h.service.UpdateVideo(c.Request.Context(), middleware.Actor(c), videoID, input)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	videoID, ok := response.ParamUUID(c, "video_id")
	if !ok {
		return
	}
	if err := h.service.DeleteVideo(c.Request.Context(), middleware.Actor(c), videoID); err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type swapRequest struct {
	FirstVideoID  uuid.UUID `json:"video_id_1" binding:"required"`
	SecondVideoID uuid.UUID `json:"video_id_2" binding:"required"`
}

func (h *VideoHandler) SwapVideos(c *gin.Context) {
	levelID, ok := response.ParamUUID(c, "level_id")
	if !ok {
		return
	}
	var input swapRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	videos, err := h.service.SwapVideos(c.Request.Context(), middleware.Actor(c), levelID, input.FirstVideoID, input.SecondVideoID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

func (h *VideoHandler) AllVideos(c *gin.Context) {
	videos, err := h.service.AllVideos(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}
