package progress

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

type ProgressService interface {
	Purchase(ctx context.Context, actor models.Actor, userID, levelID uuid.UUID) (*models.Enrollment, error)
	Assign(ctx context.Context, actor models.Actor, userID, levelID uuid.UUID) (*models.Enrollment, error)
	CompleteVideo(ctx context.Context, actor models.Actor, userID, levelID, videoID uuid.UUID) (*models.VideoProgress, *models.Enrollment, error)
	LevelProgress(ctx context.Context, actor models.Actor, userID, levelID uuid.UUID) (*models.ProgressCounters, error)
	UserLevels(ctx context.Context, actor models.Actor, userID uuid.UUID) ([]models.LevelProgress, error)
	SubmitAnswer(ctx context.Context, actor models.Actor, questionID uuid.UUID, sub models.Submission) (*models.QuestionAnswer, error)
	Answer(ctx context.Context, actor models.Actor, userID, questionID uuid.UUID) (*models.QuestionAnswer, error)
	QuestionAnswers(ctx context.Context, actor models.Actor, questionID uuid.UUID) ([]models.QuestionAnswer, error)
	SubmitExam(ctx context.Context, actor models.Actor, levelID uuid.UUID, examType string, sub models.Submission) (*models.ExamResult, *models.Enrollment, error)
	ExamResults(ctx context.Context, actor models.Actor, userID, levelID uuid.UUID) ([]models.ExamResult, error)
	AllExamResults(ctx context.Context, actor models.Actor) ([]models.ExamResult, error)
}

type ProgressHandler struct {
	log     logger.Log
	service ProgressService
}

func NewProgressHandler(log logger.Log, s ProgressService) *ProgressHandler {
	return &ProgressHandler{
		log:     log,
		service: s,
	}
}

func userAndLevel(c *gin.Context) (userID, levelID uuid.UUID, ok bool) {
	if userID, ok = response.ParamUUID(c, "user_id"); !ok {
		return
	}
	levelID, ok = response.ParamUUID(c, "level_id")
	return
}

func (h *ProgressHandler) Purchase(c *gin.Context) {
	userID, levelID, ok := userAndLevel(c)
	if !ok {
		return
	}
	enrollment, err := h.service.Purchase(c.Request.Context(), middleware.Actor(c), userID, levelID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

func (h *ProgressHandler) Assign(c *gin.Context) {
	userID, levelID, ok := userAndLevel(c)
	if !ok {
		return
	}
	enrollment, err := h.service.Assign(c.Request.Context(), middleware.Actor(c), userID, levelID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

func (h *ProgressHandler) CompleteVideo(c *gin.Context) {
	userID, levelID, ok := userAndLevel(c)
	if !ok {
		return
	}
	videoID, ok := response.ParamUUID(c, "video_id")
	if !ok {
		return
	}

	row, enrollment, err := h.service.CompleteVideo(c.Request.Context(), middleware.Actor(c), userID, levelID, videoID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"progress":            row,
		"can_take_final_exam": enrollment.CanTakeFinalExam,
	})
}

func (h *ProgressHandler) LevelProgress(c *gin.Context) {
	userID, levelID, ok := userAndLevel(c)
	if !ok {
		return
	}
	counters, err := h.service.LevelProgress(c.Request.Context(), middleware.Actor(c), userID, levelID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, counters)
}

func (h *ProgressHandler) UserLevels(c *gin.Context) {
	userID, ok := response.ParamUUID(c, "user_id")
	if !ok {
		return
	}
	levels, err := h.service.UserLevels(c.Request.Context(), middleware.Actor(c), userID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"levels": levels})
}
