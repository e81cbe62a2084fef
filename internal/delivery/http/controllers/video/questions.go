package video

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/controllers/middleware"
	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/controllers/response"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
)

type newQuestionRequest struct {
	Text  string `json:"text" binding:"required"`
	Order int    `json:"order"`
}

func (h *VideoHandler) AddQuestion(c *gin.Context) {
	videoID, ok := response.ParamUUID(c, "video_id")
	if !ok {
		return
	}
	var input newQuestionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	question, err := h.service.AddQuestion(c.Request.Context(), middleware.Actor(c), models.Question{
		VideoID: videoID,
		Text:    input.Text,
		Order:   input.Order,
	})
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

func (h *VideoHandler) UpdateQuestion(c *gin.Context) {
	questionID, ok := response.ParamUUID(c, "question_id")
	if !ok {
		return
	}
	var input models.QuestionUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	question, err := h.service.UpdateQuestion(c.Request.Context(), middleware.Actor(c), questionID, input)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

func (h *VideoHandler) DeleteQuestion(c *gin.Context) {
	questionID, ok := response.ParamUUID(c, "question_id")
	if !ok {
		return
	}
	if err := h.service.DeleteQuestion(c.Request.Context(), middleware.Actor(c), questionID); err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *VideoHandler) AllQuestions(c *gin.Context) {
	questions, err := h.service.AllQuestions(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

func (h *VideoHandler) VideoQuestions(c *gin.Context) {
	videoID, ok := response.ParamUUID(c, "video_id")
	if !ok {
		return
	}
	questions, err := h.service.VideoQuestions(c.Request.Context(), middleware.Actor(c), videoID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}
