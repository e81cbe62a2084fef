package progress

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/controllers/middleware"
	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/controllers/response"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
	"github.com/mahmoodhamdi/sounds-api/pkg/logger"
)

type submissionRequest struct {
	CorrectWords     *int     `json:"correct_words" binding:"required"`
	WrongWords       *int     `json:"wrong_words" binding:"required"`
	CorrectWordsList []string `json:"correct_words_list"`
	WrongWordsList   []string `json:"wrong_words_list"`
}

func (r submissionRequest) submission() models.Submission {
	return models.Submission{
		CorrectWords:     *r.CorrectWords,
		WrongWords:       *r.WrongWords,
		CorrectWordsList: r.CorrectWordsList,
		WrongWordsList:   r.WrongWordsList,
	}
}

func bindSubmission(c *gin.Context, log logger.Log) (models.Submission, bool) {
	var input submissionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Debug("invalid submission", "err", err)
		response.BadRequest(c, err.Error())
		return models.Submission{}, false
	}
	return input.submission(), true
}

func (h *ProgressHandler) SubmitAnswer(c *gin.Context) {
	questionID, ok := response.ParamUUID(c, "question_id")
	if !ok {
		return
	}
	sub, ok := bindSubmission(c, h.log)
	if !ok {
		return
	}

	answer, err := h.service.SubmitAnswer(c.Request.Context(), middleware.Actor(c), questionID, sub)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

func (h *ProgressHandler) Answer(c *gin.Context) {
	userID, ok := response.ParamUUID(c, "user_id")
	if !ok {
		return
	}
	questionID, ok := response.ParamUUID(c, "question_id")
	if !ok {
		return
	}

	answer, err := h.service.Answer(c.Request.Context(), middleware.Actor(c), userID, questionID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

func (h *ProgressHandler) QuestionAnswers(c *gin.Context) {
	questionID, ok := response.ParamUUID(c, "question_id")
	if !ok {
		return
	}
	answers, err := h.service.QuestionAnswers(c.Request.Context(), middleware.Actor(c), questionID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answers": answers})
}

// SubmitExam returns the submission handler for one exam type.
func (h *ProgressHandler) SubmitExam(examType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		levelID, ok := response.ParamUUID(c, "level_id")
		if !ok {
			return
		}
		sub, ok := bindSubmission(c, h.log)
		if !ok {
			return
		}

		result, enrollment, err := h.service.SubmitExam(c.Request.Context(), middleware.Actor(c), levelID, examType, sub)
		if err != nil {
			response.Error(c, h.log, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"result":     result,
			"enrollment": enrollment,
		})
	}
}

func (h *ProgressHandler) ExamResults(c *gin.Context) {
	userID, ok := response.ParamUUID(c, "user_id")
	if !ok {
		return
	}
	levelID, ok := response.ParamUUID(c, "level_id")
	if !ok {
		return
	}

	results, err := h.service.ExamResults(c.Request.Context(), middleware.Actor(c), userID, levelID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exams": results})
}

func (h *ProgressHandler) AllExamResults(c *gin.Context) {
	results, err := h.service.AllExamResults(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exams": results})
}
