package statistics

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/controllers/middleware"
	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/controllers/response"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
	"github.com/mahmoodhamdi/sounds-api/internal/service/report"
	"github.com/mahmoodhamdi/sounds-api/pkg/logger"
)

type StatisticsService interface {
	Platform(ctx context.Context, actor models.Actor) (*models.PlatformStatistics, error)
	User(ctx context.Context, actor models.Actor, userID uuid.UUID) (*models.UserStatistics, error)
}

type ReportService interface {
	UserReport(ctx context.Context, actor models.Actor) (*models.UserReport, error)
}

type StatisticsHandler struct {
	log     logger.Log
	stats   StatisticsService
	reports ReportService
}

func NewStatisticsHandler(log logger.Log, stats StatisticsService, reports ReportService) *StatisticsHandler {
	return &StatisticsHandler{
		log:     log,
		stats:   stats,
		reports: reports,
	}
}

func (h *StatisticsHandler) Platform(c *gin.Context) {
	st, err := h.stats.Platform(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *StatisticsHandler) User(c *gin.Context) {
	userID, ok := response.ParamUUID(c, "user_id")
	if !ok {
		return
	}
	st, err := h.stats.User(c.Request.Context(), middleware.Actor(c), userID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Report serves the caller's progress report as a download.
func (h *StatisticsHandler) Report(c *gin.Context) {
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	r, err := h.reports.UserReport(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	rendered, err := report.Render(r, format)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+rendered.Filename+`"`)
	c.Data(http.StatusOK, rendered.ContentType, rendered.Body)
}
