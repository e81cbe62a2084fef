package level

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/controllers/middleware"
	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/controllers/response"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
	"github.com/mahmoodhamdi/sounds-api/pkg/logger"
)

type QueryService interface {
	ListLevels(ctx context.Context, actor models.Actor, f models.LevelFilter) ([]models.LevelSummary, error)
	SearchLevels(ctx context.Context, query string) ([]models.Level, error)
	Level(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.LevelDetail, error)
	WelcomeVideo(ctx context.Context) (*models.WelcomeVideo, error)
}

type QueryHandler struct {
	log     logger.Log
	service QueryService
}

func NewQueryHandler(log logger.Log, s QueryService) *QueryHandler {
	return &QueryHandler{
		log:     log,
		service: s,
	}
}

func (h *QueryHandler) ListLevels(c *gin.Context) {
	var filter models.LevelFilter
	filter.Name = c.Query("name")

	for param, dst := range map[string]**float64{"min_price": &filter.MinPrice, "max_price": &filter.MaxPrice} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.BadRequest(c, "invalid "+param)
			return
		}
		*dst = &v
	}
	if raw := c.Query("level_number"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "invalid level_number")
			return
		}
		filter.LevelNumber = &n
	}

	levels, err := h.service.ListLevels(c.Request.Context(), middleware.Actor(c), filter)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"levels": levels})
}

func (h *QueryHandler) SearchLevels(c *gin.Context) {
	levels, err := h.service.SearchLevels(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"levels": levels})
}

func (h *QueryHandler) Level(c *gin.Context) {
	levelID, ok := response.ParamUUID(c, "level_id")
	if !ok {
		return
	}
	detail, err := h.service.Level(c.Request.Context(), middleware.Actor(c), levelID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *QueryHandler) WelcomeVideo(c *gin.Context) {
	video, err := h.service.WelcomeVideo(c.Request.Context())
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, video)
}
