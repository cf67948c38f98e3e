package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/matthinz/idv-journey-analytics/docs"
	"github.com/matthinz/idv-journey-analytics/internal/dto"
	"github.com/matthinz/idv-journey-analytics/internal/service"
)

type Handler struct {
	journeyService service.JourneyServicer
	router         *gin.Engine
	log            *zap.Logger
}

func NewHandler(journeyService service.JourneyServicer, log *zap.Logger) *Handler {
	h := &Handler{
		journeyService: journeyService,
		router:         gin.Default(),
		log:            log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.GET("/v1/journeys/metrics", h.getFunnelMetrics)
	h.router.GET("/v1/journeys/bounces", h.getBounces)
	h.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheck handles health check requests
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// getFunnelMetrics handles GET /v1/journeys/metrics
// @Summary Get journey funnel metrics
// @Description Retrieve aggregated verification journey outcomes, optionally grouped by a journey attribute
// @Tags journeys
// @Produce json
// @Param from query int true "Start timestamp (Unix epoch)" example:"1690909200"
// @Param to query int true "End timestamp (Unix epoch)" example:"1690995600"
// @Param group_by query string false "Journey attribute to group by" Enums(bucket, locale, service_provider, document_type, caught_by_threatmetrix, attempted_hybrid_handoff, desktop_only, mobile_only, document_capture_success) example:"bucket"
// @Param min_count query int false "Smallest group size to report (default 70)" example:"70"
// @Success 200 {object} dto.GetFunnelMetricsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/journeys/metrics [get]
func (h *Handler) getFunnelMetrics(c *gin.Context) {
	var req dto.GetFunnelMetricsRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid funnel metrics request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	response, err := h.journeyService.GetFunnelMetrics(&req)
	if err != nil {
		h.log.Error("Failed to get funnel metrics",
			zap.Error(err),
			zap.Int64("from", req.From),
			zap.Int64("to", req.To),
			zap.String("group_by", req.GroupBy))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	h.log.Info("Funnel metrics retrieved",
		zap.Uint64("total_journeys", response.TotalJourneys),
		zap.Int("group_count", len(response.Groups)))

	c.JSON(http.StatusOK, response)
}

// getBounces handles GET /v1/journeys/bounces
// @Summary Get journey bounce report
// @Description Retrieve per-bucket bounce counts, including bounced journeys whose user later succeeded
// @Tags journeys
// @Produce json
// @Param from query int true "Start timestamp (Unix epoch)" example:"1690909200"
// @Param to query int true "End timestamp (Unix epoch)" example:"1690995600"
// @Success 200 {object} dto.GetBouncesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/journeys/bounces [get]
func (h *Handler) getBounces(c *gin.Context) {
	var req dto.GetBouncesRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid bounce report request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	response, err := h.journeyService.GetBounces(&req)
	if err != nil {
		h.log.Error("Failed to get bounce report",
			zap.Error(err),
			zap.Int64("from", req.From),
			zap.Int64("to", req.To))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	h.log.Info("Bounce report retrieved",
		zap.Int("group_count", len(response.Groups)))

	c.JSON(http.StatusOK, response)
}
