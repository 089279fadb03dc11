package http

import (
	"errors"
	"net/http"
	"strconv"

	"golang-competitive-intel/internal/analyzer/dto"
	"golang-competitive-intel/internal/analyzer/repository"
	"golang-competitive-intel/internal/analyzer/service"
	"golang-competitive-intel/internal/entity"
	"golang-competitive-intel/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RunHandler handles HTTP requests for analysis runs.
type RunHandler struct {
	pipeline service.PipelineService
	runRepo  repository.AnalysisRunRepository
	oppRepo  repository.OpportunityRepository
	logger   *logger.Logger
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(pipeline service.PipelineService, runRepo repository.AnalysisRunRepository, oppRepo repository.OpportunityRepository, log *logger.Logger) *RunHandler {
	return &RunHandler{pipeline: pipeline, runRepo: runRepo, oppRepo: oppRepo, logger: log}
}

// RegisterRoutes registers the run routes to the Echo group.
func (h *RunHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.TriggerRun)
	g.GET("", h.GetRecentRuns)
	g.GET("/:id", h.GetRunByID)
	g.GET("/:id/opportunities", h.GetRunOpportunities)
}

// TriggerRun starts an ad-hoc analysis run. Scheduled-mode requests for
// a date that already completed come back as 409.
func (h *RunHandler) TriggerRun(c echo.Context) error {
	var req dto.TriggerRunRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request payload"})
	}

	mode := entity.RunMode(req.Mode)
	if mode == "" {
		mode = entity.RunModeQuick
	}
	if !mode.IsValid() {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "unknown run mode"})
	}

	run, err := h.pipeline.Run(c.Request().Context(), mode, req.Topic, req.LookbackDays)
	if errors.Is(err, service.ErrAlreadyRun) {
		return c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	}
	if err != nil {
		h.logger.Error("Triggered run failed", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusCreated, run)
}

// GetRecentRuns returns the newest analysis runs.
func (h *RunHandler) GetRecentRuns(c echo.Context) error {
	limit := queryLimit(c, 20)
	runs, err := h.runRepo.FindRecent(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list runs", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, runs)
}

// GetRunByID returns one run row.
func (h *RunHandler) GetRunByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid run id"})
	}
	run, err := h.runRepo.FindByID(c.Request().Context(), uint(id))
	if err != nil {
		h.logger.Error("Failed to get run", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
	if run == nil {
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "run not found"})
	}
	return c.JSON(http.StatusOK, run)
}

// GetRunOpportunities returns a run's ranked opportunities.
func (h *RunHandler) GetRunOpportunities(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid run id"})
	}
	opportunities, err := h.oppRepo.FindByRun(c.Request().Context(), uint(id))
	if err != nil {
		h.logger.Error("Failed to list run opportunities", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, opportunities)
}

func queryLimit(c echo.Context, fallback int) int {
	raw := c.QueryParam("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
