package http

import (
	"net/http"

	"golang-competitive-intel/internal/analyzer/dto"
	"golang-competitive-intel/internal/analyzer/repository"
	"golang-competitive-intel/pkg/logger"

	"github.com/labstack/echo/v4"
)

// IntelHandler serves the read API over persisted intelligence entities.
type IntelHandler struct {
	findingRepo repository.FindingRepository
	updateRepo  repository.CompetitorUpdateRepository
	trendRepo   repository.TrendRepository
	oppRepo     repository.OpportunityRepository
	logger      *logger.Logger
}

// NewIntelHandler creates a new IntelHandler.
func NewIntelHandler(findingRepo repository.FindingRepository, updateRepo repository.CompetitorUpdateRepository, trendRepo repository.TrendRepository, oppRepo repository.OpportunityRepository, log *logger.Logger) *IntelHandler {
	return &IntelHandler{
		findingRepo: findingRepo,
		updateRepo:  updateRepo,
		trendRepo:   trendRepo,
		oppRepo:     oppRepo,
		logger:      log,
	}
}

// RegisterRoutes registers the intelligence read routes to the Echo group.
func (h *IntelHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/findings", h.GetFindings)
	g.GET("/competitor-updates", h.GetCompetitorUpdates)
	g.GET("/trends", h.GetTrends)
	g.GET("/opportunities", h.GetOpportunities)
}

// GetFindings returns the newest market findings.
func (h *IntelHandler) GetFindings(c echo.Context) error {
	findings, err := h.findingRepo.FindRecent(c.Request().Context(), queryLimit(c, 50))
	if err != nil {
		h.logger.Error("Failed to list findings", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, findings)
}

// GetCompetitorUpdates returns the newest competitor updates, optionally
// filtered by company.
func (h *IntelHandler) GetCompetitorUpdates(c echo.Context) error {
	ctx := c.Request().Context()
	limit := queryLimit(c, 50)

	if company := c.QueryParam("company"); company != "" {
		updates, err := h.updateRepo.FindByCompany(ctx, company, limit)
		if err != nil {
			h.logger.Error("Failed to list company updates", logger.ErrorField(err))
			return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusOK, updates)
	}

	updates, err := h.updateRepo.FindRecent(ctx, limit)
	if err != nil {
		h.logger.Error("Failed to list competitor updates", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, updates)
}

// GetTrends returns trends by descending momentum. Dormant trends are
// included only when ?all=true.
func (h *IntelHandler) GetTrends(c echo.Context) error {
	ctx := c.Request().Context()
	if c.QueryParam("all") == "true" {
		trends, err := h.trendRepo.FindAll(ctx)
		if err != nil {
			h.logger.Error("Failed to list trends", logger.ErrorField(err))
			return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusOK, trends)
	}

	trends, err := h.trendRepo.FindRanked(ctx, queryLimit(c, 50))
	if err != nil {
		h.logger.Error("Failed to list ranked trends", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, trends)
}

// GetOpportunities returns the highest scoring opportunities across runs.
func (h *IntelHandler) GetOpportunities(c echo.Context) error {
	opportunities, err := h.oppRepo.FindTop(c.Request().Context(), queryLimit(c, 50))
	if err != nil {
		h.logger.Error("Failed to list opportunities", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, opportunities)
}
