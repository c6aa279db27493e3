package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/buildstok/inventory/backend-go/internal/repository"
	"github.com/buildstok/inventory/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type ForecastHandler struct {
	service *service.ForecastService
	export  *service.ExportService
}

func NewForecastHandler(svc *service.ForecastService, export *service.ExportService) *ForecastHandler {
	return &ForecastHandler{service: svc, export: export}
}

func (h *ForecastHandler) GetRecords(c *gin.Context) {
	records, err := h.service.GetForecasts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate forecasts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"total":   len(records),
	})
}

func (h *ForecastHandler) GetTop(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit <= 0 {
		limit = 10
	}

	records, err := h.service.GetTopRecommendations(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recommendations", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (h *ForecastHandler) GetSummary(c *gin.Context) {
	summary, err := h.service.GetSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch summary", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *ForecastHandler) GetProjection(c *gin.Context) {
	materialID := c.Param("id")

	points, err := h.service.GetProjection(c.Request.Context(), materialID)
	if err != nil {
		if errors.Is(err, repository.ErrMaterialNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "material not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build projection", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"material_id": materialID,
		"points":      points,
	})
}

func (h *ForecastHandler) GetRate(c *gin.Context) {
	materialID := c.Param("id")
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	estimate, err := h.service.GetRate(c.Request.Context(), materialID, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to estimate rate", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, estimate)
}

func (h *ForecastHandler) Export(c *gin.Context) {
	if h.export == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "export is not configured"})
		return
	}

	path, err := h.export.ExportForecastXLSX(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export forecasts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"path": path})
}

func (h *ForecastHandler) Invalidate(c *gin.Context) {
	if err := h.service.Invalidate(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to invalidate cache", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
